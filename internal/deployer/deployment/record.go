package deployment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/compose-network/random-winner-game/internal/infra/filesystem"
	"github.com/ethereum/go-ethereum/common"
)

// ErrNoRecord is returned when no deployment has been recorded for a contract.
var ErrNoRecord = errors.New("no deployment recorded")

type (
	// Record is what a run leaves behind in deployments/<network>/<Contract>.json.
	Record struct {
		RunID           string         `json:"runId"`
		Network         string         `json:"network"`
		ChainID         int64          `json:"chainId"`
		Contract        string         `json:"contract"`
		Address         common.Address `json:"address"`
		TxHash          common.Hash    `json:"transactionHash"`
		BlockNumber     uint64         `json:"blockNumber"`
		GasUsed         uint64         `json:"gasUsed"`
		Deployer        common.Address `json:"deployer"`
		ConstructorArgs []string       `json:"constructorArgs"`
		EncodedArgs     string         `json:"encodedArgs"`
		CompilerVersion string         `json:"compilerVersion"`
		DeployedAt      time.Time      `json:"deployedAt"`
		Verification    *Verification  `json:"verification,omitempty"`
	}

	Verification struct {
		Status     string    `json:"status"`
		GUID       string    `json:"guid,omitempty"`
		URL        string    `json:"url,omitempty"`
		VerifiedAt time.Time `json:"verifiedAt"`
	}

	// Records stores one record per network and contract name.
	Records struct {
		root string
		fs   filesystem.ReadWriter
	}
)

func NewRecords(root string, files filesystem.ReadWriter) *Records {
	return &Records{root: root, fs: files}
}

func (r *Records) Save(record Record) error {
	if err := r.fs.WriteJSON(r.path(record.Network, record.Contract), record); err != nil {
		return fmt.Errorf("failed to save deployment record: %w", err)
	}
	return nil
}

// Load returns the record for contract, which may be a bare or fully qualified name.
func (r *Records) Load(network, contract string) (*Record, error) {
	var record Record
	if err := r.fs.ReadJSON(r.path(network, contract), &record); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s on %s", ErrNoRecord, contract, network)
		}
		return nil, err
	}

	return &record, nil
}

// List returns every stored record ordered by network and contract.
func (r *Records) List() ([]Record, error) {
	networks, err := os.ReadDir(r.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", r.root, err)
	}

	var records []Record
	for _, network := range networks {
		if !network.IsDir() {
			continue
		}
		files, err := filepath.Glob(filepath.Join(r.root, network.Name(), "*.json"))
		if err != nil {
			return nil, err
		}
		sort.Strings(files)
		for _, file := range files {
			var record Record
			if err := r.fs.ReadJSON(file, &record); err != nil {
				return nil, err
			}
			records = append(records, record)
		}
	}

	return records, nil
}

func (r *Records) path(network, contract string) string {
	if _, name, ok := strings.Cut(contract, ":"); ok {
		contract = name
	}
	return filepath.Join(r.root, network, contract+".json")
}
