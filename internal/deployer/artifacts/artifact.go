package artifacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const (
	artifactFormat  = "hh-sol-artifact-1"
	debugFormat     = "hh-sol-dbg-1"
	buildInfoFormat = "hh-sol-build-info-1"

	buildInfoDirName = "build-info"
)

var (
	// ErrContractNotFound is returned when no compiled artifact exists for a contract name.
	ErrContractNotFound = errors.New("contract artifact not found")
	ErrAmbiguousName    = errors.New("contract name is ambiguous")
	ErrNotDeployable    = errors.New("contract is not deployable")
)

type (
	// Artifact is the on-disk Hardhat artifact of a single contract.
	Artifact struct {
		Format                 string          `json:"_format"`
		ContractName           string          `json:"contractName"`
		SourceName             string          `json:"sourceName"`
		ABI                    json.RawMessage `json:"abi"`
		Bytecode               string          `json:"bytecode"`
		DeployedBytecode       string          `json:"deployedBytecode"`
		LinkReferences         LinkReferences  `json:"linkReferences"`
		DeployedLinkReferences LinkReferences  `json:"deployedLinkReferences"`
	}

	// LinkReferences maps source name -> library name -> placeholder positions.
	LinkReferences map[string]map[string][]LinkReference

	LinkReference struct {
		Start  int `json:"start"`
		Length int `json:"length"`
	}

	debugFile struct {
		Format    string `json:"_format"`
		BuildInfo string `json:"buildInfo"`
	}

	// BuildInfo holds the exact compiler input an artifact was produced from.
	// Verification replays this input on the explorer side.
	BuildInfo struct {
		Format          string          `json:"_format"`
		ID              string          `json:"id"`
		SolcVersion     string          `json:"solcVersion"`
		SolcLongVersion string          `json:"solcLongVersion"`
		Input           json.RawMessage `json:"input"`
		Output          json.RawMessage `json:"output,omitempty"`
	}

	// Contract is a parsed artifact ready to be deployed.
	Contract struct {
		Name          string
		SourceName    string
		ABI           abi.ABI
		RawABI        string
		Bytecode      []byte
		buildInfoPath string
	}
)

// FullyQualifiedName returns "<sourceName>:<contractName>", the form explorers expect.
func (c *Contract) FullyQualifiedName() string {
	return c.SourceName + ":" + c.Name
}

// CompilerVersion returns the explorer compiler version string, e.g. "v0.8.17+commit.8df45f5f".
func (b *BuildInfo) CompilerVersion() string {
	return "v" + strings.TrimPrefix(b.SolcLongVersion, "v")
}

func (a *Artifact) parse() (*Contract, error) {
	if a.Format != "" && a.Format != artifactFormat {
		return nil, fmt.Errorf("unsupported artifact format '%s' for %s", a.Format, a.ContractName)
	}

	parsedABI, err := abi.JSON(strings.NewReader(string(a.ABI)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI for %s: %w", a.ContractName, err)
	}

	if len(a.LinkReferences) > 0 || strings.Contains(a.Bytecode, "__$") {
		return nil, fmt.Errorf("%w: %s needs linked libraries", ErrNotDeployable, a.ContractName)
	}

	bytecode := common.FromHex(a.Bytecode)
	if len(bytecode) == 0 {
		return nil, fmt.Errorf("%w: %s has no bytecode (abstract contract or interface)", ErrNotDeployable, a.ContractName)
	}

	return &Contract{
		Name:       a.ContractName,
		SourceName: a.SourceName,
		ABI:        parsedABI,
		RawABI:     string(a.ABI),
		Bytecode:   bytecode,
	}, nil
}
