package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/compose-network/random-winner-game/internal/deployer/deployment"
	"gopkg.in/yaml.v3"
)

type Generator struct {
}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate writes the deployment records as YAML grouped by network and contract.
func (g *Generator) Generate(w io.Writer, records []deployment.Record) error {
	data, err := yaml.Marshal(g.model(records))
	if err != nil {
		return fmt.Errorf("could not marshal output model. Err: '%w'", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("could not write output. Err: '%w'", err)
	}

	return nil
}

// WriteFile writes the same document as Generate to path.
func (g *Generator) WriteFile(path string, records []deployment.Record) error {
	data, err := yaml.Marshal(g.model(records))
	if err != nil {
		return fmt.Errorf("could not marshal output model. Err: '%w'", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("could not write output file. Err: '%w'", err)
	}

	return nil
}

func (g *Generator) model(records []deployment.Record) *Model {
	model := &Model{Deployments: make(map[string]map[string]Deployment)}

	for _, record := range records {
		contracts, ok := model.Deployments[record.Network]
		if !ok {
			contracts = make(map[string]Deployment)
			model.Deployments[record.Network] = contracts
		}

		d := Deployment{
			Address:         record.Address,
			ChainID:         record.ChainID,
			TransactionHash: record.TxHash,
			BlockNumber:     record.BlockNumber,
			Deployer:        record.Deployer,
			DeployedAt:      formatTime(record.DeployedAt),
			CompilerVersion: record.CompilerVersion,
			ConstructorArgs: record.ConstructorArgs,
			EncodedArgs:     SingleQuotedString(record.EncodedArgs),
		}
		if v := record.Verification; v != nil {
			d.Verification = &Verification{Status: v.Status, URL: v.URL, VerifiedAt: formatTime(v.VerifiedAt)}
		}

		contracts[contractName(record.Contract)] = d
	}

	return model
}

func contractName(fullyQualified string) string {
	if i := strings.LastIndex(fullyQualified, ":"); i >= 0 {
		return fullyQualified[i+1:]
	}
	return fullyQualified
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
