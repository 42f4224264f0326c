package output

import (
	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

type (
	Model struct {
		Deployments map[string]map[string]Deployment `yaml:"deployments"`
	}

	Deployment struct {
		Address         common.Address     `yaml:"address"`
		ChainID         int64              `yaml:"chain-id"`
		TransactionHash common.Hash        `yaml:"transaction-hash"`
		BlockNumber     uint64             `yaml:"block-number"`
		Deployer        common.Address     `yaml:"deployer"`
		DeployedAt      string             `yaml:"deployed-at"`
		CompilerVersion string             `yaml:"compiler-version"`
		ConstructorArgs []string           `yaml:"constructor-args"`
		EncodedArgs     SingleQuotedString `yaml:"encoded-args"`
		Verification    *Verification      `yaml:"verification,omitempty"`
	}

	Verification struct {
		Status     string `yaml:"status"`
		URL        string `yaml:"url,omitempty"`
		VerifiedAt string `yaml:"verified-at"`
	}

	SingleQuotedString string
)

func (s SingleQuotedString) MarshalYAML() (any, error) {
	node := &yaml.Node{
		Kind:  yaml.ScalarNode,
		Style: yaml.SingleQuotedStyle,
		Value: string(s),
	}
	return node, nil
}
