package compiler

import (
	"encoding/json"
	"strings"

	"github.com/compose-network/random-winner-game/internal/deployer/artifacts"
)

type (
	standardInput struct {
		Language string                    `json:"language"`
		Sources  map[string]standardSource `json:"sources"`
		Settings settings                  `json:"settings"`
	}

	standardSource struct {
		Content string `json:"content"`
	}

	settings struct {
		Optimizer       optimizer                      `json:"optimizer"`
		EVMVersion      string                         `json:"evmVersion,omitempty"`
		OutputSelection map[string]map[string][]string `json:"outputSelection"`
	}

	optimizer struct {
		Enabled bool `json:"enabled"`
		Runs    int  `json:"runs"`
	}

	standardOutput struct {
		Errors    []compilerError                        `json:"errors"`
		Contracts map[string]map[string]compiledContract `json:"contracts"`
	}

	compilerError struct {
		Severity         string `json:"severity"`
		Type             string `json:"type"`
		Message          string `json:"message"`
		FormattedMessage string `json:"formattedMessage"`
	}

	compiledContract struct {
		ABI json.RawMessage `json:"abi"`
		EVM struct {
			Bytecode         bytecode `json:"bytecode"`
			DeployedBytecode bytecode `json:"deployedBytecode"`
		} `json:"evm"`
	}

	bytecode struct {
		Object         string                   `json:"object"`
		LinkReferences artifacts.LinkReferences `json:"linkReferences"`
	}
)

func newStandardInput(sources map[string]string, optimizerEnabled bool, runs int, evmVersion string) standardInput {
	in := standardInput{
		Language: "Solidity",
		Sources:  make(map[string]standardSource, len(sources)),
		Settings: settings{
			Optimizer:  optimizer{Enabled: optimizerEnabled, Runs: runs},
			EVMVersion: evmVersion,
			OutputSelection: map[string]map[string][]string{
				"*": {
					"*": {"abi", "evm.bytecode", "evm.deployedBytecode", "evm.methodIdentifiers", "metadata"},
					"":  {"ast"},
				},
			},
		},
	}
	for name, content := range sources {
		in.Sources[name] = standardSource{Content: content}
	}

	return in
}

// failures returns the formatted messages of every error-severity diagnostic.
func (o *standardOutput) failures() []string {
	var messages []string
	for _, e := range o.Errors {
		if e.Severity != "error" {
			continue
		}
		msg := e.FormattedMessage
		if msg == "" {
			msg = e.Type + ": " + e.Message
		}
		messages = append(messages, strings.TrimSpace(msg))
	}
	return messages
}
