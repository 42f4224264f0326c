package deployer

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// flagDef defines a command-line flag with its configuration.
type (
	flagType interface {
		string | int | bool
	}

	flagDef[T flagType] struct {
		name         string
		viperKey     string
		defaultValue T
		description  string
	}
)

// Defaults are left empty so the embedded configuration and config files win
// unless a flag is set explicitly.
var (
	stringFlags = []flagDef[string]{
		// Network
		{"network", "network.name", "", "Network name, also the deployment records directory"},
		{"rpc-url", "network.rpc-url", "", "JSON-RPC endpoint (env QUICKNODE_HTTP_URL)"},

		// Explorer
		{"explorer-network", "explorer.network", "", "Explorer network name"},
		{"explorer-api-url", "explorer.api-url", "", "Etherscan compatible API URL"},
		{"explorer-browser-url", "explorer.browser-url", "", "Explorer website URL"},
		{"index-wait-mode", "explorer.index-wait.mode", "", "How to wait for the explorer indexer (fixed or poll)"},

		// Contract and compiler
		{"contract", "contract.name", "", "Contract to deploy, bare or <source>:<name>"},
		{"solc-version", "compiler.version", "", "solc version"},
		{"sources-dir", "compiler.sources-dir", "", "Directory holding the Solidity sources"},

		// Paths
		{"artifacts-dir", "paths.artifacts", "", "Compiled artifacts directory"},
		{"deployments-dir", "paths.deployments", "", "Deployment records directory"},

		// Metrics and logging
		{"pushgateway-url", "metrics.pushgateway-url", "", "Prometheus Pushgateway URL"},
		{"log-level", "log.level", "", "Log level (debug, info, warn, error)"},
		{"log-format", "log.format", "", "Log format (json or text)"},
	}

	intFlags = []flagDef[int]{
		{"chain-id", "network.chain-id", 0, "Expected chain ID"},
		{"optimizer-runs", "compiler.runs", 0, "solc optimizer runs"},
	}

	boolFlags = []flagDef[bool]{
		{"already-verified-is-error", "explorer.already-verified-is-error", false, "Fail when the explorer reports the contract as already verified"},
		{"optimizer", "compiler.optimizer", false, "Enable the solc optimizer"},
	}
)

// declareFlags declares multiple persistent flags on cmd and binds them to viper configuration keys.
func declareFlags[T flagType](cmd *cobra.Command, flags []flagDef[T]) error {
	for _, flag := range flags {
		if err := declareFlag(cmd, flag.name, flag.viperKey, flag.defaultValue, flag.description); err != nil {
			return err
		}
	}
	return nil
}

// declareFlag declares a single flag and binds it to a viper configuration key.
// The type parameter T determines the flag type (string, int, or bool).
func declareFlag[T flagType](cmd *cobra.Command, flagName, viperKey string, defaultValue T, description string) error {
	flags := cmd.PersistentFlags()

	var zero T
	switch any(zero).(type) {
	case string:
		flags.String(flagName, any(defaultValue).(string), description)
	case int:
		flags.Int(flagName, any(defaultValue).(int), description)
	case bool:
		flags.Bool(flagName, any(defaultValue).(bool), description)
	}
	return viper.BindPFlag(viperKey, flags.Lookup(flagName))
}
