package deployer

import (
	"log/slog"

	"github.com/compose-network/random-winner-game/configs"
	"github.com/compose-network/random-winner-game/internal/deployer/deployment"
	"github.com/compose-network/random-winner-game/internal/deployer/output"
	"github.com/compose-network/random-winner-game/internal/infra/filesystem"
	"github.com/spf13/cobra"
)

var statusOut string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the recorded deployments as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configs.Values
		if err := cfg.Paths.Validate(); err != nil {
			return err
		}

		records, err := deployment.NewRecords(cfg.Paths.Deployments, filesystem.NewJSON()).List()
		if err != nil {
			return err
		}
		slog.With("records", len(records)).Debug("deployment records loaded")

		generator := output.NewGenerator()
		if statusOut != "" {
			return generator.WriteFile(statusOut, records)
		}
		return generator.Generate(cmd.OutOrStdout(), records)
	},
}

func init() {
	statusCmd.Flags().StringVarP(&statusOut, "out", "o", "", "Write the YAML to a file instead of stdout")
}
