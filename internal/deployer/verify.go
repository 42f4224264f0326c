package deployer

import (
	"fmt"
	"log/slog"

	"github.com/compose-network/random-winner-game/configs"
	"github.com/compose-network/random-winner-game/internal/deployer/explorer"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	verifyAddress string
	verifyCheck   bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify an already deployed contract on the explorer",
	Long: "Submits the source code of a deployed contract with the configured constructor arguments. " +
		"Without --address the address of the last recorded deployment is used",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configs.Values
		slog.Info("starting verify command. Validating config", "explorer", cfg.Explorer)

		if err := cfg.ValidateVerify(); err != nil {
			return err
		}

		service := newService(cfg, nil)

		address, err := resolveAddress(verifyAddress, func() (common.Address, error) {
			record, err := service.Deployed()
			if err != nil {
				return common.Address{}, err
			}
			return record.Address, nil
		})
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if verifyCheck {
			verified, err := explorer.New(cfg.Explorer, cfg.Network.ChainID).IsVerified(ctx, address)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s verified: %t\n", address.Hex(), verified)
			return nil
		}

		outcome := service.Verify(ctx, cfg.Constants, address)
		printOutcome(cmd.OutOrStdout(), outcome)

		return outcome.Err
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyAddress, "address", "", "Address of the deployed contract")
	verifyCmd.Flags().BoolVar(&verifyCheck, "check", false, "Only report whether the explorer has the source code")
}

func resolveAddress(flag string, recorded func() (common.Address, error)) (common.Address, error) {
	if flag != "" {
		if !common.IsHexAddress(flag) {
			return common.Address{}, fmt.Errorf("%w: --address '%s' is not a hex address", configs.ErrConfiguration, flag)
		}
		return common.HexToAddress(flag), nil
	}

	address, err := recorded()
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: no --address given and %w", configs.ErrConfiguration, err)
	}

	return address, nil
}
