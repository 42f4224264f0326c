package deployer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"

	"github.com/compose-network/random-winner-game/configs"
	"github.com/compose-network/random-winner-game/internal/deployer/chain"
	"github.com/compose-network/random-winner-game/internal/deployer/deployment"
	"github.com/compose-network/random-winner-game/internal/deployer/explorer"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

// Register declares the shared flags on root and attaches every command to it.
func Register(root *cobra.Command) error {
	if err := declareFlags(root, stringFlags); err != nil {
		return err
	}
	if err := declareFlags(root, intFlags); err != nil {
		return err
	}
	if err := declareFlags(root, boolFlags); err != nil {
		return err
	}

	root.AddCommand(deployCmd, verifyCmd, compileCmd, statusCmd)

	return nil
}

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the game contract and verify it on the explorer",
	Long: "Deploys the contract with the configured VRF coordinator, LINK token, key hash and fee, " +
		"waits for confirmation, waits for the explorer to index it and verifies the source code",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configs.Values
		slog.Info("starting deploy command. Validating config", "network", cfg.Network, "explorer", cfg.Explorer)

		if err := cfg.ValidateDeploy(); err != nil {
			return err
		}

		var client *chain.Client
		defer func() {
			if client != nil {
				client.Close()
			}
		}()
		connect := func(ctx context.Context) (deployment.Deployer, error) {
			c, err := chain.Dial(ctx, cfg.Network)
			if err != nil {
				return nil, err
			}
			client = c
			logAccount(ctx, c, common.HexToAddress(cfg.Constants.LinkToken))
			return c, nil
		}

		outcome := newService(cfg, connect).Run(cmd.Context(), cfg.Constants)
		printOutcome(cmd.OutOrStdout(), outcome)

		return outcome.Err
	},
}

type account interface {
	From() common.Address
	Balance(ctx context.Context) (*big.Int, error)
	TokenBalance(ctx context.Context, token common.Address) (*big.Int, error)
}

// logAccount reports the deployer's native and LINK balances. Lookup failures
// are only logged.
func logAccount(ctx context.Context, a account, linkToken common.Address) {
	log := slog.With("deployer", a.From().Hex())

	balance, err := a.Balance(ctx)
	if err != nil {
		log.With("error", err.Error()).Warn("could not read deployer balance")
	} else {
		log = log.With("balance", chain.FormatUnits(balance))
	}

	linkBalance, err := a.TokenBalance(ctx, linkToken)
	if err != nil {
		log.With("link_token", linkToken.Hex()).With("error", err.Error()).Warn("could not read LINK balance")
	} else {
		log = log.With("link_balance", chain.FormatUnits(linkBalance))
	}

	log.Info("deployer account ready")
}

func printOutcome(w io.Writer, outcome deployment.Outcome) {
	if outcome.Address == (common.Address{}) {
		return
	}

	if outcome.Deployed {
		fmt.Fprintf(w, "%s deployed to: %s\n", outcome.Contract, outcome.Address.Hex())
	} else {
		fmt.Fprintf(w, "%s pending at: %s (not confirmed)\n", outcome.Contract, outcome.Address.Hex())
	}
	if outcome.TxHash != (common.Hash{}) {
		fmt.Fprintf(w, "Transaction: %s\n", outcome.TxHash.Hex())
	}

	switch {
	case outcome.Verification != nil && outcome.Err == nil:
		fmt.Fprintf(w, "Verification: %s %s\n", outcome.Verification.Status, outcome.Verification.URL)
	case outcome.Verification != nil && outcome.Verification.Status == explorer.StatusAlreadyVerified:
		fmt.Fprintf(w, "Verification: already verified %s\n", outcome.Verification.URL)
	case outcome.DeployedButUnverified():
		fmt.Fprintf(w, "Verification failed, retry with: rwg verify --address %s\n", outcome.Address.Hex())
	}
}
