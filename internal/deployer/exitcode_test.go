package deployer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/compose-network/random-winner-game/configs"
	"github.com/compose-network/random-winner-game/internal/deployer/artifacts"
	"github.com/compose-network/random-winner-game/internal/deployer/chain"
	"github.com/compose-network/random-winner-game/internal/deployer/deployment"
	"github.com/compose-network/random-winner-game/internal/deployer/explorer"
	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: ExitOK},
		{name: "missing key", err: fmt.Errorf("%w: deploy configuration validation failed: %w", configs.ErrConfiguration, &configs.MissingEnvVarError{Key: "network.private-key"}), want: ExitConfiguration},
		{name: "wrong chain", err: fmt.Errorf("%w: %w", deployment.ErrDeploymentFailed, chain.ErrChainIDMismatch), want: ExitConfiguration},
		{name: "bad constants", err: fmt.Errorf("%w: constants: %w", configs.ErrConfiguration, chain.ErrInvalidArgument), want: ExitConfiguration},
		{name: "no artifact", err: fmt.Errorf("%w: RandomWinnerGame", artifacts.ErrContractNotFound), want: ExitContractNotFound},
		{name: "ambiguous", err: artifacts.ErrAmbiguousName, want: ExitContractNotFound},
		{name: "reverted", err: fmt.Errorf("%w: %w", deployment.ErrDeploymentFailed, chain.ErrReverted), want: ExitDeploymentFailed},
		{name: "explorer rejected", err: fmt.Errorf("%w: %w", deployment.ErrVerificationFailed, explorer.ErrRejected), want: ExitVerificationFailed},
		{name: "indexer timeout", err: fmt.Errorf("%w: %w", deployment.ErrVerificationFailed, explorer.ErrIndexerTimeout), want: ExitVerificationFailed},
		{name: "anything else", err: errors.New("boom"), want: ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
