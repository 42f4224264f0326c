package deployer

import (
	"errors"

	"github.com/compose-network/random-winner-game/configs"
	"github.com/compose-network/random-winner-game/internal/deployer/artifacts"
	"github.com/compose-network/random-winner-game/internal/deployer/chain"
	"github.com/compose-network/random-winner-game/internal/deployer/deployment"
)

const (
	ExitOK                 = 0
	ExitFailure            = 1
	ExitConfiguration      = 2
	ExitContractNotFound   = 3
	ExitDeploymentFailed   = 4
	ExitVerificationFailed = 5
)

// ExitCode maps a command error onto the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, configs.ErrConfiguration), errors.Is(err, chain.ErrChainIDMismatch):
		return ExitConfiguration
	case errors.Is(err, artifacts.ErrContractNotFound),
		errors.Is(err, artifacts.ErrAmbiguousName),
		errors.Is(err, artifacts.ErrNotDeployable):
		return ExitContractNotFound
	case errors.Is(err, deployment.ErrVerificationFailed):
		return ExitVerificationFailed
	case errors.Is(err, deployment.ErrDeploymentFailed):
		return ExitDeploymentFailed
	default:
		return ExitFailure
	}
}
