package deployment

import (
	"errors"

	"github.com/compose-network/random-winner-game/configs"
	"github.com/compose-network/random-winner-game/internal/deployer/artifacts"
	"github.com/compose-network/random-winner-game/internal/deployer/explorer"
	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrDeploymentFailed   = errors.New("deployment failed")
	ErrVerificationFailed = errors.New("verification failed")
)

const (
	ResultVerified           = "verified"
	ResultAlreadyVerified    = "already_verified"
	ResultDeployedUnverified = "deployed_unverified"
	ResultDeploymentFailed   = "deployment_failed"
	ResultContractNotFound   = "contract_not_found"
	ResultConfigurationError = "configuration_error"
)

// Outcome describes how far a run got. Address and TxHash are set as soon as
// the deployment transaction is accepted, Deployed only once it is confirmed.
type Outcome struct {
	RunID        string
	Contract     string
	Address      common.Address
	TxHash       common.Hash
	Deployed     bool
	Verification *explorer.Result
	Err          error
}

// DeployedButUnverified reports a confirmed deployment whose verification failed.
func (o Outcome) DeployedButUnverified() bool {
	return o.Deployed && o.Err != nil
}

// Result is the short label used for logs and metrics.
func (o Outcome) Result() string {
	switch {
	case o.Err == nil && o.Verification != nil && o.Verification.Status == explorer.StatusAlreadyVerified:
		return ResultAlreadyVerified
	case o.Err == nil:
		return ResultVerified
	case o.DeployedButUnverified():
		return ResultDeployedUnverified
	case errors.Is(o.Err, configs.ErrConfiguration):
		return ResultConfigurationError
	case errors.Is(o.Err, artifacts.ErrContractNotFound):
		return ResultContractNotFound
	default:
		return ResultDeploymentFailed
	}
}
