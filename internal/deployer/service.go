package deployer

import (
	"github.com/compose-network/random-winner-game/configs"
	"github.com/compose-network/random-winner-game/internal/deployer/artifacts"
	"github.com/compose-network/random-winner-game/internal/deployer/deployment"
	"github.com/compose-network/random-winner-game/internal/deployer/explorer"
	"github.com/compose-network/random-winner-game/internal/infra/filesystem"
	"github.com/compose-network/random-winner-game/internal/metrics"
)

// newService wires the deployment service. connect is nil for commands that
// never send transactions.
func newService(cfg configs.Config, connect deployment.Connector) *deployment.Service {
	files := filesystem.NewJSON()
	explorerClient := explorer.New(cfg.Explorer, cfg.Network.ChainID)

	return deployment.NewService(
		deployment.Settings{
			Network:                cfg.Network.Name,
			ContractName:           cfg.Contract.Name,
			AlreadyVerifiedIsError: cfg.Explorer.AlreadyVerifiedIsError,
		},
		artifacts.NewStore(cfg.Paths.Artifacts, files),
		connect,
		deployment.NewIndexWaiter(cfg.Explorer.IndexWait, explorerClient),
		explorerClient,
		deployment.NewRecords(cfg.Paths.Deployments, files),
		metrics.New(cfg.Metrics, cfg.Network.Name),
	)
}
