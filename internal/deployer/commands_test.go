package deployer

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/compose-network/random-winner-game/configs"
	"github.com/compose-network/random-winner-game/internal/deployer/artifacts"
	"github.com/compose-network/random-winner-game/internal/deployer/artifacts/artifactstest"
	"github.com/compose-network/random-winner-game/internal/deployer/deployment"
	"github.com/compose-network/random-winner-game/internal/infra/filesystem"
	"github.com/compose-network/random-winner-game/internal/logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func testConfig(t *testing.T, rpcURL string) configs.Config {
	t.Helper()

	v := viper.New()
	require.NoError(t, configs.ReadDefaults(v))
	cfg, err := configs.Unmarshal(v)
	require.NoError(t, err)

	cfg.Network.RPCURL = rpcURL
	cfg.Network.PrivateKey = testPrivateKey
	cfg.Explorer.APIKey = "key"
	cfg.Paths.Artifacts = t.TempDir()
	cfg.Paths.Deployments = t.TempDir()

	return cfg
}

func useConfig(t *testing.T, cfg configs.Config) {
	t.Helper()

	previous := configs.Values
	configs.Values = cfg
	t.Cleanup(func() { configs.Values = previous })
}

// countingNode is an RPC endpoint that records how often it was contacted.
func countingNode(t *testing.T) (string, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "unexpected call", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	return server.URL, &hits
}

func runCommand(t *testing.T, cmd *cobra.Command) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetContext(context.Background())
	t.Cleanup(func() { cmd.SetOut(nil) })

	err := cmd.RunE(cmd, nil)
	return buf.String(), err
}

func TestDeployCommandMissingRPCURL(t *testing.T) {
	cfg := testConfig(t, "")
	artifactstest.Write(t, cfg.Paths.Artifacts)
	useConfig(t, cfg)

	out, err := runCommand(t, deployCmd)

	require.ErrorIs(t, err, configs.ErrConfiguration)
	assert.Contains(t, err.Error(), "QUICKNODE_HTTP_URL")
	assert.Equal(t, ExitConfiguration, ExitCode(err))
	assert.Empty(t, out)
}

func TestDeployCommandMissingArtifactNeverDials(t *testing.T) {
	rpcURL, hits := countingNode(t)
	useConfig(t, testConfig(t, rpcURL))

	out, err := runCommand(t, deployCmd)

	require.ErrorIs(t, err, artifacts.ErrContractNotFound)
	assert.NotErrorIs(t, err, deployment.ErrDeploymentFailed)
	assert.Equal(t, ExitContractNotFound, ExitCode(err))
	assert.Zero(t, hits.Load())
	assert.Empty(t, out)
}

func TestDeployCommandUnreachableNode(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	artifactstest.Write(t, cfg.Paths.Artifacts)
	useConfig(t, cfg)

	_, err := runCommand(t, deployCmd)

	require.ErrorIs(t, err, deployment.ErrDeploymentFailed)
	assert.Equal(t, ExitDeploymentFailed, ExitCode(err))
}

func TestVerifyCommandWithoutAddressOrRecord(t *testing.T) {
	rpcURL, hits := countingNode(t)
	cfg := testConfig(t, rpcURL)
	artifactstest.Write(t, cfg.Paths.Artifacts)
	useConfig(t, cfg)

	previous := verifyAddress
	verifyAddress = ""
	t.Cleanup(func() { verifyAddress = previous })

	_, err := runCommand(t, verifyCmd)

	require.ErrorIs(t, err, configs.ErrConfiguration)
	assert.ErrorIs(t, err, deployment.ErrNoRecord)
	assert.Equal(t, ExitConfiguration, ExitCode(err))
	assert.Zero(t, hits.Load())
}

func TestStatusCommandPrintsRecords(t *testing.T) {
	cfg := testConfig(t, "")
	useConfig(t, cfg)

	records := deployment.NewRecords(cfg.Paths.Deployments, filesystem.NewJSON())
	require.NoError(t, records.Save(deployment.Record{
		Network:  "mumbai",
		ChainID:  80001,
		Contract: artifactstest.ContractName,
		Address:  testAddress,
	}))

	previous := statusOut
	statusOut = ""
	t.Cleanup(func() { statusOut = previous })

	out, err := runCommand(t, statusCmd)
	require.NoError(t, err)

	var parsed struct {
		Deployments map[string]map[string]struct {
			Address string `yaml:"address"`
		} `yaml:"deployments"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, testAddress, common.HexToAddress(parsed.Deployments["mumbai"][artifactstest.ContractName].Address))
}

type failingAccount struct{}

func (failingAccount) From() common.Address { return testAddress }

func (failingAccount) Balance(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000_000_000_000), nil
}

func (failingAccount) TokenBalance(context.Context, common.Address) (*big.Int, error) {
	return nil, errors.New("failed to call balanceOf: execution reverted")
}

func TestLogAccountToleratesLookupFailures(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	logger.InitializeWith(&buf, slog.LevelInfo, logger.FormatJSON)

	logAccount(context.Background(), failingAccount{}, common.HexToAddress("0x326C977E6efc84E512bB9C30f76E30c160eD06FB"))

	assert.Contains(t, buf.String(), "could not read LINK balance")
	assert.Contains(t, buf.String(), "execution reverted")
	assert.Contains(t, buf.String(), `"balance":"1"`)
	assert.Contains(t, buf.String(), "deployer account ready")
}
