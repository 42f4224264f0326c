package deployer

import (
	"bytes"
	"errors"
	"testing"

	"github.com/compose-network/random-winner-game/configs"
	"github.com/compose-network/random-winner-game/internal/deployer/deployment"
	"github.com/compose-network/random-winner-game/internal/deployer/explorer"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAddress = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

func TestPrintOutcome(t *testing.T) {
	tests := []struct {
		name    string
		outcome deployment.Outcome
		want    []string
		absent  []string
	}{
		{
			name:    "nothing sent",
			outcome: deployment.Outcome{Err: errors.New("boom")},
		},
		{
			name: "verified",
			outcome: deployment.Outcome{
				Contract:     "contracts/RandomWinnerGame.sol:RandomWinnerGame",
				Address:      testAddress,
				TxHash:       common.HexToHash("0x01"),
				Deployed:     true,
				Verification: &explorer.Result{Status: explorer.StatusVerified, URL: "https://explorer/address"},
			},
			want: []string{"deployed to: " + testAddress.Hex(), "Transaction: 0x", "Verification: verified https://explorer/address"},
		},
		{
			name: "deployed but unverified",
			outcome: deployment.Outcome{
				Address:  testAddress,
				Deployed: true,
				Err:      deployment.ErrVerificationFailed,
			},
			want: []string{"rwg verify --address " + testAddress.Hex()},
		},
		{
			name: "already verified when that is an error",
			outcome: deployment.Outcome{
				Address:      testAddress,
				Deployed:     true,
				Verification: &explorer.Result{Status: explorer.StatusAlreadyVerified, URL: "https://explorer/address"},
				Err:          deployment.ErrVerificationFailed,
			},
			want:   []string{"Verification: already verified https://explorer/address"},
			absent: []string{"rwg verify"},
		},
		{
			name:    "not confirmed",
			outcome: deployment.Outcome{Address: testAddress, Err: deployment.ErrDeploymentFailed},
			want:    []string{"not confirmed"},
			absent:  []string{"rwg verify"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printOutcome(&buf, tt.outcome)

			if len(tt.want) == 0 {
				assert.Empty(t, buf.String())
			}
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
			for _, absent := range tt.absent {
				assert.NotContains(t, buf.String(), absent)
			}
		})
	}
}

func TestResolveAddress(t *testing.T) {
	recorded := func() (common.Address, error) { return testAddress, nil }
	missing := func() (common.Address, error) { return common.Address{}, deployment.ErrNoRecord }

	got, err := resolveAddress("0x0000000000000000000000000000000000000001", missing)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x01"), got)

	got, err = resolveAddress("", recorded)
	require.NoError(t, err)
	assert.Equal(t, testAddress, got)

	_, err = resolveAddress("0x1234", recorded)
	assert.ErrorIs(t, err, configs.ErrConfiguration)

	_, err = resolveAddress("", missing)
	assert.ErrorIs(t, err, configs.ErrConfiguration)
	assert.ErrorIs(t, err, deployment.ErrNoRecord)
}

func TestRepositoryName(t *testing.T) {
	assert.Equal(t, "random-winner-game", repositoryName("https://github.com/example/random-winner-game.git"))
	assert.Equal(t, "contracts", repositoryName("https://github.com/example/contracts/"))
	assert.Equal(t, "sources", repositoryName(""))
}
