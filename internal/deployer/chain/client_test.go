package chain

import (
	"context"
	"encoding/hex"
	"math/big"
	"strings"
	"testing"

	"github.com/compose-network/random-winner-game/internal/deployer/artifacts"
	"github.com/compose-network/random-winner-game/internal/deployer/artifacts/artifactstest"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gameArgs = []string{
	"0x8C7382F9D8f56b33781fE506E897a4F1e2d17255",
	"0x326C977E6efc84E512bB9C30f76E30c160eD06FB",
	"0x6e75b569a01ef56d18cab6a8e71e6600d6ce853834d4a5748b720d06f878b3a4",
	"100000000000000",
}

func newSimulated(t *testing.T, opts Options) (*simulated.Backend, *Client) {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	backend := simulated.NewBackend(types.GenesisAlloc{
		crypto.PubkeyToAddress(key.PublicKey): {Balance: big.NewInt(1_000_000_000_000_000_000)},
	})
	t.Cleanup(func() { _ = backend.Close() })

	client, err := NewClient(context.Background(), backend.Client(), "0x"+hex.EncodeToString(crypto.FromECDSA(key)), opts)
	require.NoError(t, err)

	return backend, client
}

func gameContract(t *testing.T) *artifacts.Contract {
	t.Helper()

	store := artifactstest.Write(t, t.TempDir())
	contract, err := store.Resolve(artifactstest.ContractName)
	require.NoError(t, err)
	return contract
}

func rawContract(t *testing.T, bytecode []byte) *artifacts.Contract {
	t.Helper()

	parsed, err := abi.JSON(strings.NewReader("[]"))
	require.NoError(t, err)
	return &artifacts.Contract{Name: "Raw", SourceName: "contracts/Raw.sol", ABI: parsed, Bytecode: bytecode}
}

func TestDeployAndWait(t *testing.T) {
	ctx := context.Background()
	backend, client := newSimulated(t, Options{})
	contract := gameContract(t)

	args, err := CoerceArgs(contract.ABI.Constructor.Inputs, gameArgs)
	require.NoError(t, err)

	balance, err := client.Balance(ctx)
	require.NoError(t, err)
	assert.Positive(t, balance.Sign())

	pending, err := client.Deploy(ctx, contract, args...)
	require.NoError(t, err)
	assert.Equal(t, crypto.CreateAddress(client.From(), 0), pending.Address)

	backend.Commit()

	receipt, err := client.WaitDeployed(ctx, pending)
	require.NoError(t, err)
	assert.Equal(t, pending.Address, receipt.Address)
	assert.Equal(t, pending.TxHash, receipt.TxHash)
	assert.NotZero(t, receipt.GasUsed)
	assert.EqualValues(t, 1, receipt.BlockNumber)

	// the constructor arguments travel verbatim at the end of the creation input
	tx, _, err := backend.Client().TransactionByHash(ctx, pending.TxHash)
	require.NoError(t, err)
	encoded, err := EncodeArgs(contract.ABI.Constructor.Inputs, args)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(hex.EncodeToString(tx.Data()), encoded))
}

func TestWaitDeployedReverted(t *testing.T) {
	ctx := context.Background()
	backend, client := newSimulated(t, Options{GasLimit: 100_000})

	// PUSH1 0 PUSH1 0 REVERT
	pending, err := client.Deploy(ctx, rawContract(t, common.FromHex("0x60006000fd")))
	require.NoError(t, err)
	backend.Commit()

	_, err = client.WaitDeployed(ctx, pending)
	assert.ErrorIs(t, err, ErrReverted)
}

func TestWaitDeployedWithoutCode(t *testing.T) {
	ctx := context.Background()
	backend, client := newSimulated(t, Options{GasLimit: 100_000})

	// STOP: succeeds but leaves no runtime code behind
	pending, err := client.Deploy(ctx, rawContract(t, []byte{0x00}))
	require.NoError(t, err)
	backend.Commit()

	_, err = client.WaitDeployed(ctx, pending)
	assert.ErrorIs(t, err, ErrNoCode)
}

func TestWaitDeployedHonoursContext(t *testing.T) {
	_, client := newSimulated(t, Options{})
	contract := gameContract(t)
	args, err := CoerceArgs(contract.ABI.Constructor.Inputs, gameArgs)
	require.NoError(t, err)

	pending, err := client.Deploy(context.Background(), contract, args...)
	require.NoError(t, err)

	// never committed, so the receipt never shows up
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.WaitDeployed(ctx, pending)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClientChainIDMismatch(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	backend := simulated.NewBackend(types.GenesisAlloc{})
	t.Cleanup(func() { _ = backend.Close() })

	_, err = NewClient(context.Background(), backend.Client(), hex.EncodeToString(crypto.FromECDSA(key)), Options{ExpectedChainID: 80001})
	assert.ErrorIs(t, err, ErrChainIDMismatch)
}

func TestNewClientInvalidKey(t *testing.T) {
	backend := simulated.NewBackend(types.GenesisAlloc{})
	t.Cleanup(func() { _ = backend.Close() })

	_, err := NewClient(context.Background(), backend.Client(), "0xnothex", Options{})
	assert.ErrorContains(t, err, "failed to parse private key")
}

func TestTokenBalanceWithoutCode(t *testing.T) {
	_, client := newSimulated(t, Options{})

	balance, err := client.TokenBalance(context.Background(), common.HexToAddress(gameArgs[1]))
	require.NoError(t, err)
	assert.Zero(t, balance.Sign())
}

func TestFormatUnits(t *testing.T) {
	assert.Equal(t, "0.0001", FormatUnits(big.NewInt(100_000_000_000_000)))
	assert.Equal(t, "1", FormatUnits(big.NewInt(1_000_000_000_000_000_000)))
	assert.Equal(t, "0", FormatUnits(nil))
}
