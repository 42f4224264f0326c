package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/compose-network/random-winner-game/configs"
	"github.com/compose-network/random-winner-game/internal/deployer/artifacts"
	"github.com/compose-network/random-winner-game/internal/logger"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

var (
	ErrReverted        = errors.New("deployment transaction reverted")
	ErrNoCode          = errors.New("no code at deployed address")
	ErrChainIDMismatch = errors.New("chain ID mismatch")
)

type (
	// Backend is the node API deployments need. Both *ethclient.Client and the
	// go-ethereum simulated backend satisfy it.
	Backend interface {
		bind.ContractBackend
		bind.DeployBackend
		ChainID(ctx context.Context) (*big.Int, error)
		BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	}

	Options struct {
		ExpectedChainID     int64
		GasLimit            uint64
		ConfirmationTimeout time.Duration
	}

	// Client signs and submits deployments with a single key.
	Client struct {
		backend Backend
		close   func()
		key     *ecdsa.PrivateKey
		from    common.Address
		chainID *big.Int
		opts    Options
		logger  *slog.Logger
	}

	// PendingDeployment is a deployment transaction accepted by the node but not
	// yet confirmed. Address is already known since it only depends on sender and nonce.
	PendingDeployment struct {
		Address common.Address
		TxHash  common.Hash
		tx      *types.Transaction
	}

	Receipt struct {
		Address     common.Address
		TxHash      common.Hash
		BlockNumber uint64
		GasUsed     uint64
	}
)

// Dial connects to the configured RPC endpoint.
func Dial(ctx context.Context, network configs.Network) (*Client, error) {
	rpcClient, err := ethclient.DialContext(ctx, network.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", network.RPCURL, err)
	}

	client, err := NewClient(ctx, rpcClient, network.PrivateKey, Options{
		ExpectedChainID:     network.ChainID,
		GasLimit:            network.GasLimit,
		ConfirmationTimeout: network.ConfirmationTimeout,
	})
	if err != nil {
		rpcClient.Close()
		return nil, err
	}
	client.close = rpcClient.Close

	return client, nil
}

// NewClient creates a client over an existing backend.
func NewClient(ctx context.Context, backend Backend, privateKeyHex string, opts Options) (*Client, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse private key: %w", configs.ErrConfiguration, err)
	}

	publicKey, ok := key.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("failed to cast public key to ECDSA")
	}

	c := &Client{
		backend: backend,
		close:   func() {},
		key:     key,
		from:    crypto.PubkeyToAddress(*publicKey),
		opts:    opts,
		logger:  logger.Named("chain_client"),
	}

	c.logger.Info("fetching chain ID")
	c.chainID, err = backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	if opts.ExpectedChainID != 0 && c.chainID.Int64() != opts.ExpectedChainID {
		return nil, fmt.Errorf("%w: node reports %s, configuration expects %d", ErrChainIDMismatch, c.chainID, opts.ExpectedChainID)
	}
	c.logger.With("chain_id", c.chainID).With("from", c.from).Info("chain ID was fetched")

	return c, nil
}

func (c *Client) Close() {
	c.close()
}

// From returns the deployer address.
func (c *Client) From() common.Address {
	return c.from
}

func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// Balance returns the deployer's balance at the latest block.
func (c *Client) Balance(ctx context.Context) (*big.Int, error) {
	balance, err := c.backend.BalanceAt(ctx, c.from, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance of %s: %w", c.from, err)
	}

	return balance, nil
}

// Deploy signs and submits the creation transaction for contract. It returns
// once the node has accepted the transaction.
func (c *Client) Deploy(ctx context.Context, contract *artifacts.Contract, args ...any) (*PendingDeployment, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	auth.Context = ctx
	auth.GasLimit = c.opts.GasLimit

	address, tx, _, err := bind.DeployContract(auth, contract.ABI, contract.Bytecode, c.backend, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy %s: %w", contract.Name, err)
	}

	c.logger.
		With("contract", contract.Name).
		With("address", address).
		With("tx_hash", tx.Hash().Hex()).
		Info("contract deployment transaction sent")

	return &PendingDeployment{Address: address, TxHash: tx.Hash(), tx: tx}, nil
}

// WaitDeployed blocks until the deployment is mined and code exists at its
// address, or the confirmation timeout expires.
func (c *Client) WaitDeployed(ctx context.Context, pending *PendingDeployment) (*Receipt, error) {
	if c.opts.ConfirmationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.ConfirmationTimeout)
		defer cancel()
	}

	c.logger.With("tx_hash", pending.TxHash.Hex()).Info("waiting for deployment confirmation")

	receipt, err := bind.WaitMined(ctx, c.backend, pending.tx)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for transaction %s: %w", pending.TxHash.Hex(), err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: tx %s in block %s", ErrReverted, pending.TxHash.Hex(), receipt.BlockNumber)
	}

	code, err := c.backend.CodeAt(ctx, pending.Address, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read code at %s: %w", pending.Address, err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoCode, pending.Address)
	}

	return &Receipt{
		Address:     pending.Address,
		TxHash:      pending.TxHash,
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
	}, nil
}
