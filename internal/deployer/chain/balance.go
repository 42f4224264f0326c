package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var balanceOfSelector = crypto.Keccak256([]byte("balanceOf(address)"))[:4]

// TokenBalance returns the deployer's ERC20 balance of token. An address
// without code yields zero.
func (c *Client) TokenBalance(ctx context.Context, token common.Address) (*big.Int, error) {
	data := append(append([]byte{}, balanceOfSelector...), common.LeftPadBytes(c.from.Bytes(), 32)...)

	result, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call balanceOf on %s: %w", token, err)
	}

	return new(big.Int).SetBytes(result), nil
}

// FormatUnits renders amount with 18 decimals, e.g. "0.0001".
func FormatUnits(amount *big.Int) string {
	if amount == nil {
		return "0"
	}

	value := new(big.Float).Quo(new(big.Float).SetInt(amount), new(big.Float).SetInt(big.NewInt(1e18)))
	return value.Text('f', -1)
}
