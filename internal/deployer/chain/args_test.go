package chain

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constructorInputs(t *testing.T, types ...string) abi.Arguments {
	t.Helper()

	var inputs []string
	for _, typ := range types {
		inputs = append(inputs, `{"name":"","type":"`+typ+`"}`)
	}
	parsed, err := abi.JSON(strings.NewReader(`[{"type":"constructor","inputs":[` + strings.Join(inputs, ",") + `]}]`))
	require.NoError(t, err)
	return parsed.Constructor.Inputs
}

func TestCoerceArgsGameConstructor(t *testing.T) {
	inputs := constructorInputs(t, "address", "address", "bytes32", "uint256")

	args, err := CoerceArgs(inputs, gameArgs)
	require.NoError(t, err)
	require.Len(t, args, 4)

	assert.Equal(t, common.HexToAddress(gameArgs[0]), args[0])
	assert.Equal(t, common.HexToAddress(gameArgs[1]), args[1])
	assert.Equal(t, common.HexToHash(gameArgs[2]), common.Hash(args[2].([32]byte)))
	assert.Equal(t, big.NewInt(100_000_000_000_000), args[3])

	encoded, err := EncodeArgs(inputs, args)
	require.NoError(t, err)
	assert.Len(t, encoded, 4*64)
	assert.Equal(t, "0000000000000000000000008c7382f9d8f56b33781fe506e897a4f1e2d17255", encoded[:64])
	assert.Equal(t, "00000000000000000000000000000000000000000000000000005af3107a4000", encoded[192:])
}

func TestCoerceArgsErrors(t *testing.T) {
	tests := []struct {
		name   string
		types  []string
		values []string
		want   string
	}{
		{name: "count mismatch", types: []string{"address"}, values: []string{}, want: "takes 1 arguments, got 0"},
		{name: "bad address", types: []string{"address"}, values: []string{"0x1234"}, want: "not a hex address"},
		{name: "short bytes32", types: []string{"bytes32"}, values: []string{"0x1234"}, want: "expected 32 bytes, got 2"},
		{name: "non hex bytes32", types: []string{"bytes32"}, values: []string{"zz"}, want: "not 0x-prefixed hex"},
		{name: "negative uint", types: []string{"uint256"}, values: []string{"-1"}, want: "is negative"},
		{name: "uint8 overflow", types: []string{"uint8"}, values: []string{"256"}, want: "overflows uint8"},
		{name: "int8 overflow", types: []string{"int8"}, values: []string{"-129"}, want: "overflows int8"},
		{name: "too many decimals", types: []string{"uint256"}, values: []string{"1.5 wei"}, want: "more than 0 decimals"},
		{name: "unknown unit", types: []string{"uint256"}, values: []string{"1 finney"}, want: "unknown unit"},
		{name: "bad bool", types: []string{"bool"}, values: []string{"maybe"}, want: "not a boolean"},
		{name: "unsupported", types: []string{"uint256[]"}, values: []string{"1"}, want: "unsupported argument type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CoerceArgs(constructorInputs(t, tt.types...), tt.values)
			require.ErrorIs(t, err, ErrInvalidArgument)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCoerceArgsSmallIntegers(t *testing.T) {
	args, err := CoerceArgs(constructorInputs(t, "uint8", "int64", "uint24", "bool", "string", "bytes"), []string{"255", "-5", "0x10", "true", "game", "0xbeef"})
	require.NoError(t, err)

	assert.Equal(t, uint8(255), args[0])
	assert.Equal(t, int64(-5), args[1])
	assert.Equal(t, big.NewInt(16), args[2])
	assert.Equal(t, true, args[3])
	assert.Equal(t, "game", args[4])
	assert.Equal(t, []byte{0xbe, 0xef}, args[5])
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "100000000000000", want: "100000000000000"},
		{in: "0.0001 ether", want: "100000000000000"},
		{in: "1 ether", want: "1000000000000000000"},
		{in: "2.5 gwei", want: "2500000000"},
		{in: "0x5af3107a4000", want: "100000000000000"},
		{in: "7 WEI", want: "7"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
