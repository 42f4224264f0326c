package chain

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrInvalidArgument is returned when a constructor argument cannot be
// converted to its ABI type.
var ErrInvalidArgument = errors.New("invalid constructor argument")

var units = map[string]int{
	"wei":   0,
	"gwei":  9,
	"ether": 18,
}

// CoerceArgs converts string values into the Go types go-ethereum packs for
// the given ABI arguments. Values are matched to arguments by position.
func CoerceArgs(inputs abi.Arguments, values []string) ([]any, error) {
	if len(inputs) != len(values) {
		return nil, fmt.Errorf("%w: constructor takes %d arguments, got %d", ErrInvalidArgument, len(inputs), len(values))
	}

	args := make([]any, 0, len(values))
	for i, input := range inputs {
		arg, err := coerce(input.Type, strings.TrimSpace(values[i]))
		if err != nil {
			name := input.Name
			if name == "" {
				name = strconv.Itoa(i)
			}
			return nil, fmt.Errorf("%w %s (%s): %w", ErrInvalidArgument, name, input.Type.String(), err)
		}
		args = append(args, arg)
	}

	return args, nil
}

// EncodeArgs ABI-encodes constructor arguments as hex without the 0x prefix,
// the format block explorers expect.
func EncodeArgs(inputs abi.Arguments, args []any) (string, error) {
	if len(inputs) == 0 {
		return "", nil
	}

	packed, err := inputs.Pack(args...)
	if err != nil {
		return "", fmt.Errorf("failed to encode constructor arguments: %w", err)
	}

	return hex.EncodeToString(packed), nil
}

func coerce(typ abi.Type, value string) (any, error) {
	switch typ.T {
	case abi.AddressTy:
		if !common.IsHexAddress(value) {
			return nil, fmt.Errorf("'%s' is not a hex address", value)
		}
		return common.HexToAddress(value), nil

	case abi.FixedBytesTy:
		raw, err := hexutil.Decode(value)
		if err != nil {
			return nil, fmt.Errorf("'%s' is not 0x-prefixed hex: %w", value, err)
		}
		if len(raw) != typ.Size {
			return nil, fmt.Errorf("expected %d bytes, got %d", typ.Size, len(raw))
		}
		array := reflect.New(typ.GetType()).Elem()
		reflect.Copy(array, reflect.ValueOf(raw))
		return array.Interface(), nil

	case abi.BytesTy:
		raw, err := hexutil.Decode(value)
		if err != nil {
			return nil, fmt.Errorf("'%s' is not 0x-prefixed hex: %w", value, err)
		}
		return raw, nil

	case abi.UintTy, abi.IntTy:
		n, err := ParseAmount(value)
		if err != nil {
			return nil, err
		}
		return fitInteger(typ, n)

	case abi.BoolTy:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("'%s' is not a boolean", value)
		}
		return b, nil

	case abi.StringTy:
		return value, nil

	default:
		return nil, fmt.Errorf("unsupported argument type %s", typ.String())
	}
}

func fitInteger(typ abi.Type, n *big.Int) (any, error) {
	if typ.T == abi.UintTy {
		if n.Sign() < 0 {
			return nil, fmt.Errorf("%s is negative", n)
		}
		if n.BitLen() > typ.Size {
			return nil, fmt.Errorf("%s overflows uint%d", n, typ.Size)
		}
	} else {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(typ.Size-1))
		if n.Cmp(limit) >= 0 || n.Cmp(new(big.Int).Neg(limit)) < 0 {
			return nil, fmt.Errorf("%s overflows int%d", n, typ.Size)
		}
	}

	// go-ethereum packs every width other than 8, 16, 32 and 64 bits from *big.Int.
	if typ.GetType() == reflect.TypeOf(n) {
		return n, nil
	}

	var v reflect.Value
	if typ.T == abi.UintTy {
		v = reflect.ValueOf(n.Uint64())
	} else {
		v = reflect.ValueOf(n.Int64())
	}
	return v.Convert(typ.GetType()).Interface(), nil
}

// ParseAmount parses a decimal or 0x-hex integer, optionally followed by a
// unit ("wei", "gwei", "ether"), e.g. "0.0001 ether".
func ParseAmount(value string) (*big.Int, error) {
	number, unit, hasUnit := strings.Cut(strings.TrimSpace(value), " ")
	decimals := 0
	if hasUnit {
		d, ok := units[strings.ToLower(strings.TrimSpace(unit))]
		if !ok {
			return nil, fmt.Errorf("unknown unit '%s'", unit)
		}
		decimals = d
	}

	if strings.HasPrefix(number, "0x") || strings.HasPrefix(number, "0X") {
		if hasUnit {
			return nil, fmt.Errorf("hex amount '%s' cannot carry a unit", value)
		}
		n, ok := new(big.Int).SetString(number[2:], 16)
		if !ok {
			return nil, fmt.Errorf("'%s' is not a hex integer", value)
		}
		return n, nil
	}

	whole, fraction, _ := strings.Cut(number, ".")
	if len(fraction) > decimals {
		return nil, fmt.Errorf("'%s' has more than %d decimals", value, decimals)
	}
	digits := whole + fraction + strings.Repeat("0", decimals-len(fraction))

	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("'%s' is not an integer amount", value)
	}

	return n, nil
}
