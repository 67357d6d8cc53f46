package deploy

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ParseConstructorArgs converts CLI-supplied string arguments into the Go
// values the ABI constructor expects, so they can be packed by
// bind.DeployContract.
func ParseConstructorArgs(contractABI abi.ABI, raw []string) ([]any, error) {
	inputs := contractABI.Constructor.Inputs
	if len(raw) != len(inputs) {
		return nil, fmt.Errorf("constructor expects %d argument(s), got %d", len(inputs), len(raw))
	}

	args := make([]any, 0, len(inputs))
	for i, input := range inputs {
		value, err := parseArg(input.Type, raw[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s %s): %w", i, input.Type.String(), input.Name, err)
		}
		args = append(args, value)
	}

	return args, nil
}

func parseArg(t abi.Type, raw string) (any, error) {
	switch t.T {
	case abi.AddressTy:
		if !common.IsHexAddress(raw) {
			return nil, fmt.Errorf("'%s' is not a hex address", raw)
		}
		return common.HexToAddress(raw), nil

	case abi.BoolTy:
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("'%s' is not a boolean", raw)
		}
		return value, nil

	case abi.StringTy:
		return raw, nil

	case abi.UintTy:
		return parseUint(t.Size, raw)

	case abi.IntTy:
		return parseInt(t.Size, raw)

	case abi.BytesTy:
		data := common.FromHex(raw)
		if len(data) == 0 && raw != "0x" && raw != "" {
			return nil, fmt.Errorf("'%s' is not hex-encoded bytes", raw)
		}
		return data, nil

	case abi.FixedBytesTy:
		data := common.FromHex(raw)
		if len(data) != t.Size {
			return nil, fmt.Errorf("expected %d bytes, got %d", t.Size, len(data))
		}
		// ABI packing requires the exact [N]byte array type.
		value := reflect.New(t.GetType()).Elem()
		reflect.Copy(value, reflect.ValueOf(data))
		return value.Interface(), nil

	default:
		return nil, fmt.Errorf("unsupported constructor argument type %s", t.String())
	}
}

// parseUint returns the native Go integer type the ABI packer expects for
// 8/16/32/64-bit sizes, and *big.Int for everything else.
func parseUint(size int, raw string) (any, error) {
	switch size {
	case 8, 16, 32, 64:
		value, err := strconv.ParseUint(raw, 0, size)
		if err != nil {
			return nil, fmt.Errorf("'%s' is not a uint%d", raw, size)
		}
		switch size {
		case 8:
			return uint8(value), nil
		case 16:
			return uint16(value), nil
		case 32:
			return uint32(value), nil
		default:
			return value, nil
		}
	}

	value, ok := new(big.Int).SetString(strings.TrimPrefix(raw, "0x"), base(raw))
	if !ok {
		return nil, fmt.Errorf("'%s' is not an unsigned integer", raw)
	}
	if value.Sign() < 0 {
		return nil, fmt.Errorf("'%s' is negative", raw)
	}
	return value, nil
}

func parseInt(size int, raw string) (any, error) {
	switch size {
	case 8, 16, 32, 64:
		value, err := strconv.ParseInt(raw, 0, size)
		if err != nil {
			return nil, fmt.Errorf("'%s' is not an int%d", raw, size)
		}
		switch size {
		case 8:
			return int8(value), nil
		case 16:
			return int16(value), nil
		case 32:
			return int32(value), nil
		default:
			return value, nil
		}
	}

	value, ok := new(big.Int).SetString(strings.TrimPrefix(raw, "0x"), base(raw))
	if !ok {
		return nil, fmt.Errorf("'%s' is not an integer", raw)
	}
	return value, nil
}

func base(raw string) int {
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		return 16
	}
	return 10
}
