package common

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

func HexToAddress(hex string) common.Address {
	return common.HexToAddress(hex)
}

func HexToHash(hex string) common.Hash {
	return common.HexToHash(hex)
}

// SameAddress compares two hex addresses ignoring checksum casing.
func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimPrefix(a, "0x"), strings.TrimPrefix(b, "0x"))
}

// ShortAddress renders 0x26B3D104...9eC4 style prefixes for tables.
func ShortAddress(addr common.Address) string {
	hex := addr.Hex()
	return fmt.Sprintf("%s...%s", hex[:10], hex[len(hex)-4:])
}

func StringToAddress(str string) (common.Address, error) {
	str = strings.TrimSpace(str)
	if !common.IsHexAddress(str) {
		return common.Address{}, fmt.Errorf("%q is not a valid address", str)
	}
	return common.HexToAddress(str), nil
}
