package addrbook

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Map is a lightweight AddressResolver keyed by lower-cased hex address.
//
//	r := addrbook.Map{
//	    "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913": "USDC",
//	}
type Map map[string]string

func (m Map) Resolve(addr common.Address) Label {
	if desc, ok := m[strings.ToLower(addr.Hex())]; ok {
		return Label{Address: addr, Desc: desc}
	}
	return Label{Address: addr, Desc: Unknown}
}
