// Package addrbook maps raw addresses to human readable labels for the tx
// confirmation summary and the info screen.
//
// Production code uses [Default], built from the vault deployment and the
// local account registry. Tests inject [Map].
package addrbook

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	vaultcommon "github.com/tranvictor/vaultctl/common"
)

const Unknown = "unknown"

// Label is an address with its description.
type Label struct {
	Address common.Address
	Desc    string
}

// String renders "0x26B3D104...9eC4 (AAVE USDC Vault)".
func (l Label) String() string {
	return fmt.Sprintf("%s (%s)", vaultcommon.ShortAddress(l.Address), l.Desc)
}

// AddressResolver maps an address to a Label. Unknown addresses get Desc
// "unknown".
type AddressResolver interface {
	Resolve(addr common.Address) Label
}
