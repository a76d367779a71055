package addrbook

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tranvictor/vaultctl/accounts"
	"github.com/tranvictor/vaultctl/config"
)

// Default knows the vault deployment addresses and, when a store is given,
// the descriptions of locally registered accounts.
type Default struct {
	known Map
	store *accounts.Store
}

func NewDefault(store *accounts.Store) AddressResolver {
	known := Map{}
	add := func(a common.Address, desc string) {
		known[strings.ToLower(a.Hex())] = desc
	}
	add(config.VaultAddress, "AAVE USDC Vault")
	add(config.USDCAddress, "USDC")
	add(config.AUSDCAddress, "aUSDC")
	add(config.AaveDataProvider, "AAVE Protocol Data Provider")
	add(config.AaveAddressProvider, "AAVE Pool Addresses Provider")
	add(common.HexToAddress(config.AaveUIPoolDataProviderHex), "AAVE UI Pool Data Provider")
	return Default{known: known, store: store}
}

func (r Default) Resolve(addr common.Address) Label {
	if l := r.known.Resolve(addr); l.Desc != Unknown {
		return l
	}
	if r.store != nil {
		if desc, ok := r.store.GetAccounts()[addr.Hex()]; ok && desc.Desc != "" {
			return Label{Address: addr, Desc: desc.Desc}
		}
	}
	return Label{Address: addr, Desc: Unknown}
}
