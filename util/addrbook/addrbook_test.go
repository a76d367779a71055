package addrbook

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tranvictor/vaultctl/accounts"
	"github.com/tranvictor/vaultctl/config"
)

func TestDefaultLabelsDeployment(t *testing.T) {
	r := NewDefault(nil)
	got := r.Resolve(config.VaultAddress).String()
	if got != "0x26B3D104...9eC4 (AAVE USDC Vault)" {
		t.Errorf("got %q", got)
	}
	if r.Resolve(common.HexToAddress("0x01")).Desc != Unknown {
		t.Errorf("unregistered address should be unknown")
	}
}

func TestDefaultUsesAccountDescriptions(t *testing.T) {
	store := accounts.NewStore(t.TempDir())
	addr := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	if err := store.StoreAccountRecord(accounts.AccDesc{Address: addr.Hex(), Kind: accounts.KindKeystore, Desc: "treasury"}); err != nil {
		t.Fatalf("StoreAccountRecord: %s", err)
	}
	if got := NewDefault(store).Resolve(addr).Desc; got != "treasury" {
		t.Errorf("got %q", got)
	}
}

func TestMapIsCaseInsensitive(t *testing.T) {
	m := Map{"0x833589fcd6edb6e08f4c7c32d4f71b54bda02913": "USDC"}
	if m.Resolve(config.USDCAddress).Desc != "USDC" {
		t.Errorf("checksummed lookup failed")
	}
}
