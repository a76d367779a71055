package account

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// well known anvil/hardhat account #0
const (
	testKey     = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestPrivateKeyAccountSigns(t *testing.T) {
	acc, err := NewPrivateKeyAccount(testKey)
	if err != nil {
		t.Fatalf("NewPrivateKeyAccount: %s", err)
	}
	if acc.Address() != common.HexToAddress(testAddress) {
		t.Fatalf("address: got %s", acc.AddressHex())
	}

	chainID := big.NewInt(8453)
	to := common.HexToAddress("0x26B3D10418807513f38C35f68Ed011d2250d9eC4")
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID: chainID, Nonce: 1, Gas: 100000,
		GasTipCap: big.NewInt(1), GasFeeCap: big.NewInt(2), To: &to, Value: big.NewInt(0),
	})
	signed, err := acc.SignTx(tx, chainID)
	if err != nil {
		t.Fatalf("SignTx: %s", err)
	}
	sender, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
	if err != nil {
		t.Fatalf("recover sender: %s", err)
	}
	if sender != acc.Address() {
		t.Errorf("recovered %s, want %s", sender.Hex(), acc.AddressHex())
	}
}

func TestKeystoreRoundTrip(t *testing.T) {
	_, key, err := PrivateKeyFromHex(testKey[2:])
	if err != nil {
		t.Fatalf("PrivateKeyFromHex: %s", err)
	}
	path, err := StoreKeystore(t.TempDir(), key, "secret")
	if err != nil {
		t.Fatalf("StoreKeystore: %s", err)
	}
	acc, err := NewKeystoreAccount(path, "secret")
	if err != nil {
		t.Fatalf("NewKeystoreAccount: %s", err)
	}
	if acc.Address() != common.HexToAddress(testAddress) {
		t.Errorf("got %s", acc.AddressHex())
	}
	if _, err := NewKeystoreAccount(path, "wrong"); err == nil {
		t.Errorf("wrong password should fail")
	}
}

func TestEmptyKey(t *testing.T) {
	if _, _, err := PrivateKeyFromHex("0x"); err != ErrEmptyKey {
		t.Errorf("got %v", err)
	}
}
