package account

import (
	"crypto/ecdsa"
	"errors"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrEmptyKey = errors.New("empty private key")

func AddressFromPrivateKey(key *ecdsa.PrivateKey) string {
	return crypto.PubkeyToAddress(key.PublicKey).Hex()
}

func PrivateKeyFromKeystore(file string, password string) (string, *ecdsa.PrivateKey, error) {
	json, err := os.ReadFile(file)
	if err != nil {
		return "", nil, err
	}
	key, err := keystore.DecryptKey(json, password)
	if err != nil {
		return "", nil, err
	}
	return AddressFromPrivateKey(key.PrivateKey), key.PrivateKey, nil
}

// PrivateKeyFromHex works with both 0x prefixed and naked keys.
func PrivateKeyFromHex(hex string) (string, *ecdsa.PrivateKey, error) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "0x")
	if hex == "" {
		return "", nil, ErrEmptyKey
	}
	privkey, err := crypto.HexToECDSA(hex)
	if err != nil {
		return "", nil, err
	}
	return AddressFromPrivateKey(privkey), privkey, nil
}

// StoreKeystore encrypts key with password into a fresh keystore file under
// dir and returns its path.
func StoreKeystore(dir string, key *ecdsa.PrivateKey, password string) (string, error) {
	ks := keystore.NewKeyStore(dir, keystore.LightScryptN, keystore.LightScryptP)
	acc, err := ks.ImportECDSA(key, password)
	if err != nil {
		return "", err
	}
	return acc.URL.Path, nil
}
