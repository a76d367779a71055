package accounts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gethkeystore "github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
	"golang.org/x/term"

	"github.com/tranvictor/vaultctl/logger"
	"github.com/tranvictor/vaultctl/util/account"
)

const (
	KindKeystore   = "keystore"
	KindPrivateKey = "privatekey"

	// PrivateKeyEnv holds a hex key used when no keystore is picked.
	PrivateKeyEnv = "VAULTCTL_PRIVATE_KEY"
)

// ErrWalletAuthorization is what a failed unlock surfaces to the user.
var ErrWalletAuthorization = errors.New("Please connect your wallet to this site")

var ErrNoAccount = errors.New("no account found")

type AccDesc struct {
	Address string
	Kind    string
	Keypath string
	Desc    string
}

// PasswordFunc returns the passphrase for the keystore at path.
type PasswordFunc func(path string) (string, error)

// Store keeps account descriptors as <dir>/<address>.json and keystores in
// <dir>/keystores.
type Store struct {
	dir     string
	scryptN int
	scryptP int
}

func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vaultctl"
	}
	return filepath.Join(home, ".vaultctl")
}

func NewStore(dir string) *Store {
	return &Store{
		dir:     dir,
		scryptN: gethkeystore.StandardScryptN,
		scryptP: gethkeystore.StandardScryptP,
	}
}

// WithLightScrypt makes keystores cheap to encrypt, for tests.
func (s *Store) WithLightScrypt() *Store {
	s.scryptN = gethkeystore.LightScryptN
	s.scryptP = gethkeystore.LightScryptP
	return s
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) StorePrivateKeyWithKeystore(privateKey string, passphrase string) (string, error) {
	priv, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKey), "0x"))
	if err != nil {
		return "", err
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	key := &gethkeystore.Key{
		Id:         id,
		Address:    crypto.PubkeyToAddress(priv.PublicKey),
		PrivateKey: priv,
	}

	keystoreJson, err := gethkeystore.EncryptKey(key, passphrase, s.scryptN, s.scryptP)
	if err != nil {
		return "", fmt.Errorf("encrypting keystore: %w", err)
	}

	dir := filepath.Join(s.dir, "keystores")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("%s.json", key.Address.Hex()))
	return path, os.WriteFile(path, keystoreJson, 0o600)
}

type keystoreAddress struct {
	Address string `json:"address"`
}

// VerifyKeystore returns the address a keystore file claims to hold.
func VerifyKeystore(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	k := &keystoreAddress{}
	if err := json.Unmarshal(content, k); err != nil {
		return "", err
	}
	if !common.IsHexAddress(k.Address) {
		return "", fmt.Errorf("%s does not look like a keystore", path)
	}
	return common.HexToAddress(k.Address).Hex(), nil
}

func (s *Store) StoreAccountRecord(accDesc AccDesc) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	path := filepath.Join(s.dir, fmt.Sprintf("%s.json", accDesc.Address))
	content, err := json.MarshalIndent(accDesc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o600)
}

// GetAccounts returns address -> descriptor for every record in the store.
// Unreadable records are logged and skipped.
func (s *Store) GetAccounts() map[string]AccDesc {
	log := logger.GetForComponent("accounts")
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		log.Warn().Err(err).Msg("listing accounts failed")
		return map[string]AccDesc{}
	}
	result := map[string]AccDesc{}
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			log.Warn().Err(err).Str("path", p).Msg("reading account description failed, skipping")
			continue
		}
		desc := AccDesc{}
		if err := json.Unmarshal(content, &desc); err != nil {
			log.Warn().Err(err).Str("path", p).Msg("decoding account description failed, skipping")
			continue
		}
		addr := strings.TrimSuffix(filepath.Base(p), ".json")
		if !common.IsHexAddress(addr) {
			continue
		}
		result[common.HexToAddress(addr).Hex()] = desc
	}
	return result
}

// GetAccount picks the best fuzzy match of input over address and
// description.
func (s *Store) GetAccount(input string) (AccDesc, error) {
	source := s.NewFuzzySource()
	matches := fuzzy.FindFrom(strings.ReplaceAll(input, " ", "_"), source)
	if len(matches) == 0 {
		return AccDesc{}, fmt.Errorf("%w with '%s'", ErrNoAccount, input)
	}
	return source[matches[0].Index], nil
}

// ReadSecret writes prompt to stderr and reads one line from stdin without
// echoing it.
func ReadSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(secret)), nil
}

// TerminalPassword reads a passphrase from stdin without echo.
func TerminalPassword(path string) (string, error) {
	return ReadSecret(fmt.Sprintf("Using keystore: %s\nEnter passphrase: ", path))
}

// UnlockAccount opens the signer described by ad. Any failure is reported as
// ErrWalletAuthorization with the cause attached.
func UnlockAccount(ad AccDesc, password PasswordFunc) (*account.Account, error) {
	var (
		acc *account.Account
		err error
	)
	switch ad.Kind {
	case KindKeystore:
		var pwd string
		pwd, err = password(ad.Keypath)
		if err == nil {
			acc, err = account.NewKeystoreAccount(ad.Keypath, pwd)
		}
	case KindPrivateKey:
		acc, err = account.NewPrivateKeyAccount(os.Getenv(PrivateKeyEnv))
	default:
		err = fmt.Errorf("unsupported account kind %q", ad.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWalletAuthorization, err)
	}
	if ad.Address != "" && acc.Address() != common.HexToAddress(ad.Address) {
		return nil, fmt.Errorf("%w: unlocked %s but expected %s", ErrWalletAuthorization, acc.AddressHex(), ad.Address)
	}
	return acc, nil
}

// EnvAccount returns a descriptor for PrivateKeyEnv when it is set.
func EnvAccount() (AccDesc, bool) {
	hex := os.Getenv(PrivateKeyEnv)
	if hex == "" {
		return AccDesc{}, false
	}
	addr, _, err := account.PrivateKeyFromHex(hex)
	if err != nil {
		return AccDesc{Kind: KindPrivateKey, Desc: "env"}, true
	}
	return AccDesc{Address: addr, Kind: KindPrivateKey, Desc: "env"}, true
}
