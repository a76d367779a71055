// Package snapshot caches the on-chain reads vaultctl renders and gates
// actions on. Every field is either loading, errored or ready, so a value
// that is missing or stale is never mistaken for zero.
package snapshot

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	vaultcommon "github.com/tranvictor/vaultctl/common"
	"github.com/tranvictor/vaultctl/vault"
)

type FieldName string

const (
	TotalAssets           FieldName = "totalAssets"
	CurrentFee            FieldName = "currentFee"
	ClaimableFees         FieldName = "claimableFees"
	ContractOwner         FieldName = "contractOwner"
	AssetBalance          FieldName = "assetBalance"
	Allowance             FieldName = "allowance"
	VaultShareBalance     FieldName = "vaultShareBalance"
	MaxDepositable        FieldName = "maxDepositable"
	MaxWithdrawable       FieldName = "maxWithdrawable"
	PreviewedRedeemAssets FieldName = "previewedRedeemAssets"
	LiquidityRate         FieldName = "liquidityRate"
)

// PerAccount reports whether the field depends on the session account.
func (n FieldName) PerAccount() bool {
	switch n {
	case AssetBalance, Allowance, VaultShareBalance, MaxDepositable, MaxWithdrawable, PreviewedRedeemAssets:
		return true
	}
	return false
}

func (n FieldName) perAsset() bool {
	return n == AssetBalance || n == Allowance
}

// FieldKey identifies one cached read. Asset is only set for the per-asset
// fields.
type FieldKey struct {
	Name  FieldName
	Asset vault.AssetID
}

func Key(name FieldName) FieldKey {
	return FieldKey{Name: name}
}

func AssetKey(name FieldName, asset vault.AssetID) FieldKey {
	return FieldKey{Name: name, Asset: asset}
}

// String renders "allowance(USDC)" for per-asset keys and the bare name
// otherwise.
func (k FieldKey) String() string {
	if k.Asset == "" {
		return string(k.Name)
	}
	return fmt.Sprintf("%s(%s)", k.Name, k.Asset)
}

// VaultKeys are the fields that do not depend on the account.
func VaultKeys() []FieldKey {
	return []FieldKey{Key(TotalAssets), Key(CurrentFee), Key(ClaimableFees), Key(ContractOwner)}
}

// AccountKeys are the fields of the connected account, for every asset.
func AccountKeys() []FieldKey {
	keys := []FieldKey{}
	for _, a := range vault.Assets() {
		keys = append(keys, AssetKey(AssetBalance, a.ID), AssetKey(Allowance, a.ID))
	}
	return append(keys,
		Key(VaultShareBalance),
		Key(MaxDepositable),
		Key(MaxWithdrawable),
		Key(PreviewedRedeemAssets),
	)
}

// AllKeys is every field that can be read in the current session,
// including the AAVE reserve rate.
func AllKeys(connected bool) []FieldKey {
	keys := append(VaultKeys(), Key(LiquidityRate))
	if connected {
		keys = append(keys, AccountKeys()...)
	}
	return keys
}

type State uint8

const (
	Loading State = iota
	Ready
	Errored
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Errored:
		return "error"
	default:
		return "loading"
	}
}

// Field is one cached read. Value is set for uint256 fields, Address for
// contractOwner.
type Field struct {
	State     State
	Value     *big.Int
	Address   common.Address
	Err       error
	UpdatedAt time.Time
}

func (f Field) Ready() bool {
	return f.State == Ready
}

// Display renders a ready value with decimals, and "loading..." or
// "error" otherwise.
func (f Field) Display(decimals int32) string {
	switch f.State {
	case Ready:
		if f.Value == nil {
			return f.Address.Hex()
		}
		return vaultcommon.ToDisplay(f.Value, decimals)
	case Errored:
		return "error"
	default:
		return "loading..."
	}
}

// ReadError is why a field is Errored.
type ReadError struct {
	Field FieldKey
	Err   error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading %s: %s", e.Field, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Snapshot is a point in time copy of the cache.
type Snapshot map[FieldKey]Field

// Get returns the field of key, Loading when it was never read.
func (s Snapshot) Get(key FieldKey) Field {
	if f, ok := s[key]; ok {
		return f
	}
	return Field{State: Loading}
}
