package vault

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tranvictor/vaultctl/config"
)

type AssetID string

const (
	USDC  AssetID = "USDC"
	AUSDC AssetID = "aUSDC"
)

var ErrUnknownAsset = errors.New("unknown asset")

// AssetDescriptor is one of the two tokens the vault accepts. The vault
// entry points differ per asset.
type AssetDescriptor struct {
	ID       AssetID
	Address  common.Address
	Decimals int32
	Name     string

	DepositMethod  string
	WithdrawMethod string
}

var (
	USDCAsset = AssetDescriptor{
		ID:             USDC,
		Address:        config.USDCAddress,
		Decimals:       6,
		Name:           "USDC",
		DepositMethod:  "deposit",
		WithdrawMethod: "withdraw",
	}
	AUSDCAsset = AssetDescriptor{
		ID:             AUSDC,
		Address:        config.AUSDCAddress,
		Decimals:       6,
		Name:           "aUSDC",
		DepositMethod:  "depositATokens",
		WithdrawMethod: "withdrawATokens",
	}
)

func Assets() []AssetDescriptor {
	return []AssetDescriptor{USDCAsset, AUSDCAsset}
}

// Asset returns the descriptor of id. It panics on ids that are not one of
// the package constants.
func Asset(id AssetID) AssetDescriptor {
	for _, a := range Assets() {
		if a.ID == id {
			return a
		}
	}
	panic(fmt.Sprintf("vault: no descriptor for asset %q", id))
}

// LookupAsset resolves a user supplied asset name, case-insensitively.
func LookupAsset(name string) (AssetDescriptor, error) {
	for _, a := range Assets() {
		if strings.EqualFold(strings.TrimSpace(name), string(a.ID)) {
			return a, nil
		}
	}
	return AssetDescriptor{}, fmt.Errorf("%w %q, expected usdc or ausdc", ErrUnknownAsset, name)
}
