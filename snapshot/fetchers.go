package snapshot

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tranvictor/vaultctl/gateway"
	"github.com/tranvictor/vaultctl/vault"
)

func (c *Cache) fetch(ctx context.Context, key FieldKey, s gateway.Session) (*big.Int, common.Address, error) {
	if key.Name.PerAccount() && !s.Connected {
		return nil, common.Address{}, gateway.ErrNotConnected
	}
	var asset vault.AssetDescriptor
	if key.Name.perAsset() {
		a, err := vault.LookupAsset(string(key.Asset))
		if err != nil {
			return nil, common.Address{}, err
		}
		asset = a
	}

	var (
		v   *big.Int
		err error
	)
	switch key.Name {
	case TotalAssets:
		v, err = c.facade.TotalAssets(ctx)
	case CurrentFee:
		v, err = c.facade.Fee(ctx)
	case ClaimableFees:
		v, err = c.facade.ClaimableFees(ctx)
	case ContractOwner:
		owner, err := c.facade.Owner(ctx)
		return nil, owner, err
	case AssetBalance:
		v, err = c.facade.AssetBalance(ctx, asset, s.Account)
	case Allowance:
		v, err = c.facade.Allowance(ctx, asset, s.Account)
	case VaultShareBalance:
		v, err = c.facade.ShareBalance(ctx, s.Account)
	case MaxDepositable:
		v, err = c.facade.MaxDeposit(ctx, s.Account)
	case MaxWithdrawable:
		v, err = c.facade.MaxWithdraw(ctx, s.Account)
	case PreviewedRedeemAssets:
		v, err = c.previewRedeem(ctx, s.Account)
	case LiquidityRate:
		v, err = c.facade.LiquidityRate(ctx, vault.USDCAsset)
	default:
		err = fmt.Errorf("no reader for field %s", key)
	}
	return v, common.Address{}, err
}

// previewRedeem values the whole share balance. No shares is a known 0,
// not a read.
func (c *Cache) previewRedeem(ctx context.Context, account common.Address) (*big.Int, error) {
	shares, err := c.facade.ShareBalance(ctx, account)
	if err != nil {
		return nil, err
	}
	if shares.Sign() == 0 {
		return big.NewInt(0), nil
	}
	return c.facade.PreviewRedeem(ctx, shares)
}
