package vault

import (
	"context"
	"math/big"

	vaultcommon "github.com/tranvictor/vaultctl/common"
)

// LiquidityRate reads the supply rate of asset's AAVE reserve, in ray.
func (f *Facade) LiquidityRate(ctx context.Context, asset AssetDescriptor) (*big.Int, error) {
	out, err := f.r.Read(ctx, f.dataProvider, vaultcommon.GetAaveDataProviderABI(), "getReserveData", asset.Address)
	if err != nil {
		return nil, err
	}
	return UintAt(out, vaultcommon.LiquidityRateIndex, "getReserveData")
}
