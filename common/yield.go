package common

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	NoData           = "No data"
	CalculationError = "Calculation error"
)

var (
	ErrNoData         = errors.New("no data")
	ErrMalformedInput = errors.New("malformed yield input")
)

var (
	one     = decimal.NewFromInt(1)
	feeOne  = new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(FeeDecimals)), nil)
	hundred = decimal.NewFromInt(100)
)

// AaveYield converts AAVE's liquidity rate (ray, 27 decimals, annualized)
// into a percentage. No compounding is applied.
func AaveYield(liquidityRate *big.Int) (decimal.Decimal, error) {
	if liquidityRate == nil {
		return decimal.Zero, ErrNoData
	}
	if liquidityRate.Sign() < 0 {
		return decimal.Zero, ErrMalformedInput
	}
	return decimal.NewFromBigInt(liquidityRate, -RayDecimals).Mul(hundred), nil
}

// VaultYield is the supply yield a depositor keeps after the vault fee:
// aaveYield * (1 - fee).
func VaultYield(liquidityRate, fee *big.Int) (decimal.Decimal, error) {
	if liquidityRate == nil || fee == nil {
		return decimal.Zero, ErrNoData
	}
	aave, err := AaveYield(liquidityRate)
	if err != nil {
		return decimal.Zero, err
	}
	if fee.Sign() < 0 || fee.Cmp(feeOne) > 0 {
		return decimal.Zero, ErrMalformedInput
	}
	feeFraction := decimal.NewFromBigInt(fee, -FeeDecimals)
	return aave.Mul(one.Sub(feeFraction)), nil
}

func AaveYieldPercent(liquidityRate *big.Int) string {
	return percentOrMarker(AaveYield(liquidityRate))
}

// VaultYieldPercent renders VaultYield with 2 decimals, NoData when an input
// is missing and CalculationError when an input is malformed.
func VaultYieldPercent(liquidityRate, fee *big.Int) string {
	return percentOrMarker(VaultYield(liquidityRate, fee))
}

func percentOrMarker(v decimal.Decimal, err error) string {
	switch {
	case errors.Is(err, ErrNoData):
		return NoData
	case err != nil:
		return CalculationError
	}
	return v.StringFixed(2)
}
