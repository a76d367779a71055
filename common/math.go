package common

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxUint256 is used as the allowance of an unlimited approval.
var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

var (
	ErrEmptyAmount       = errors.New("amount is empty")
	ErrMalformedAmount   = errors.New("amount is not a decimal number")
	ErrNegativeAmount    = errors.New("amount can't be negative")
	ErrTooPrecise        = errors.New("amount has more fractional digits than supported")
	ErrPercentOutOfRange = errors.New("percentage must be between 0 and 100")
)

const (
	FeeDecimals   int32 = 18
	RayDecimals   int32 = 27
	ShareDecimals int32 = 18
)

// ToDisplay converts a fixed point integer to its exact decimal form.
// Example:
// - ToDisplay(1500000, 6) = "1.5"
// - ToDisplay(0, 6) = "0"
// - ToDisplay(42, 0) = "42"
//
// A nil raw value returns "" so that a missing read is never displayed as 0.
func ToDisplay(raw *big.Int, decimals int32) string {
	if raw == nil {
		return ""
	}
	return decimal.NewFromBigInt(raw, -decimals).String()
}

// ParseUnits is the inverse of ToDisplay: it turns a user entered decimal
// amount into its fixed point integer form with the given number of
// decimals. Amounts with more fractional digits than decimals are rejected
// instead of being rounded.
func ParseUnits(amount string, decimals int32) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, ErrEmptyAmount
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrMalformedAmount, amount)
	}
	if d.IsNegative() {
		return nil, ErrNegativeAmount
	}
	scaled := d.Shift(decimals)
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("%w: %q has more than %d decimals", ErrTooPrecise, amount, decimals)
	}
	return scaled.BigInt(), nil
}

// FeeToPercent renders an 18 decimal fee ratio as a percentage with 2
// decimal places. 10^17 is "10.00".
func FeeToPercent(ratio *big.Int) string {
	if ratio == nil {
		return ""
	}
	return decimal.NewFromBigInt(ratio, -FeeDecimals).Shift(2).StringFixed(2)
}

// PercentToFee converts a percentage string such as "12.5" to the 18
// decimal ratio the vault stores.
func PercentToFee(percent string) (*big.Int, error) {
	percent = strings.TrimSpace(percent)
	if percent == "" {
		return nil, ErrEmptyAmount
	}
	d, err := decimal.NewFromString(percent)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrMalformedAmount, percent)
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("%w: got %s", ErrPercentOutOfRange, percent)
	}
	scaled := d.Shift(FeeDecimals - 2)
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("%w: %q", ErrTooPrecise, percent)
	}
	return scaled.BigInt(), nil
}

// GweiToWei converts a gwei amount provided by a flag to wei.
func GweiToWei(gwei float64) *big.Int {
	return decimal.NewFromFloat(gwei).Shift(9).BigInt()
}

func WeiToGwei(wei *big.Int) string {
	return ToDisplay(wei, 9)
}

// MulPercent returns v * percent / 100, truncated.
func MulPercent(v *big.Int, percent int64) *big.Int {
	r := new(big.Int).Mul(v, big.NewInt(percent))
	return r.Quo(r, big.NewInt(100))
}
