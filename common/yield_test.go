package common

import (
	"math/big"
	"testing"
)

// ray returns v * 10^27 for v given with 4 decimals, e.g. ray(520) = 0.0520e27.
func ray(v int64) *big.Int {
	r := new(big.Int).Exp(big.NewInt(10), big.NewInt(23), nil)
	return r.Mul(r, big.NewInt(v))
}

func fee(percent int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(percent), big.NewInt(1e16))
}

func TestVaultYieldPercent(t *testing.T) {
	tests := []struct {
		name string
		rate *big.Int
		fee  *big.Int
		want string
	}{
		{"5.20% aave with 10% fee", ray(520), fee(10), "4.68"},
		{"no fee", ray(520), fee(0), "5.20"},
		{"full fee", ray(520), fee(100), "0.00"},
		{"zero rate", big.NewInt(0), fee(10), "0.00"},
		{"missing rate", nil, fee(10), NoData},
		{"missing fee", ray(520), nil, NoData},
		{"negative rate", big.NewInt(-1), fee(10), CalculationError},
		{"fee above 100%", ray(520), fee(101), CalculationError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := VaultYieldPercent(tc.rate, tc.fee); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAaveYieldPercent(t *testing.T) {
	if got := AaveYieldPercent(ray(520)); got != "5.20" {
		t.Errorf("AaveYieldPercent: got %q, want 5.20", got)
	}
	if got := AaveYieldPercent(nil); got != NoData {
		t.Errorf("AaveYieldPercent(nil): got %q, want %q", got, NoData)
	}
}

func TestVaultYieldNeverSilentlyZero(t *testing.T) {
	// absent inputs must be distinguishable from a real 0% yield
	if VaultYieldPercent(nil, nil) == VaultYieldPercent(big.NewInt(0), fee(0)) {
		t.Fatalf("missing inputs rendered the same as a zero yield")
	}
}
