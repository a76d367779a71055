package vault

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	vaultcommon "github.com/tranvictor/vaultctl/common"
	"github.com/tranvictor/vaultctl/config"
)

type readCall struct {
	contract common.Address
	method   string
	args     []interface{}
}

// abiReader round-trips both arguments and outputs through the ABI so type
// mistakes fail like they would against a node.
type abiReader struct {
	outputs map[string][]interface{}
	calls   []readCall
}

func (r *abiReader) Read(ctx context.Context, contract common.Address, a *abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	if _, err := a.Pack(method, args...); err != nil {
		return nil, err
	}
	r.calls = append(r.calls, readCall{contract, method, args})
	out, ok := r.outputs[method]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	data, err := a.Methods[method].Outputs.Pack(out...)
	if err != nil {
		return nil, err
	}
	return a.Unpack(method, data)
}

func TestAssetEntryPoints(t *testing.T) {
	f := NewFacade(&abiReader{})
	acct := common.HexToAddress("0xaa")
	amount := big.NewInt(1_500_000)

	cases := []struct {
		call   Call
		method string
		nargs  int
	}{
		{f.DepositCall(USDCAsset, amount, acct), "deposit", 2},
		{f.DepositCall(AUSDCAsset, amount, acct), "depositATokens", 2},
		{f.WithdrawCall(USDCAsset, amount, acct), "withdraw", 3},
		{f.WithdrawCall(AUSDCAsset, amount, acct), "withdrawATokens", 3},
	}
	for _, tc := range cases {
		if tc.call.Method != tc.method || len(tc.call.Args) != tc.nargs {
			t.Errorf("got %s with %d args, want %s with %d", tc.call.Method, len(tc.call.Args), tc.method, tc.nargs)
		}
		if tc.call.Contract != config.VaultAddress {
			t.Errorf("%s should target the vault", tc.method)
		}
		if _, err := tc.call.ABI.Pack(tc.call.Method, tc.call.Args...); err != nil {
			t.Errorf("%s args do not pack: %s", tc.method, err)
		}
	}
	w := f.WithdrawCall(USDCAsset, amount, acct)
	if w.Args[1] != acct || w.Args[2] != acct {
		t.Errorf("withdraw receiver and owner should both be the account: %v", w.Args)
	}
}

func TestApproveCallIsUnlimited(t *testing.T) {
	f := NewFacade(&abiReader{})
	c := f.ApproveCall(AUSDCAsset)
	if c.Contract != AUSDCAsset.Address || c.Method != "approve" {
		t.Fatalf("got %s", c)
	}
	if c.Args[0] != config.VaultAddress || c.Args[1].(*big.Int).Cmp(vaultcommon.MaxUint256) != 0 {
		t.Errorf("approve should grant the vault MaxUint256: %v", c.Args)
	}
}

func TestReads(t *testing.T) {
	owner := common.HexToAddress("0x0f")
	r := &abiReader{outputs: map[string][]interface{}{
		"totalAssets": {big.NewInt(10)},
		"owner":       {owner},
		"allowance":   {big.NewInt(7)},
	}}
	f := NewFacade(r)
	ctx := context.Background()

	total, err := f.TotalAssets(ctx)
	if err != nil || total.Int64() != 10 {
		t.Errorf("TotalAssets: %v, %v", total, err)
	}
	got, err := f.Owner(ctx)
	if err != nil || got != owner {
		t.Errorf("Owner: %v, %v", got, err)
	}
	acct := common.HexToAddress("0xaa")
	allowance, err := f.Allowance(ctx, USDCAsset, acct)
	if err != nil || allowance.Int64() != 7 {
		t.Errorf("Allowance: %v, %v", allowance, err)
	}
	last := r.calls[len(r.calls)-1]
	if last.contract != USDCAsset.Address || last.args[0] != acct || last.args[1] != config.VaultAddress {
		t.Errorf("allowance should be read on the token for (account, vault): %+v", last)
	}
	if _, err := f.MaxDeposit(ctx, acct); err == nil {
		t.Errorf("reverted read should surface an error")
	}
}

func TestLiquidityRate(t *testing.T) {
	rate := new(big.Int).Mul(big.NewInt(52), new(big.Int).Exp(big.NewInt(10), big.NewInt(24), nil))
	out := make([]interface{}, 12)
	for i := 0; i < 11; i++ {
		out[i] = big.NewInt(int64(i))
	}
	out[vaultcommon.LiquidityRateIndex] = rate
	out[11] = big.NewInt(1700000000)
	r := &abiReader{outputs: map[string][]interface{}{"getReserveData": out}}

	got, err := NewFacade(r).LiquidityRate(context.Background(), USDCAsset)
	if err != nil {
		t.Fatalf("LiquidityRate: %s", err)
	}
	if got.Cmp(rate) != 0 {
		t.Errorf("got %s, want %s", got, rate)
	}
	if r.calls[0].contract != config.AaveDataProvider {
		t.Errorf("reserve data should be read from the data provider")
	}
}

func TestLookupAsset(t *testing.T) {
	a, err := LookupAsset("ausdc")
	if err != nil || a.ID != AUSDC {
		t.Errorf("got %v, %v", a, err)
	}
	if _, err := LookupAsset("dai"); !errors.Is(err, ErrUnknownAsset) {
		t.Errorf("got %v", err)
	}
}
