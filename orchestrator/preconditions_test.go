package orchestrator

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	vaultcommon "github.com/tranvictor/vaultctl/common"
	"github.com/tranvictor/vaultctl/config"
	"github.com/tranvictor/vaultctl/gateway"
	"github.com/tranvictor/vaultctl/snapshot"
	"github.com/tranvictor/vaultctl/vault"
)

var (
	ownerAddr = common.HexToAddress("0x00000000000000000000000000000000000Ab0Cd")
	userAddr  = common.HexToAddress("0x000000000000000000000000000000000000aaaa")
)

func ready(v int64) snapshot.Field {
	return snapshot.Field{State: snapshot.Ready, Value: big.NewInt(v)}
}

func readyBig(v *big.Int) snapshot.Field {
	return snapshot.Field{State: snapshot.Ready, Value: v}
}

func baseSnapshot() snapshot.Snapshot {
	return snapshot.Snapshot{
		snapshot.Key(snapshot.MaxDepositable):                 ready(5_000_000),
		snapshot.Key(snapshot.MaxWithdrawable):                ready(3_000_000),
		snapshot.Key(snapshot.VaultShareBalance):              ready(3_000_000_000_000_000_000),
		snapshot.Key(snapshot.ClaimableFees):                  ready(0),
		snapshot.Key(snapshot.ContractOwner):                  {State: snapshot.Ready, Address: ownerAddr},
		snapshot.AssetKey(snapshot.Allowance, vault.USDC):     ready(2_000_000),
		snapshot.AssetKey(snapshot.Allowance, vault.AUSDC):    readyBig(vaultcommon.MaxUint256),
		snapshot.AssetKey(snapshot.AssetBalance, vault.USDC):  ready(5_000_000),
		snapshot.AssetKey(snapshot.AssetBalance, vault.AUSDC): ready(5_000_000),
	}
}

func with(s snapshot.Snapshot, key snapshot.FieldKey, f snapshot.Field) snapshot.Snapshot {
	out := snapshot.Snapshot{}
	for k, v := range s {
		out[k] = v
	}
	out[key] = f
	return out
}

func TestPreconditions(t *testing.T) {
	o := &Orchestrator{facade: vault.NewFacade(nil)}
	onBase := func(acct common.Address) gateway.Session {
		return gateway.Session{Account: acct, Connected: true, ChainID: config.TargetChainID}
	}
	lowerOwner := common.HexToAddress("0x00000000000000000000000000000000000ab0cd")

	cases := []struct {
		name    string
		action  Action
		session gateway.Session
		snap    snapshot.Snapshot
		want    error
	}{
		{"approval disconnected", Action{Kind: Approval, Asset: vault.USDC}, gateway.Session{ChainID: 8453}, baseSnapshot(), ErrNotConnected},
		{"approval wrong chain", Action{Kind: Approval, Asset: vault.USDC}, gateway.Session{Account: userAddr, Connected: true, ChainID: 1}, baseSnapshot(), ErrWrongNetwork},
		{"approval no asset", Action{Kind: Approval}, onBase(userAddr), baseSnapshot(), ErrNoAsset},
		{"approval unknown asset", Action{Kind: Approval, Asset: "DAI"}, onBase(userAddr), baseSnapshot(), ErrNoAsset},
		{"approval ok", Action{Kind: Approval, Asset: vault.AUSDC}, onBase(userAddr), baseSnapshot(), nil},

		{"deposit zero", Action{Kind: Deposit, Asset: vault.USDC, Amount: "0"}, onBase(userAddr), baseSnapshot(), ErrInvalidAmount},
		{"deposit malformed", Action{Kind: Deposit, Asset: vault.USDC, Amount: "1.2.3"}, onBase(userAddr), baseSnapshot(), ErrInvalidAmount},
		{"deposit too precise", Action{Kind: Deposit, Asset: vault.USDC, Amount: "1.0000001"}, onBase(userAddr), baseSnapshot(), ErrInvalidAmount},
		{"deposit above max with allowance", Action{Kind: Deposit, Asset: vault.AUSDC, Amount: "5.000001"}, onBase(userAddr), baseSnapshot(), ErrExceedsMaxDeposit},
		{"deposit short allowance", Action{Kind: Deposit, Asset: vault.USDC, Amount: "2.000001"}, onBase(userAddr), baseSnapshot(), ErrInsufficientAllowance},
		{"deposit allowance equal", Action{Kind: Deposit, Asset: vault.USDC, Amount: "2"}, onBase(userAddr), baseSnapshot(), nil},
		{"deposit unlimited allowance", Action{Kind: Deposit, Asset: vault.AUSDC, Amount: "max"}, onBase(userAddr), baseSnapshot(), nil},
		{"deposit max loading", Action{Kind: Deposit, Asset: vault.USDC, Amount: "1"}, onBase(userAddr),
			with(baseSnapshot(), snapshot.Key(snapshot.MaxDepositable), snapshot.Field{State: snapshot.Loading}), ErrFieldUnavailable},
		{"deposit allowance errored", Action{Kind: Deposit, Asset: vault.USDC, Amount: "1"}, onBase(userAddr),
			with(baseSnapshot(), snapshot.AssetKey(snapshot.Allowance, vault.USDC), snapshot.Field{State: snapshot.Errored, Err: errors.New("rpc")}), ErrFieldUnavailable},

		{"withdraw above max", Action{Kind: Withdrawal, Asset: vault.USDC, Amount: "3.5"}, onBase(userAddr), baseSnapshot(), ErrExceedsMaxWithdraw},
		{"withdraw no shares", Action{Kind: Withdrawal, Asset: vault.USDC, Amount: "1"}, onBase(userAddr),
			with(baseSnapshot(), snapshot.Key(snapshot.VaultShareBalance), ready(0)), ErrNoShares},
		{"withdraw ok", Action{Kind: Withdrawal, Asset: vault.AUSDC, Amount: "3"}, onBase(userAddr), baseSnapshot(), nil},

		{"set fee non owner", Action{Kind: SetFee, Amount: "10"}, onBase(userAddr), baseSnapshot(), ErrNotOwner},
		{"set fee owner casing", Action{Kind: SetFee, Amount: "10"}, onBase(lowerOwner), baseSnapshot(), nil},
		{"set fee above 100", Action{Kind: SetFee, Amount: "100.01"}, onBase(ownerAddr), baseSnapshot(), ErrFeeOutOfRange},
		{"set fee negative", Action{Kind: SetFee, Amount: "-1"}, onBase(ownerAddr), baseSnapshot(), ErrFeeOutOfRange},
		{"set fee empty", Action{Kind: SetFee}, onBase(ownerAddr), baseSnapshot(), ErrInvalidAmount},
		{"set fee too precise", Action{Kind: SetFee, Amount: "10.0000000000000000001"}, onBase(ownerAddr), baseSnapshot(), ErrInvalidAmount},
		{"set fee owner unknown", Action{Kind: SetFee, Amount: "10"}, onBase(ownerAddr),
			with(baseSnapshot(), snapshot.Key(snapshot.ContractOwner), snapshot.Field{State: snapshot.Loading}), ErrFieldUnavailable},

		{"claim non owner", Action{Kind: ClaimFees}, onBase(userAddr), with(baseSnapshot(), snapshot.Key(snapshot.ClaimableFees), ready(7)), ErrNotOwner},
		{"claim nothing", Action{Kind: ClaimFees}, onBase(ownerAddr), baseSnapshot(), ErrNothingToClaim},
		{"claim ok", Action{Kind: ClaimFees}, onBase(ownerAddr), with(baseSnapshot(), snapshot.Key(snapshot.ClaimableFees), ready(7)), nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := o.prepare(tc.action, tc.session, tc.snap)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %s", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestPrepareBuildsAssetCalls(t *testing.T) {
	o := &Orchestrator{facade: vault.NewFacade(nil)}
	s := gateway.Session{Account: userAddr, Connected: true, ChainID: config.TargetChainID}

	p, err := o.prepare(Action{Kind: Deposit, Asset: vault.AUSDC, Amount: "1.5"}, s, baseSnapshot())
	if err != nil {
		t.Fatalf("prepare: %s", err)
	}
	if p.call.Method != "depositATokens" || p.amount.Int64() != 1_500_000 {
		t.Errorf("got %s with %s", p.call.Method, p.amount)
	}
	if p.progress != "Depositing 1.5 aUSDC..." || p.success != "Successfully deposited aUSDC!" {
		t.Errorf("messages: %q, %q", p.progress, p.success)
	}

	p, err = o.prepare(Action{Kind: Withdrawal, Asset: vault.USDC, Amount: "max"}, s, baseSnapshot())
	if err != nil {
		t.Fatalf("prepare: %s", err)
	}
	if p.call.Method != "withdraw" || p.amount.Int64() != 3_000_000 {
		t.Errorf("got %s with %s", p.call.Method, p.amount)
	}

	s.Account = ownerAddr
	p, err = o.prepare(Action{Kind: SetFee, Amount: "12.5"}, s, baseSnapshot())
	if err != nil {
		t.Fatalf("prepare: %s", err)
	}
	if want := "125000000000000000"; p.amount.String() != want {
		t.Errorf("fee: got %s, want %s", p.amount, want)
	}
	if p.progress != "Setting fee to 12.5%..." {
		t.Errorf("got %q", p.progress)
	}
}

func TestDependents(t *testing.T) {
	got := dependents(Deposit, vault.USDC)
	want := map[snapshot.FieldKey]bool{
		snapshot.Key(snapshot.TotalAssets):                   true,
		snapshot.AssetKey(snapshot.Allowance, vault.USDC):    true,
		snapshot.Key(snapshot.MaxDepositable):                true,
		snapshot.Key(snapshot.VaultShareBalance):             true,
		snapshot.AssetKey(snapshot.AssetBalance, vault.USDC): true,
		snapshot.Key(snapshot.MaxWithdrawable):               true,
		snapshot.Key(snapshot.PreviewedRedeemAssets):         true,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for _, k := range got {
		if !want[k] {
			t.Errorf("unexpected %s", k)
		}
	}
	for _, k := range Kinds() {
		for _, key := range dependents(k, vault.USDC) {
			if key.Name == snapshot.LiquidityRate {
				t.Errorf("%s must not invalidate the AAVE reserve", k)
			}
		}
	}
}
