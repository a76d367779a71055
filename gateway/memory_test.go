package gateway

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	vaultcommon "github.com/tranvictor/vaultctl/common"
)

var (
	testVault    = common.HexToAddress("0x26B3D10418807513f38C35f68Ed011d2250d9eC4")
	testProvider = common.HexToAddress("0x2d8A3C5677189723C4cB8873CfC9C8976FDF38Ac")
	testUSDC     = common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913")
	testOwner    = common.HexToAddress("0x0000000000000000000000000000000000000f0f")
	testUser     = common.HexToAddress("0x000000000000000000000000000000000000aaaa")
)

func newFakeChain() (*MemoryGateway, *FakeVault) {
	g := NewMemoryGateway(8453)
	v := NewFakeVault(testVault, testProvider, testOwner).AddAsset(testUSDC, "deposit", "withdraw")
	v.Install(g)
	return g, v
}

func TestMemoryReadChecksTypes(t *testing.T) {
	g, _ := newFakeChain()
	ctx := context.Background()
	if _, err := g.Read(ctx, testVault, vaultcommon.GetVaultABI(), "maxDeposit", "not an address"); err == nil {
		t.Errorf("bad argument types should be rejected")
	}
	if _, err := g.Read(ctx, testVault, vaultcommon.GetVaultABI(), "maxRedeem", testUser); err == nil {
		t.Errorf("unhandled methods should revert")
	}
	g.FailRead(testVault, "totalAssets", errors.New("rpc down"))
	if _, err := g.Read(ctx, testVault, vaultcommon.GetVaultABI(), "totalAssets"); err == nil {
		t.Errorf("FailRead should make the read fail")
	}
	g.FailRead(testVault, "totalAssets", nil)
	out, err := g.Read(ctx, testVault, vaultcommon.GetVaultABI(), "totalAssets")
	if err != nil || out[0].(*big.Int).Sign() != 0 {
		t.Errorf("got %v, %v", out, err)
	}
}

func TestMemoryDepositFlow(t *testing.T) {
	g, v := newFakeChain()
	ctx := context.Background()
	g.Connect(testUser)
	v.SetBalance(testUSDC, testUser, big.NewInt(5_000_000))

	hash, err := g.Submit(ctx, testVault, vaultcommon.GetVaultABI(), "deposit", big.NewInt(1_000_000), testUser)
	if err != nil {
		t.Fatalf("Submit: %s", err)
	}
	rcpt, err := g.AwaitReceipt(ctx, hash)
	if err != nil {
		t.Fatalf("AwaitReceipt: %s", err)
	}
	if rcpt.Status != types.ReceiptStatusFailed {
		t.Errorf("deposit without allowance should revert")
	}

	hash, _ = g.Submit(ctx, testUSDC, vaultcommon.GetERC20ABI(), "approve", testVault, vaultcommon.MaxUint256)
	if rcpt, _ := g.AwaitReceipt(ctx, hash); rcpt.Status != types.ReceiptStatusSuccessful {
		t.Fatalf("approve should succeed")
	}
	hash, _ = g.Submit(ctx, testVault, vaultcommon.GetVaultABI(), "deposit", big.NewInt(1_000_000), testUser)
	if rcpt, _ := g.AwaitReceipt(ctx, hash); rcpt.Status != types.ReceiptStatusSuccessful {
		t.Fatalf("deposit should succeed")
	}
	if got := v.Balance(testUSDC, testUser); got.Int64() != 4_000_000 {
		t.Errorf("balance after deposit: %s", got)
	}
	if got := v.Shares(testUser); got.Cmp(new(big.Int).Mul(big.NewInt(1_000_000), shareScale)) != 0 {
		t.Errorf("shares after deposit: %s", got)
	}
	if v.Allowance(testUSDC, testUser).Cmp(vaultcommon.MaxUint256) != 0 {
		t.Errorf("unlimited allowance should not be consumed")
	}
	if len(g.Submits()) != 3 {
		t.Errorf("expected 3 submits, got %d", len(g.Submits()))
	}
}

func TestMemoryManualMining(t *testing.T) {
	g, _ := newFakeChain()
	g.AutoMine = false
	g.Connect(testOwner)
	hash, err := g.Submit(context.Background(), testVault, vaultcommon.GetVaultABI(), "setFee", big.NewInt(1))
	if err != nil {
		t.Fatalf("Submit: %s", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := g.AwaitReceipt(ctx, hash); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("unmined tx should wait until ctx ends, got %v", err)
	}

	g.Mine(hash)
	rcpt, err := g.AwaitReceipt(context.Background(), hash)
	if err != nil || rcpt.Status != types.ReceiptStatusSuccessful {
		t.Errorf("got %v, %v", rcpt, err)
	}
}

func TestMemorySubmitErrors(t *testing.T) {
	g, _ := newFakeChain()
	ctx := context.Background()
	if _, err := g.Submit(ctx, testVault, vaultcommon.GetVaultABI(), "claimRewards", testUser); !errors.Is(err, ErrNotConnected) {
		t.Errorf("got %v, want ErrNotConnected", err)
	}
	g.Connect(testUser)
	g.FailNextSubmit(ErrSigningDeclined)
	if _, err := g.Submit(ctx, testVault, vaultcommon.GetVaultABI(), "claimRewards", testUser); !errors.Is(err, ErrSigningDeclined) {
		t.Errorf("got %v, want ErrSigningDeclined", err)
	}
	if len(g.Submits()) != 0 {
		t.Errorf("failed submits must not be recorded")
	}
}

func TestMemorySwitchChainNotifies(t *testing.T) {
	g := NewMemoryGateway(1)
	ch, stop := g.Subscribe()
	defer stop()
	if err := g.SwitchActiveChain(context.Background(), 8453); err == nil {
		t.Fatalf("unknown chain should fail")
	}
	g.AddChain(8453)
	if err := g.SwitchActiveChain(context.Background(), 8453); err != nil {
		t.Fatalf("SwitchActiveChain: %s", err)
	}
	if s := <-ch; s.ChainID != 8453 {
		t.Errorf("got %+v", s)
	}
	if !g.Session().OnChain(8453) {
		t.Errorf("session not updated")
	}
}
