package snapshot

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tranvictor/vaultctl/config"
	"github.com/tranvictor/vaultctl/gateway"
	"github.com/tranvictor/vaultctl/vault"
)

var (
	owner = common.HexToAddress("0x0000000000000000000000000000000000000f0f")
	user  = common.HexToAddress("0x000000000000000000000000000000000000aaaa")
)

type countingIndicators struct {
	mu         sync.Mutex
	readErrors map[string]int
}

func (c *countingIndicators) IncrementInFlight(string)                         {}
func (c *countingIndicators) DecrementInFlight(string)                         {}
func (c *countingIndicators) IncrementProcessed(string, string)                {}
func (c *countingIndicators) ObserveConfirmationLatency(string, time.Duration) {}
func (c *countingIndicators) IncrementReadErrors(field string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readErrors == nil {
		c.readErrors = map[string]int{}
	}
	c.readErrors[field]++
}

func newTestCache(t *testing.T) (*Cache, *gateway.MemoryGateway, *gateway.FakeVault, *countingIndicators) {
	t.Helper()
	g := gateway.NewMemoryGateway(config.TargetChainID)
	v := gateway.NewFakeVault(config.VaultAddress, config.AaveDataProvider, owner).
		AddAsset(config.USDCAddress, "deposit", "withdraw").
		AddAsset(config.AUSDCAddress, "depositATokens", "withdrawATokens")
	v.Fee = big.NewInt(100_000_000_000_000_000)
	v.LiquidityRate = new(big.Int).Mul(big.NewInt(52), new(big.Int).Exp(big.NewInt(10), big.NewInt(24), nil))
	v.Install(g)
	ind := &countingIndicators{}
	return NewCache(vault.NewFacade(g), g, ind), g, v, ind
}

func TestRefreshAllConnected(t *testing.T) {
	c, g, v, _ := newTestCache(t)
	g.Connect(user)
	v.SetBalance(config.USDCAddress, user, big.NewInt(2_500_000))

	if err := c.RefreshAll(context.Background()); err != nil {
		t.Fatalf("RefreshAll: %s", err)
	}
	s := c.Snapshot()
	if len(s) != len(AllKeys(true)) {
		t.Errorf("got %d fields, want %d", len(s), len(AllKeys(true)))
	}
	for k, f := range s {
		if !f.Ready() {
			t.Errorf("%s is %s", k, f.State)
		}
	}
	if got := s.Get(Key(ContractOwner)).Address; got != owner {
		t.Errorf("owner: got %s", got.Hex())
	}
	if got := s.Get(AssetKey(AssetBalance, vault.USDC)).Display(6); got != "2.5" {
		t.Errorf("USDC balance: got %s", got)
	}
	if got, _ := s.Uint(Key(PreviewedRedeemAssets)); got.Sign() != 0 {
		t.Errorf("no shares should preview to 0, got %s", got)
	}
	if got, _ := s.Uint(Key(MaxDepositable)); got.Int64() != 2_500_000 {
		t.Errorf("max deposit: got %s", got)
	}
}

func TestRefreshMarksFailedFieldErrored(t *testing.T) {
	c, g, _, ind := newTestCache(t)
	g.FailRead(config.VaultAddress, "getFee", errors.New("node unavailable"))

	err := c.Refresh(context.Background(), Key(CurrentFee), Key(TotalAssets))
	var readErr *ReadError
	if !errors.As(err, &readErr) || readErr.Field != Key(CurrentFee) {
		t.Fatalf("got %v, want a ReadError for currentFee", err)
	}
	fee := c.Get(Key(CurrentFee))
	if fee.State != Errored || fee.Display(18) != "error" || fee.Value != nil {
		t.Errorf("fee field: %+v", fee)
	}
	if !c.Get(Key(TotalAssets)).Ready() {
		t.Errorf("a failed field must not hold back the others")
	}
	if ind.readErrors["currentFee"] != 1 {
		t.Errorf("read errors: %v", ind.readErrors)
	}
}

func TestAccountFieldsNeedConnection(t *testing.T) {
	c, _, _, _ := newTestCache(t)
	for _, k := range AllKeys(false) {
		if k.Name.PerAccount() {
			t.Errorf("%s should not be read while disconnected", k)
		}
	}
	err := c.Refresh(context.Background(), Key(VaultShareBalance))
	if !errors.Is(err, gateway.ErrNotConnected) {
		t.Errorf("got %v, want ErrNotConnected", err)
	}
}

func TestInvalidateReturnsToLoading(t *testing.T) {
	c, _, _, _ := newTestCache(t)
	ctx := context.Background()
	if err := c.Refresh(ctx, Key(TotalAssets)); err != nil {
		t.Fatalf("Refresh: %s", err)
	}
	c.Invalidate(Key(TotalAssets))
	f := c.Get(Key(TotalAssets))
	if f.State != Loading || f.Display(6) != "loading..." {
		t.Errorf("got %+v", f)
	}
}

func TestAccountChangeDropsAccountFields(t *testing.T) {
	c, g, _, _ := newTestCache(t)
	g.Connect(user)
	if err := c.RefreshAll(context.Background()); err != nil {
		t.Fatalf("RefreshAll: %s", err)
	}
	g.Connect(owner)
	if !c.SyncAccount() {
		t.Fatalf("account change not detected")
	}
	if c.Get(Key(VaultShareBalance)).Ready() {
		t.Errorf("shares of the previous account are still cached")
	}
	if !c.Get(Key(TotalAssets)).Ready() {
		t.Errorf("vault fields should survive an account change")
	}
	if c.SyncAccount() {
		t.Errorf("second sync should be a no-op")
	}
}

func TestInvalidationDuringReadWins(t *testing.T) {
	c, g, _, _ := newTestCache(t)
	started := make(chan struct{})
	release := make(chan struct{})
	g.HandleRead(config.VaultAddress, "totalAssets", func([]interface{}) ([]interface{}, error) {
		close(started)
		<-release
		return []interface{}{big.NewInt(1)}, nil
	})

	done := make(chan error)
	go func() { done <- c.Refresh(context.Background(), Key(TotalAssets)) }()
	<-started
	c.Invalidate(Key(TotalAssets))
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("Refresh: %s", err)
	}
	if c.Get(Key(TotalAssets)).Ready() {
		t.Errorf("a read started before an invalidation must not be applied")
	}
}

func TestFieldKeyString(t *testing.T) {
	if got := AssetKey(Allowance, vault.AUSDC).String(); got != "allowance(aUSDC)" {
		t.Errorf("got %s", got)
	}
	if got := Key(TotalAssets).String(); got != "totalAssets" {
		t.Errorf("got %s", got)
	}
}
