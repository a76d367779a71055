package gateway

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	vaultcommon "github.com/tranvictor/vaultctl/common"
)

// FakeVault is a minimal ERC-4626 vault over two tokens, installed on a
// MemoryGateway. Shares are minted 1:1 and scaled to 18 decimals.
type FakeVault struct {
	mu sync.Mutex

	Vault        common.Address
	DataProvider common.Address
	Owner        common.Address
	// Assets maps each token to the vault entry points deposit and
	// withdraw use for it.
	Assets map[common.Address][2]string

	Fee           *big.Int
	ClaimableFees *big.Int
	LiquidityRate *big.Int
	// DepositCap bounds maxDeposit. nil means the depositor's balance.
	DepositCap *big.Int

	balances   map[common.Address]map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]*big.Int
	shares     map[common.Address]*big.Int
	held       map[common.Address]*big.Int
}

// shareScale turns 6 decimal token amounts into 18 decimal shares.
var shareScale = big.NewInt(1_000_000_000_000)

func NewFakeVault(vault, dataProvider, owner common.Address) *FakeVault {
	return &FakeVault{
		Vault:         vault,
		DataProvider:  dataProvider,
		Owner:         owner,
		Assets:        map[common.Address][2]string{},
		Fee:           big.NewInt(0),
		ClaimableFees: big.NewInt(0),
		LiquidityRate: big.NewInt(0),
		balances:      map[common.Address]map[common.Address]*big.Int{},
		allowances:    map[common.Address]map[common.Address]*big.Int{},
		shares:        map[common.Address]*big.Int{},
		held:          map[common.Address]*big.Int{},
	}
}

func (v *FakeVault) AddAsset(token common.Address, depositMethod, withdrawMethod string) *FakeVault {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Assets[token] = [2]string{depositMethod, withdrawMethod}
	return v
}

func (v *FakeVault) SetBalance(token, holder common.Address, amount *big.Int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.set(v.balances, token, holder, amount)
}

func (v *FakeVault) SetAllowance(token, holder common.Address, amount *big.Int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.set(v.allowances, token, holder, amount)
}

func (v *FakeVault) Balance(token, holder common.Address) *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.get(v.balances, token, holder)
}

func (v *FakeVault) Allowance(token, holder common.Address) *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.get(v.allowances, token, holder)
}

func (v *FakeVault) Shares(holder common.Address) *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sharesOf(holder)
}

func (v *FakeVault) set(m map[common.Address]map[common.Address]*big.Int, token, holder common.Address, amount *big.Int) {
	if m[token] == nil {
		m[token] = map[common.Address]*big.Int{}
	}
	m[token][holder] = new(big.Int).Set(amount)
}

func (v *FakeVault) get(m map[common.Address]map[common.Address]*big.Int, token, holder common.Address) *big.Int {
	if b, ok := m[token][holder]; ok {
		return new(big.Int).Set(b)
	}
	return big.NewInt(0)
}

func (v *FakeVault) sharesOf(holder common.Address) *big.Int {
	if s, ok := v.shares[holder]; ok {
		return new(big.Int).Set(s)
	}
	return big.NewInt(0)
}

func (v *FakeVault) totalAssets() *big.Int {
	total := big.NewInt(0)
	for _, h := range v.held {
		total.Add(total, h)
	}
	return total
}

// maxWithdraw converts holder's shares back to 6 decimal assets.
func (v *FakeVault) maxWithdraw(holder common.Address) *big.Int {
	return new(big.Int).Quo(v.sharesOf(holder), shareScale)
}

func (v *FakeVault) maxDeposit(holder common.Address) *big.Int {
	if v.DepositCap != nil {
		return new(big.Int).Set(v.DepositCap)
	}
	best := big.NewInt(0)
	for token := range v.Assets {
		if b := v.get(v.balances, token, holder); b.Cmp(best) > 0 {
			best = b
		}
	}
	return best
}

func argAddress(args []interface{}, i int) common.Address {
	return args[i].(common.Address)
}

func argUint(args []interface{}, i int) *big.Int {
	return args[i].(*big.Int)
}

func one(v interface{}) []interface{} {
	return []interface{}{v}
}

// Install registers the vault, token and AAVE data provider methods on g.
func (v *FakeVault) Install(g *MemoryGateway) {
	locked := func(f func(args []interface{}) []interface{}) ReadHandler {
		return func(args []interface{}) ([]interface{}, error) {
			v.mu.Lock()
			defer v.mu.Unlock()
			return f(args), nil
		}
	}
	lockedWrite := func(f func(from common.Address, args []interface{}) error) WriteHandler {
		return func(from common.Address, args []interface{}) error {
			v.mu.Lock()
			defer v.mu.Unlock()
			return f(from, args)
		}
	}

	g.HandleRead(v.Vault, "totalAssets", locked(func([]interface{}) []interface{} {
		return one(v.totalAssets())
	}))
	g.HandleRead(v.Vault, "getFee", locked(func([]interface{}) []interface{} {
		return one(new(big.Int).Set(v.Fee))
	}))
	g.HandleRead(v.Vault, "getClaimableFees", locked(func([]interface{}) []interface{} {
		return one(new(big.Int).Set(v.ClaimableFees))
	}))
	g.HandleRead(v.Vault, "owner", locked(func([]interface{}) []interface{} {
		return one(v.Owner)
	}))
	g.HandleRead(v.Vault, "balanceOf", locked(func(args []interface{}) []interface{} {
		return one(v.sharesOf(argAddress(args, 0)))
	}))
	g.HandleRead(v.Vault, "maxDeposit", locked(func(args []interface{}) []interface{} {
		return one(v.maxDeposit(argAddress(args, 0)))
	}))
	g.HandleRead(v.Vault, "maxWithdraw", locked(func(args []interface{}) []interface{} {
		return one(v.maxWithdraw(argAddress(args, 0)))
	}))
	g.HandleRead(v.Vault, "previewRedeem", locked(func(args []interface{}) []interface{} {
		return one(new(big.Int).Quo(argUint(args, 0), shareScale))
	}))
	g.HandleRead(v.DataProvider, "getReserveData", locked(func(args []interface{}) []interface{} {
		out := make([]interface{}, 12)
		for i := range out {
			out[i] = big.NewInt(0)
		}
		out[vaultcommon.LiquidityRateIndex] = new(big.Int).Set(v.LiquidityRate)
		return out
	}))

	g.HandleWrite(v.Vault, "setFee", lockedWrite(func(from common.Address, args []interface{}) error {
		if from != v.Owner {
			return ErrReverted
		}
		fee := argUint(args, 0)
		if fee.Cmp(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)) > 0 {
			return ErrReverted
		}
		v.Fee = new(big.Int).Set(fee)
		return nil
	}))
	g.HandleWrite(v.Vault, "claimRewards", lockedWrite(func(from common.Address, args []interface{}) error {
		if from != v.Owner || v.ClaimableFees.Sign() == 0 {
			return ErrReverted
		}
		v.ClaimableFees = big.NewInt(0)
		return nil
	}))

	for token, methods := range v.Assets {
		token := token
		g.HandleRead(token, "balanceOf", locked(func(args []interface{}) []interface{} {
			return one(v.get(v.balances, token, argAddress(args, 0)))
		}))
		g.HandleRead(token, "allowance", locked(func(args []interface{}) []interface{} {
			if argAddress(args, 1) != v.Vault {
				return one(big.NewInt(0))
			}
			return one(v.get(v.allowances, token, argAddress(args, 0)))
		}))
		g.HandleWrite(token, "approve", lockedWrite(func(from common.Address, args []interface{}) error {
			if argAddress(args, 0) != v.Vault {
				return fmt.Errorf("%w: only the vault can be approved", ErrReverted)
			}
			v.set(v.allowances, token, from, argUint(args, 1))
			return nil
		}))
		g.HandleWrite(v.Vault, methods[0], lockedWrite(func(from common.Address, args []interface{}) error {
			return v.deposit(token, from, argUint(args, 0), argAddress(args, 1))
		}))
		g.HandleWrite(v.Vault, methods[1], lockedWrite(func(from common.Address, args []interface{}) error {
			return v.withdraw(token, argUint(args, 0), argAddress(args, 1), argAddress(args, 2))
		}))
	}
}

func (v *FakeVault) deposit(token, from common.Address, amount *big.Int, receiver common.Address) error {
	bal := v.get(v.balances, token, from)
	allowance := v.get(v.allowances, token, from)
	if amount.Sign() <= 0 || bal.Cmp(amount) < 0 || allowance.Cmp(amount) < 0 {
		return ErrReverted
	}
	if v.DepositCap != nil && amount.Cmp(v.DepositCap) > 0 {
		return ErrReverted
	}
	v.set(v.balances, token, from, bal.Sub(bal, amount))
	if allowance.Cmp(vaultcommon.MaxUint256) != 0 {
		v.set(v.allowances, token, from, allowance.Sub(allowance, amount))
	}
	held := v.held[token]
	if held == nil {
		held = big.NewInt(0)
	}
	v.held[token] = held.Add(held, amount)
	v.shares[receiver] = v.sharesOf(receiver).Add(v.sharesOf(receiver), new(big.Int).Mul(amount, shareScale))
	return nil
}

func (v *FakeVault) withdraw(token common.Address, amount *big.Int, receiver, owner common.Address) error {
	burn := new(big.Int).Mul(amount, shareScale)
	shares := v.sharesOf(owner)
	held := v.held[token]
	if amount.Sign() <= 0 || shares.Cmp(burn) < 0 || held == nil || held.Cmp(amount) < 0 {
		return ErrReverted
	}
	v.shares[owner] = shares.Sub(shares, burn)
	v.held[token] = held.Sub(held, amount)
	bal := v.get(v.balances, token, receiver)
	v.set(v.balances, token, receiver, bal.Add(bal, amount))
	return nil
}
