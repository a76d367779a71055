package vault

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	vaultcommon "github.com/tranvictor/vaultctl/common"
	"github.com/tranvictor/vaultctl/config"
)

// Reader performs a view call and returns the unpacked outputs.
type Reader interface {
	Read(ctx context.Context, contract common.Address, abi *abi.ABI, method string, args ...interface{}) ([]interface{}, error)
}

// Call is a write ready to be handed to a Gateway.
type Call struct {
	Contract common.Address
	ABI      *abi.ABI
	Method   string
	Args     []interface{}
}

func (c Call) String() string {
	return fmt.Sprintf("%s%v on %s", c.Method, c.Args, c.Contract.Hex())
}

// Facade knows the vault and token ABIs and which entry point each asset
// uses.
type Facade struct {
	r            Reader
	vault        common.Address
	dataProvider common.Address
}

// NewFacade binds the currently configured vault and AAVE data provider.
func NewFacade(r Reader) *Facade {
	return &Facade{
		r:            r,
		vault:        config.VaultAddress,
		dataProvider: config.AaveDataProvider,
	}
}

func (f *Facade) VaultAddress() common.Address {
	return f.vault
}

func (f *Facade) DataProviderAddress() common.Address {
	return f.dataProvider
}

func (f *Facade) readUint(ctx context.Context, contract common.Address, a *abi.ABI, method string, args ...interface{}) (*big.Int, error) {
	out, err := f.r.Read(ctx, contract, a, method, args...)
	if err != nil {
		return nil, err
	}
	return UintAt(out, 0, method)
}

// UintAt extracts the uint256 output at index i.
func UintAt(out []interface{}, i int, method string) (*big.Int, error) {
	if len(out) <= i {
		return nil, fmt.Errorf("%s: expected at least %d outputs, got %d", method, i+1, len(out))
	}
	v, ok := out[i].(*big.Int)
	if !ok || v == nil {
		return nil, fmt.Errorf("%s: output %d is %T, not uint256", method, i, out[i])
	}
	return v, nil
}

func (f *Facade) TotalAssets(ctx context.Context) (*big.Int, error) {
	return f.readUint(ctx, f.vault, vaultcommon.GetVaultABI(), "totalAssets")
}

// Fee is the vault fee as an 18 decimal ratio.
func (f *Facade) Fee(ctx context.Context) (*big.Int, error) {
	return f.readUint(ctx, f.vault, vaultcommon.GetVaultABI(), "getFee")
}

func (f *Facade) ClaimableFees(ctx context.Context) (*big.Int, error) {
	return f.readUint(ctx, f.vault, vaultcommon.GetVaultABI(), "getClaimableFees")
}

func (f *Facade) Owner(ctx context.Context) (common.Address, error) {
	out, err := f.r.Read(ctx, f.vault, vaultcommon.GetVaultABI(), "owner")
	if err != nil {
		return common.Address{}, err
	}
	if len(out) == 0 {
		return common.Address{}, fmt.Errorf("owner: no output")
	}
	addr, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("owner: output is %T, not address", out[0])
	}
	return addr, nil
}

func (f *Facade) ShareBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	return f.readUint(ctx, f.vault, vaultcommon.GetVaultABI(), "balanceOf", account)
}

func (f *Facade) MaxDeposit(ctx context.Context, account common.Address) (*big.Int, error) {
	return f.readUint(ctx, f.vault, vaultcommon.GetVaultABI(), "maxDeposit", account)
}

func (f *Facade) MaxWithdraw(ctx context.Context, account common.Address) (*big.Int, error) {
	return f.readUint(ctx, f.vault, vaultcommon.GetVaultABI(), "maxWithdraw", account)
}

func (f *Facade) PreviewRedeem(ctx context.Context, shares *big.Int) (*big.Int, error) {
	return f.readUint(ctx, f.vault, vaultcommon.GetVaultABI(), "previewRedeem", shares)
}

func (f *Facade) AssetBalance(ctx context.Context, asset AssetDescriptor, account common.Address) (*big.Int, error) {
	return f.readUint(ctx, asset.Address, vaultcommon.GetERC20ABI(), "balanceOf", account)
}

// Allowance is what account allowed the vault to pull of asset.
func (f *Facade) Allowance(ctx context.Context, asset AssetDescriptor, account common.Address) (*big.Int, error) {
	return f.readUint(ctx, asset.Address, vaultcommon.GetERC20ABI(), "allowance", account, f.vault)
}

func (f *Facade) ApproveCall(asset AssetDescriptor) Call {
	return Call{
		Contract: asset.Address,
		ABI:      vaultcommon.GetERC20ABI(),
		Method:   "approve",
		Args:     []interface{}{f.vault, new(big.Int).Set(vaultcommon.MaxUint256)},
	}
}

func (f *Facade) DepositCall(asset AssetDescriptor, amount *big.Int, receiver common.Address) Call {
	return Call{
		Contract: f.vault,
		ABI:      vaultcommon.GetVaultABI(),
		Method:   asset.DepositMethod,
		Args:     []interface{}{amount, receiver},
	}
}

// WithdrawCall withdraws amount of asset from and to account.
func (f *Facade) WithdrawCall(asset AssetDescriptor, amount *big.Int, account common.Address) Call {
	return Call{
		Contract: f.vault,
		ABI:      vaultcommon.GetVaultABI(),
		Method:   asset.WithdrawMethod,
		Args:     []interface{}{amount, account, account},
	}
}

func (f *Facade) SetFeeCall(fee *big.Int) Call {
	return Call{
		Contract: f.vault,
		ABI:      vaultcommon.GetVaultABI(),
		Method:   "setFee",
		Args:     []interface{}{fee},
	}
}

func (f *Facade) ClaimFeesCall(to common.Address) Call {
	return Call{
		Contract: f.vault,
		ABI:      vaultcommon.GetVaultABI(),
		Method:   "claimRewards",
		Args:     []interface{}{to},
	}
}
