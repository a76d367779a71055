package orchestrator

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	vaultcommon "github.com/tranvictor/vaultctl/common"
	"github.com/tranvictor/vaultctl/config"
	"github.com/tranvictor/vaultctl/gateway"
	"github.com/tranvictor/vaultctl/snapshot"
	"github.com/tranvictor/vaultctl/vault"
)

// plan is a validated action, ready to submit.
type plan struct {
	kind     Kind
	asset    vault.AssetDescriptor
	amount   *big.Int
	call     vault.Call
	progress string
	success  string
}

// required returns the value of key or ErrFieldUnavailable when it is
// loading or errored.
func required(s snapshot.Snapshot, key snapshot.FieldKey) (*big.Int, error) {
	v, ok := s.Uint(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %s", ErrFieldUnavailable, key, s.Get(key).State)
	}
	return v, nil
}

func requireOwner(s snapshot.Snapshot, sess gateway.Session) error {
	f := s.Get(snapshot.Key(snapshot.ContractOwner))
	if !f.Ready() {
		return fmt.Errorf("%w: %s is %s", ErrFieldUnavailable, snapshot.ContractOwner, f.State)
	}
	if !vaultcommon.SameAddress(f.Address.Hex(), sess.Account.Hex()) {
		return ErrNotOwner
	}
	return nil
}

func selectAsset(id vault.AssetID) (vault.AssetDescriptor, error) {
	if id == "" {
		return vault.AssetDescriptor{}, ErrNoAsset
	}
	a, err := vault.LookupAsset(string(id))
	if err != nil {
		return vault.AssetDescriptor{}, fmt.Errorf("%w: %s", ErrNoAsset, err)
	}
	return a, nil
}

// amountOf parses input in asset units. "max" resolves to limit.
func amountOf(input string, asset vault.AssetDescriptor, limit func() (*big.Int, error)) (*big.Int, error) {
	if strings.EqualFold(strings.TrimSpace(input), "max") {
		v, err := limit()
		if err != nil {
			return nil, err
		}
		if v.Sign() <= 0 {
			return nil, ErrInvalidAmount
		}
		return v, nil
	}
	v, err := vaultcommon.ParseUnits(input, asset.Decimals)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, err)
	}
	if v.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	return v, nil
}

// prepare checks the network guard and the preconditions of a against the
// session and snapshot, and builds the call to submit.
func (o *Orchestrator) prepare(a Action, sess gateway.Session, s snapshot.Snapshot) (plan, error) {
	p := plan{kind: a.Kind}
	if !sess.Connected {
		return p, ErrNotConnected
	}
	if !sess.OnChain(config.TargetChainID) {
		return p, ErrWrongNetwork
	}

	switch a.Kind {
	case Approval:
		asset, err := selectAsset(a.Asset)
		if err != nil {
			return p, err
		}
		p.asset = asset
		p.call = o.facade.ApproveCall(asset)
		p.progress = fmt.Sprintf("Approving %s for vault...", asset.Name)
		p.success = fmt.Sprintf("%s approved for vault!", asset.Name)

	case Deposit:
		asset, err := selectAsset(a.Asset)
		if err != nil {
			return p, err
		}
		maxKey := snapshot.Key(snapshot.MaxDepositable)
		amount, err := amountOf(a.Amount, asset, func() (*big.Int, error) { return required(s, maxKey) })
		if err != nil {
			return p, err
		}
		limit, err := required(s, maxKey)
		if err != nil {
			return p, err
		}
		if amount.Cmp(limit) > 0 {
			return p, ErrExceedsMaxDeposit
		}
		allowance, err := required(s, snapshot.AssetKey(snapshot.Allowance, asset.ID))
		if err != nil {
			return p, err
		}
		if allowance.Cmp(amount) < 0 {
			return p, ErrInsufficientAllowance
		}
		p.asset, p.amount = asset, amount
		p.call = o.facade.DepositCall(asset, amount, sess.Account)
		p.progress = fmt.Sprintf("Depositing %s %s...", vaultcommon.ToDisplay(amount, asset.Decimals), asset.Name)
		p.success = fmt.Sprintf("Successfully deposited %s!", asset.Name)

	case Withdrawal:
		asset, err := selectAsset(a.Asset)
		if err != nil {
			return p, err
		}
		maxKey := snapshot.Key(snapshot.MaxWithdrawable)
		amount, err := amountOf(a.Amount, asset, func() (*big.Int, error) { return required(s, maxKey) })
		if err != nil {
			return p, err
		}
		limit, err := required(s, maxKey)
		if err != nil {
			return p, err
		}
		if amount.Cmp(limit) > 0 {
			return p, ErrExceedsMaxWithdraw
		}
		shares, err := required(s, snapshot.Key(snapshot.VaultShareBalance))
		if err != nil {
			return p, err
		}
		if shares.Sign() <= 0 {
			return p, ErrNoShares
		}
		p.asset, p.amount = asset, amount
		p.call = o.facade.WithdrawCall(asset, amount, sess.Account)
		p.progress = fmt.Sprintf("Withdrawing %s %s...", vaultcommon.ToDisplay(amount, asset.Decimals), asset.Name)
		p.success = fmt.Sprintf("Successfully withdrew %s!", asset.Name)

	case SetFee:
		if err := requireOwner(s, sess); err != nil {
			return p, err
		}
		fee, err := vaultcommon.PercentToFee(a.Amount)
		switch {
		case err == nil:
		case errors.Is(err, vaultcommon.ErrEmptyAmount), errors.Is(err, vaultcommon.ErrMalformedAmount), errors.Is(err, vaultcommon.ErrTooPrecise):
			return p, fmt.Errorf("%w: %s", ErrInvalidAmount, err)
		default:
			return p, fmt.Errorf("%w: %s", ErrFeeOutOfRange, err)
		}
		p.amount = fee
		p.call = o.facade.SetFeeCall(fee)
		p.progress = fmt.Sprintf("Setting fee to %s%%...", strings.TrimSpace(a.Amount))
		p.success = "Fee percentage updated successfully!"

	case ClaimFees:
		if err := requireOwner(s, sess); err != nil {
			return p, err
		}
		claimable, err := required(s, snapshot.Key(snapshot.ClaimableFees))
		if err != nil {
			return p, err
		}
		if claimable.Sign() <= 0 {
			return p, ErrNothingToClaim
		}
		p.amount = claimable
		p.call = o.facade.ClaimFeesCall(sess.Account)
		p.progress = "Claiming fees..."
		p.success = "Fees claimed successfully!"

	default:
		return p, fmt.Errorf("unknown action %q", a.Kind)
	}
	return p, nil
}
