package cmd

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	vaultcommon "github.com/tranvictor/vaultctl/common"
	"github.com/tranvictor/vaultctl/config"
	"github.com/tranvictor/vaultctl/gateway"
	"github.com/tranvictor/vaultctl/networks"
	"github.com/tranvictor/vaultctl/orchestrator"
	"github.com/tranvictor/vaultctl/snapshot"
	"github.com/tranvictor/vaultctl/ui"
	"github.com/tranvictor/vaultctl/util/addrbook"
	"github.com/tranvictor/vaultctl/vault"
)

// fieldText renders f so that loading, error and 0 never look alike.
func fieldText(u ui.UI, f snapshot.Field, decimals int32, unit string) string {
	switch f.State {
	case snapshot.Ready:
		v := f.Display(decimals)
		if unit != "" {
			v += " " + unit
		}
		return v
	case snapshot.Errored:
		return u.Style(ui.StyledText{Text: "error", Severity: ui.SeverityError})
	default:
		return u.Style(ui.StyledText{Text: "loading...", Severity: ui.SeverityWarn})
	}
}

func percentText(v string) string {
	if v == vaultcommon.NoData || v == vaultcommon.CalculationError {
		return v
	}
	return v + "%"
}

func feeText(u ui.UI, f snapshot.Field) string {
	if !f.Ready() {
		return fieldText(u, f, 0, "")
	}
	return percentText(vaultcommon.FeeToPercent(f.Value))
}

func yields(u ui.UI, s snapshot.Snapshot) (vaultYield, aaveYield string) {
	rate := s.Get(snapshot.Key(snapshot.LiquidityRate))
	fee := s.Get(snapshot.Key(snapshot.CurrentFee))
	vaultYield = yieldText(u, func() string {
		return vaultcommon.VaultYieldPercent(rate.Value, fee.Value)
	}, rate, fee)
	aaveYield = yieldText(u, func() string {
		return vaultcommon.AaveYieldPercent(rate.Value)
	}, rate)
	return vaultYield, aaveYield
}

// yieldText is "No data" once any input failed, "loading..." while one is
// still being read, and the computed percent otherwise.
func yieldText(u ui.UI, compute func() string, inputs ...snapshot.Field) string {
	for _, f := range inputs {
		if f.State == snapshot.Errored {
			return vaultcommon.NoData
		}
	}
	for _, f := range inputs {
		if f.State == snapshot.Loading {
			return fieldText(u, f, 0, "")
		}
	}
	return percentText(compute())
}

func renderSnapshot(u ui.UI, s snapshot.Snapshot, sess gateway.Session, resolver addrbook.AddressResolver, ownerView bool) {
	get := s.Get
	k := snapshot.Key
	vaultYield, aaveYield := yields(u, s)

	u.Section("Vault")
	owner := get(k(snapshot.ContractOwner))
	ownerText := fieldText(u, owner, 0, "")
	if owner.Ready() {
		ownerText = resolver.Resolve(owner.Address).String()
	}
	u.KeyValue([][2]string{
		{"Vault", resolver.Resolve(config.VaultAddress).String()},
		{"Total assets", fieldText(u, get(k(snapshot.TotalAssets)), 6, "USDC")},
		{"Vault yield", vaultYield},
		{"AAVE yield", aaveYield},
		{"Fee", feeText(u, get(k(snapshot.CurrentFee)))},
		{"Owner", ownerText},
	})

	if !sess.Connected {
		u.Warn("No account connected. Pass --from to see your position.")
		return
	}

	u.Section("Account")
	u.KeyValue([][2]string{
		{"Account", resolver.Resolve(sess.Account).String()},
		{"Network", chainText(sess.ChainID)},
		{"Vault shares", fieldText(u, get(k(snapshot.VaultShareBalance)), vaultcommon.ShareDecimals, "")},
		{"Redeemable", fieldText(u, get(k(snapshot.PreviewedRedeemAssets)), 6, "USDC")},
		{"Max deposit", fieldText(u, get(k(snapshot.MaxDepositable)), 6, "")},
		{"Max withdraw", fieldText(u, get(k(snapshot.MaxWithdrawable)), 6, "")},
	})

	rows := [][]string{}
	for _, a := range vault.Assets() {
		rows = append(rows, []string{
			a.Name,
			fieldText(u, get(snapshot.AssetKey(snapshot.AssetBalance, a.ID)), a.Decimals, ""),
			allowanceText(u, get(snapshot.AssetKey(snapshot.Allowance, a.ID)), a.Decimals),
		})
	}
	u.Table([]string{"Asset", "Wallet balance", "Vault allowance"}, rows)

	if ownerView {
		u.Section("Owner")
		u.KeyValue([][2]string{
			{"Claimable fees", fieldText(u, get(k(snapshot.ClaimableFees)), 6, "USDC")},
		})
	}
}

func allowanceText(u ui.UI, f snapshot.Field, decimals int32) string {
	if f.Ready() && f.Value.Cmp(vaultcommon.MaxUint256) == 0 {
		return "unlimited"
	}
	return fieldText(u, f, decimals, "")
}

func chainText(chainID uint64) string {
	if n, err := networks.GetNetworkByID(chainID); err == nil {
		return fmt.Sprintf("%s (%d)", n.GetName(), chainID)
	}
	return fmt.Sprintf("unknown (%d)", chainID)
}

func showWrongNetwork(u ui.UI, sess gateway.Session) {
	u.Section("Wrong Network")
	u.Error("You are connected to %s.", chainText(sess.ChainID))
	u.Info("This vault is deployed on Base (%d). Please switch networks to continue.", config.TargetChainID)
}

// interpretAmount echoes how the amount of a will be read, e.g.
// "4000000 (4 USDC)". Unparsable input is left to the preconditions.
func interpretAmount(u ui.UI, a orchestrator.Action) {
	in := strings.TrimSpace(a.Amount)
	if in == "" {
		return
	}
	switch a.Kind {
	case orchestrator.Deposit, orchestrator.Withdrawal:
		asset, err := vault.LookupAsset(string(a.Asset))
		if err != nil {
			return
		}
		if strings.EqualFold(in, "max") {
			u.Interpret(fmt.Sprintf("the maximum %s allowed by the vault", asset.Name))
			return
		}
		v, err := vaultcommon.ParseUnits(in, asset.Decimals)
		if err != nil {
			return
		}
		u.Interpret(fmt.Sprintf("%s (%s %s)", v, vaultcommon.ToDisplay(v, asset.Decimals), asset.Name))
	case orchestrator.SetFee:
		fee, err := vaultcommon.PercentToFee(in)
		if err != nil {
			return
		}
		u.Interpret(fmt.Sprintf("%s (%s%%)", fee, vaultcommon.FeeToPercent(fee)))
	}
}

func argText(resolver addrbook.AddressResolver, arg interface{}) string {
	switch v := arg.(type) {
	case common.Address:
		return resolver.Resolve(v).String()
	case *big.Int:
		if v.Cmp(vaultcommon.MaxUint256) == 0 {
			return "unlimited (2^256-1)"
		}
		return v.String()
	}
	return fmt.Sprintf("%v", arg)
}

func showTxSummary(u ui.UI, resolver addrbook.AddressResolver, s gateway.TxSummary) {
	args := make([]string, 0, len(s.Args))
	for _, a := range s.Args {
		args = append(args, argText(resolver, a))
	}
	rows := [][2]string{
		{"From", resolver.Resolve(s.From).String()},
		{"To", resolver.Resolve(s.To).String()},
		{"Call", fmt.Sprintf("%s(%d args)", s.Method, len(args))},
		{"Network", fmt.Sprintf("%s (%d)", s.Network.GetName(), s.ChainID)},
		{"Nonce", fmt.Sprintf("%d", s.Nonce)},
		{"Gas limit", fmt.Sprintf("%d", s.GasLimit)},
	}
	if s.TipCap != nil {
		rows = append(rows,
			[2]string{"Max fee", vaultcommon.WeiToGwei(s.GasPrice) + " gwei"},
			[2]string{"Tip", vaultcommon.WeiToGwei(s.TipCap) + " gwei"},
		)
	} else {
		rows = append(rows, [2]string{"Gas price", vaultcommon.WeiToGwei(s.GasPrice) + " gwei"})
	}
	u.Section("Transaction")
	u.KeyValue(rows)
	if len(args) > 0 {
		u.Info("Arguments:")
		w := u.Indent().Writer()
		for i, a := range args {
			fmt.Fprintf(w, "%d. %s\n", i+1, a)
		}
	}
	u.Critical("Review the call above before signing.")
}
