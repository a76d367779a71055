package orchestrator

import (
	"github.com/tranvictor/vaultctl/snapshot"
	"github.com/tranvictor/vaultctl/vault"
)

// dependents are the fields a confirmed tx of kind changes on chain.
func dependents(kind Kind, asset vault.AssetID) []snapshot.FieldKey {
	k := snapshot.Key
	switch kind {
	case Approval:
		return []snapshot.FieldKey{snapshot.AssetKey(snapshot.Allowance, asset)}
	case Deposit:
		return []snapshot.FieldKey{
			k(snapshot.TotalAssets),
			snapshot.AssetKey(snapshot.Allowance, asset),
			k(snapshot.MaxDepositable),
			k(snapshot.VaultShareBalance),
			snapshot.AssetKey(snapshot.AssetBalance, asset),
			k(snapshot.MaxWithdrawable),
			k(snapshot.PreviewedRedeemAssets),
		}
	case Withdrawal:
		return []snapshot.FieldKey{
			k(snapshot.TotalAssets),
			k(snapshot.VaultShareBalance),
			k(snapshot.MaxWithdrawable),
			k(snapshot.PreviewedRedeemAssets),
			snapshot.AssetKey(snapshot.AssetBalance, asset),
			k(snapshot.MaxDepositable),
		}
	case SetFee:
		return []snapshot.FieldKey{k(snapshot.CurrentFee)}
	case ClaimFees:
		return []snapshot.FieldKey{k(snapshot.ClaimableFees), k(snapshot.TotalAssets)}
	}
	return nil
}
