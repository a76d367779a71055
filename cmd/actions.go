package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/tranvictor/vaultctl/config"
	"github.com/tranvictor/vaultctl/orchestrator"
	"github.com/tranvictor/vaultctl/snapshot"
	"github.com/tranvictor/vaultctl/vault"
)

// reportedError was already shown to the user by a notification.
type reportedError struct {
	error
}

func reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err}
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}

// ready makes sure the session is on Base, offering the switch when it is
// not, and loads the snapshot the preconditions are checked against.
func (vc *vaultContext) ready(ctx context.Context) error {
	if sess := vc.gw.Session(); !sess.OnChain(config.TargetChainID) {
		showWrongNetwork(appUI, sess)
		if !appUI.Confirm("Switch to Base now?", true) {
			return reported(&orchestrator.ValidationError{Kind: "network", Err: orchestrator.ErrWrongNetwork})
		}
		if err := vc.orch.SwitchNetwork(ctx); err != nil {
			return reported(err)
		}
		return nil
	}
	if err := vc.orch.Refresh(ctx); err != nil {
		vc.log.Warn().Err(err).Msg("some fields could not be read")
	}
	return nil
}

// execute starts a and waits for it with a spinner.
func (vc *vaultContext) execute(ctx context.Context, a orchestrator.Action) (orchestrator.PendingTransaction, error) {
	interpretAmount(appUI, a)
	ch, err := vc.orch.Start(ctx, a)
	if err != nil {
		return orchestrator.PendingTransaction{}, reported(err)
	}
	stop := appUI.Spinner("Waiting for the transaction to be mined...")
	r := <-ch
	stop()
	if r.Tx.Hash != (common.Hash{}) {
		appUI.Critical("Tx: %s", vc.txURL(r.Tx.Hash))
	}
	return r.Tx, reported(r.Err)
}

func selectedAsset() (vault.AssetDescriptor, error) {
	return vault.LookupAsset(config.Asset)
}

var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Allow the vault to pull an unlimited amount of an asset",
	Long:  `Each asset needs its own approval before it can be deposited.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()
		asset, err := selectedAsset()
		if err != nil {
			return err
		}
		vc, err := newVaultContext(ctx, signingAccount)
		if err != nil {
			return err
		}
		if err := vc.ready(ctx); err != nil {
			return err
		}
		_, err = vc.execute(ctx, orchestrator.Action{Kind: orchestrator.Approval, Asset: asset.ID})
		return err
	},
}

var depositCmd = &cobra.Command{
	Use:   "deposit <amount|max>",
	Short: "Deposit USDC or aUSDC into the vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()
		asset, err := selectedAsset()
		if err != nil {
			return err
		}
		vc, err := newVaultContext(ctx, signingAccount)
		if err != nil {
			return err
		}
		if err := vc.ready(ctx); err != nil {
			return err
		}

		needs, err := vc.orch.NeedsApproval(asset.ID, args[0])
		if err != nil {
			return err
		}
		if needs {
			appUI.Warn("%s needs approval before it can be deposited.", asset.Name)
			if !config.AutoApprove {
				appUI.Info("Run again with --approve, or approve first:\n> vaultctl approve --asset %s", asset.ID)
				return reported(&orchestrator.ValidationError{Kind: orchestrator.Deposit, Err: orchestrator.ErrInsufficientAllowance})
			}
			if _, err := vc.execute(ctx, orchestrator.Action{Kind: orchestrator.Approval, Asset: asset.ID}); err != nil {
				return err
			}
		}
		_, err = vc.execute(ctx, orchestrator.Action{Kind: orchestrator.Deposit, Asset: asset.ID, Amount: args[0]})
		return err
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw <amount|max>",
	Short: "Withdraw USDC or aUSDC from the vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()
		asset, err := selectedAsset()
		if err != nil {
			return err
		}
		vc, err := newVaultContext(ctx, signingAccount)
		if err != nil {
			return err
		}
		if err := vc.ready(ctx); err != nil {
			return err
		}
		_, err = vc.execute(ctx, orchestrator.Action{Kind: orchestrator.Withdrawal, Asset: asset.ID, Amount: args[0]})
		return err
	},
}

var feeCmd = &cobra.Command{
	Use:   "fee",
	Short: "Owner only: manage the vault fee",
}

var setFeeCmd = &cobra.Command{
	Use:   "set <percent>",
	Short: "Set the vault fee, between 0 and 100 percent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOwnerAction(cmd, orchestrator.Action{Kind: orchestrator.SetFee, Amount: args[0]})
	},
}

var claimFeesCmd = &cobra.Command{
	Use:   "claim",
	Short: "Claim the accrued vault fees to the owner",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOwnerAction(cmd, orchestrator.Action{Kind: orchestrator.ClaimFees})
	},
}

func runOwnerAction(cmd *cobra.Command, a orchestrator.Action) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	vc, err := newVaultContext(ctx, signingAccount)
	if err != nil {
		return err
	}
	if err := vc.ready(ctx); err != nil {
		return err
	}
	_, err = vc.execute(ctx, a)
	if errors.Is(err, orchestrator.ErrNotOwner) {
		owner := vc.cache.Get(snapshot.Key(snapshot.ContractOwner))
		if owner.Ready() {
			appUI.Info("The vault owner is %s.", vc.resolver.Resolve(owner.Address))
		}
	}
	return err
}

func init() {
	for _, c := range []*cobra.Command{approveCmd, depositCmd, withdrawCmd} {
		addAssetFlag(c)
		AddCommonFlagsToTransactionalCmds(c)
		rootCmd.AddCommand(c)
	}
	depositCmd.Flags().BoolVar(&config.AutoApprove, "approve", false, "approve the asset first when the allowance is short")

	AddCommonFlagsToTransactionalCmds(feeCmd)
	feeCmd.AddCommand(setFeeCmd, claimFeesCmd)
	rootCmd.AddCommand(feeCmd)
}
