package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tranvictor/vaultctl/config"
	"github.com/tranvictor/vaultctl/metrics"
	"github.com/tranvictor/vaultctl/orchestrator"
	"github.com/tranvictor/vaultctl/ui"
	"github.com/tranvictor/vaultctl/vault"
)

type menuEntry struct {
	label  string
	action *orchestrator.Action
	run    func(ctx context.Context, vc *vaultContext) error
}

var errQuit = errors.New("quit")

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive view of the vault with every action one keystroke away",
	Long: `Shows the vault and your position, then loops over a menu of actions.
Transactions of different kinds can be in flight at the same time. Each one
reports back when it is mined and the affected values are re-read.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()
		vc, err := newVaultContext(ctx, signingAccount)
		if err != nil {
			return err
		}
		if vc.registry != nil {
			go func() {
				if err := metrics.Serve(ctx, config.MetricsAddr, vc.registry); err != nil {
					vc.log.Error().Err(err).Msg("metrics server stopped")
				}
			}()
		}
		go vc.orch.WatchSession(ctx)
		if err := vc.orch.Refresh(ctx); err != nil {
			vc.log.Warn().Err(err).Msg("some fields could not be read")
		}

		for ctx.Err() == nil {
			sess := vc.gw.Session()
			renderSnapshot(appUI, vc.cache.Snapshot(), sess, vc.resolver, vc.orch.OwnerControlsVisible())
			if !sess.OnChain(config.TargetChainID) {
				showWrongNetwork(appUI, sess)
			}
			showStatuses(appUI, vc.orch)

			entries := dashboardMenu(vc)
			labels := make([]string, len(entries))
			for i, e := range entries {
				labels[i] = e.label
				if e.action != nil {
					if err := vc.orch.Enabled(*e.action); err != nil && !needsInput(err) {
						labels[i] = fmt.Sprintf("%s (%s)", e.label, errText(err))
					}
				}
			}
			choice := appUI.Choose("What do you want to do?", labels)
			if err := entries[choice].run(ctx, vc); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				vc.log.Debug().Err(err).Msg("dashboard action")
			}
		}
		return nil
	},
}

func needsInput(err error) bool {
	return errors.Is(err, orchestrator.ErrInvalidAmount)
}

func errText(err error) string {
	var verr *orchestrator.ValidationError
	if errors.As(err, &verr) {
		return verr.Err.Error()
	}
	return err.Error()
}

func showStatuses(u ui.UI, o *orchestrator.Orchestrator) {
	rows := [][2]string{}
	for _, k := range orchestrator.Kinds() {
		status := o.Status(k)
		text := status.String()
		if last, ok := o.Last(k); ok && status == orchestrator.Idle {
			text = fmt.Sprintf("idle, last %s %s", last.Status, last.Hash.Hex())
		}
		rows = append(rows, [2]string{k.Title(), text})
	}
	u.Section("Transactions")
	u.KeyValue(rows)
}

func dashboardMenu(vc *vaultContext) []menuEntry {
	entries := []menuEntry{
		{label: "Refresh", run: func(ctx context.Context, vc *vaultContext) error {
			return vc.orch.Refresh(ctx)
		}},
	}
	if !vc.gw.Session().OnChain(config.TargetChainID) {
		entries = append(entries, menuEntry{label: "Switch to Base", run: func(ctx context.Context, vc *vaultContext) error {
			return vc.orch.SwitchNetwork(ctx)
		}})
	}
	for _, asset := range vault.Assets() {
		asset := asset
		for _, kind := range []orchestrator.Kind{orchestrator.Approval, orchestrator.Deposit, orchestrator.Withdrawal} {
			a := orchestrator.Action{Kind: kind, Asset: asset.ID}
			entries = append(entries, menuEntry{
				label:  fmt.Sprintf("%s %s", kind.Title(), asset.Name),
				action: &a,
				run:    startAction(a, kind != orchestrator.Approval),
			})
		}
	}
	if vc.orch.OwnerControlsVisible() {
		setFee := orchestrator.Action{Kind: orchestrator.SetFee}
		claim := orchestrator.Action{Kind: orchestrator.ClaimFees}
		entries = append(entries,
			menuEntry{label: "Set fee", action: &setFee, run: startAction(setFee, true)},
			menuEntry{label: "Claim fees", action: &claim, run: startAction(claim, false)},
		)
	}
	return append(entries, menuEntry{label: "Quit", run: func(context.Context, *vaultContext) error {
		return errQuit
	}})
}

// startAction submits a and returns without waiting for it to be mined.
// Inputs are kept per kind so a refused amount can be corrected.
func startAction(a orchestrator.Action, withAmount bool) func(context.Context, *vaultContext) error {
	return func(ctx context.Context, vc *vaultContext) error {
		if withAmount {
			if prev := vc.orch.Input(a.Kind); prev != "" {
				appUI.Info("Amount (enter to keep %s, \"max\" for the maximum):", prev)
			} else {
				appUI.Info("Amount (\"max\" for the maximum):")
			}
			if in := appUI.Ask(nil); in != "" {
				vc.orch.SetInput(a.Kind, in)
			}
			interpretAmount(appUI, orchestrator.Action{Kind: a.Kind, Asset: a.Asset, Amount: vc.orch.Input(a.Kind)})
		}
		ch, err := vc.orch.Start(ctx, a)
		if err != nil {
			return err
		}
		go func() {
			r := <-ch
			if r.Err == nil {
				appUI.Critical("Tx: %s", vc.txURL(r.Tx.Hash))
			}
		}()
		return nil
	}
}

func init() {
	AddCommonFlagsToTransactionalCmds(dashboardCmd)
	rootCmd.AddCommand(dashboardCmd)
}
