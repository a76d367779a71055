package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tranvictor/vaultctl/config"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the vault state and, with --from, your position",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()
		vc, err := newVaultContext(ctx, watchAccount)
		if err != nil {
			return err
		}
		if err := vc.orch.Refresh(ctx); err != nil {
			vc.log.Warn().Err(err).Msg("some fields could not be read")
		}
		sess := vc.gw.Session()
		renderSnapshot(appUI, vc.cache.Snapshot(), sess, vc.resolver, vc.orch.OwnerControlsVisible())
		if !sess.OnChain(config.TargetChainID) {
			showWrongNetwork(appUI, sess)
		}
		return nil
	},
}

func init() {
	infoCmd.Flags().StringVarP(&config.From, "from", "f", "", "account or address whose position to show")
	rootCmd.AddCommand(infoCmd)
}
