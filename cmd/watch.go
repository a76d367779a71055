package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tranvictor/vaultctl/config"
	"github.com/tranvictor/vaultctl/metrics"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-read and print the vault state every --interval",
	Long: `Polls the vault until interrupted. Combined with --metrics-addr the read
error counters are exported for scraping.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if config.WatchInterval <= 0 {
			config.WatchInterval = 30 * time.Second
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()
		vc, err := newVaultContext(ctx, watchAccount)
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

		ticker := time.NewTicker(config.WatchInterval)
		defer ticker.Stop()
		for {
			if err := vc.orch.Refresh(ctx); err != nil {
				vc.log.Warn().Err(err).Msg("some fields could not be read")
			}
			sess := vc.gw.Session()
			appUI.Section(time.Now().Format(time.TimeOnly))
			renderSnapshot(appUI, vc.cache.Snapshot(), sess, vc.resolver, vc.orch.OwnerControlsVisible())
			if !sess.OnChain(config.TargetChainID) {
				showWrongNetwork(appUI, sess)
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	},
}

func init() {
	watchCmd.Flags().DurationVarP(&config.WatchInterval, "interval", "i", 30*time.Second, "time between two reads")
	watchCmd.Flags().StringVarP(&config.From, "from", "f", "", "account or address whose position to show")
	rootCmd.AddCommand(watchCmd)
}
