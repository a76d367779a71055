package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tranvictor/vaultctl/config"
	"github.com/tranvictor/vaultctl/networks"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "List networks and switch the session to Base",
}

var listNetworkCmd = &cobra.Command{
	Use:   "list",
	Short: "List the networks vaultctl knows",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		all := networks.GetSupportedNetworks()
		sort.Slice(all, func(i, j int) bool { return all[i].GetChainID() < all[j].GetChainID() })
		// the vault network first, then everything else
		groups := [][][]string{{}, {}}
		for _, n := range all {
			row := []string{
				n.GetName(),
				fmt.Sprintf("%d", n.GetChainID()),
				n.GetNodeVariableName(),
			}
			if n.GetChainID() == config.TargetChainID {
				groups[0] = append(groups[0], append(row, "vault"))
			} else {
				groups[1] = append(groups[1], append(row, ""))
			}
		}
		appUI.TableWithGroups([]string{"Name", "Chain ID", "Node env var", ""}, groups)
	},
}

var switchNetworkCmd = &cobra.Command{
	Use:   "switch [name]",
	Short: "Connect to the network given by --network and switch the session to Base",
	Long: `Connects like any other command, then asks the gateway to move the
session to Base. The vault only accepts writes there, so name defaults to
base and must resolve to chain 8453.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			target, err := networks.GetNetwork(args[0])
			if err != nil {
				return fmt.Errorf("unknown network %q: %w", args[0], err)
			}
			if target.GetChainID() != config.TargetChainID {
				return fmt.Errorf("the vault is only deployed on base (%d), %s is chain %d", config.TargetChainID, target.GetName(), target.GetChainID())
			}
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()
		vc, err := newVaultContext(ctx, noAccount)
		if err != nil {
			return err
		}
		sess := vc.gw.Session()
		if sess.OnChain(config.TargetChainID) {
			appUI.Success("Already on %s.", chainText(sess.ChainID))
			return nil
		}
		showWrongNetwork(appUI, sess)
		return reported(vc.orch.SwitchNetwork(ctx))
	},
}

func init() {
	networkCmd.AddCommand(listNetworkCmd, switchNetworkCmd)
	rootCmd.AddCommand(networkCmd)
}
