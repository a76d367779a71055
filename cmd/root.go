// Copyright © 2018 Victor Tran
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tranvictor/vaultctl/accounts"
	"github.com/tranvictor/vaultctl/config"
	"github.com/tranvictor/vaultctl/logger"
	"github.com/tranvictor/vaultctl/networks"
	"github.com/tranvictor/vaultctl/ui"
)

var appUI ui.UI = ui.NewTerminalUI()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vaultctl",
	Short: "Operate the AAVE USDC vault on Base from the command line",
	Long: fmt.Sprintf(`vaultctl reads the state of the AAVE USDC ERC-4626 vault on Base and
drives its transactions: approve, deposit, withdraw and, for the vault owner,
set fee and claim fees.

Every write is checked before anything is signed: the active chain must be
Base (%d), amounts must fit the vault limits and your allowance, and owner
actions are refused to anyone but the owner.

By default vaultctl talks to the public Base nodes. You can add your own node
by setting %s, or use --node to talk to exactly one node.

Accounts are looked up in %s. Use "vaultctl wallet add" to import a key, or
set %s to sign with a raw private key.

Use --simulate to try every command against an in-process vault.`,
		config.TargetChainID,
		networks.BaseMainnet.GetNodeVariableName(),
		accounts.DefaultDir(),
		accounts.PrivateKeyEnv,
	),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(config.EnvFile, cmd.Flags()); err != nil {
			return err
		}
		logger.Initialize(config.LogLevel)
		if _, err := networks.LoadCustomNetworks(filepath.Join(accounts.DefaultDir(), "networks")); err != nil {
			appUI.Warn("Some custom networks could not be loaded: %s", err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.PersistentFlags().StringVarP(&config.Network, "network", "k", config.TargetNetworkName, "network to connect to. The vault only accepts writes on base.")
	rootCmd.PersistentFlags().StringVar(&config.Node, "node", "", "rpc url to use instead of the network's default nodes")
	rootCmd.PersistentFlags().StringVar(&config.LogLevel, "log-level", "warn", "trace, debug, info, warn or error. Logs go to stderr.")
	rootCmd.PersistentFlags().StringVar(&config.EnvFile, "env-file", ".env", "dotenv file loaded before reading VAULTCTL_* variables")
	rootCmd.PersistentFlags().StringVar(&config.MetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address, e.g. :9090")
	rootCmd.PersistentFlags().DurationVar(&config.PollInterval, "poll-interval", 0, "how often to poll for receipts. 0 uses the default of 5s.")
	rootCmd.PersistentFlags().BoolVar(&config.Simulate, "simulate", false, "use an in-process vault with a funded demo account instead of a chain")

	if err := rootCmd.Execute(); err != nil {
		var r reportedError
		if !errors.As(err, &r) {
			appUI.Error("%s", err)
		}
		os.Exit(1)
	}
}
