package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tranvictor/vaultctl/config"
)

func AddCommonFlagsToTransactionalCmds(c *cobra.Command) {
	c.PersistentFlags().
		Float64VarP(&config.GasPrice, "gasprice", "p", 0, "Gas price in gwei. If default value is used, we will ask the node for it. The gas price to be used in the tx is gas price + extra gas price")
	c.PersistentFlags().
		Float64VarP(&config.TipGas, "tipgas", "s", 0, "tip in gwei, will be use in dynamic fee tx, default value get from node.")
	c.PersistentFlags().
		Float64VarP(&config.ExtraGasPrice, "extraprice", "P", 0, "Extra gas price in gwei. The gas price to be used in the tx is gas price + extra gas price")
	c.PersistentFlags().
		Float64VarP(&config.ExtraTipGas, "extratip", "Q", 0, "Extra tip gas in gwei. The tip gas to be used in the tx is tip_gas_from_node + extra_tip_gas. This param will be ignored if dynamic tx is not possible.")
	c.PersistentFlags().
		Uint64VarP(&config.GasLimit, "gas", "g", 0, "Base gas limit for the tx. If default value is used, we will use the nodes to estimate the gas limit. The gas limit to be used in the tx is gas limit + extra gas limit")
	c.PersistentFlags().
		Uint64VarP(&config.ExtraGasLimit, "extragas", "G", 50000, "Extra gas limit for the tx. The gas limit to be used in the tx is gas limit + extra gas limit")
	c.PersistentFlags().
		StringVarP(&config.From, "from", "f", "", "Account to send the transaction from. It can be an address or a hint string to look it up in the list of accounts. See vaultctl wallet list for all of the registered accounts")
	c.PersistentFlags().
		BoolVarP(&config.ForceLegacy, "legacy-tx", "L", false, "Force using legacy transaction")
	c.PersistentFlags().
		BoolVarP(&config.YesToAllPrompt, "yes", "y", false, "Sign without asking for confirmation")
}

func addAssetFlag(c *cobra.Command) {
	c.Flags().StringVarP(&config.Asset, "asset", "a", "usdc", "usdc or ausdc")
}
