package networks

var EthereumMainnet Network = NewGenericNetwork(GenericNetworkConfig{
	Name:               "mainnet",
	AlternativeNames:   []string{"ethereum"},
	ChainID:            1,
	NativeTokenSymbol:  "ETH",
	NativeTokenDecimal: 18,
	BlockTime:          12,
	NodeVariableName:   "ETHEREUM_MAINNET_NODE",
	DefaultNodes: map[string]string{
		"public-eth": "https://ethereum-rpc.publicnode.com",
	},
	BlockExplorerURL: "https://etherscan.io",
})

var OptimismMainnet Network = NewGenericNetwork(GenericNetworkConfig{
	Name:               "optimism",
	AlternativeNames:   []string{"op"},
	ChainID:            10,
	NativeTokenSymbol:  "ETH",
	NativeTokenDecimal: 18,
	BlockTime:          2,
	NodeVariableName:   "OPTIMISM_MAINNET_NODE",
	DefaultNodes: map[string]string{
		"public-optimism": "https://mainnet.optimism.io",
	},
	BlockExplorerURL: "https://optimistic.etherscan.io",
})
