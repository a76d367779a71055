package networks

var BaseMainnet Network = NewGenericNetwork(GenericNetworkConfig{
	Name:               "base",
	AlternativeNames:   []string{"base-mainnet"},
	ChainID:            8453,
	NativeTokenSymbol:  "ETH",
	NativeTokenDecimal: 18,
	BlockTime:          2,
	NodeVariableName:   "BASE_MAINNET_NODE",
	DefaultNodes: map[string]string{
		"public-base": "https://mainnet.base.org",
	},
	BlockExplorerURL: "https://basescan.org",
})

var BaseSepolia Network = NewGenericNetwork(GenericNetworkConfig{
	Name:               "base-sepolia",
	AlternativeNames:   []string{},
	ChainID:            84532,
	NativeTokenSymbol:  "ETH",
	NativeTokenDecimal: 18,
	BlockTime:          2,
	NodeVariableName:   "BASE_SEPOLIA_NODE",
	DefaultNodes: map[string]string{
		"public-base-sepolia": "https://sepolia.base.org",
	},
	BlockExplorerURL: "https://sepolia.basescan.org",
})
