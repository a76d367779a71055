package cmd

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tranvictor/vaultctl/config"
	"github.com/tranvictor/vaultctl/gateway"
)

// simulatedAccount owns the simulated vault so every command, including
// the owner ones, can be tried.
var simulatedAccount = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

func newSimulatedGateway() *gateway.MemoryGateway {
	g := gateway.NewMemoryGateway(config.TargetChainID)
	v := gateway.NewFakeVault(config.VaultAddress, config.AaveDataProvider, simulatedAccount).
		AddAsset(config.USDCAddress, "deposit", "withdraw").
		AddAsset(config.AUSDCAddress, "depositATokens", "withdrawATokens")
	v.Fee = big.NewInt(100_000_000_000_000_000)
	v.ClaimableFees = big.NewInt(1_250_000)
	// 5.2% APR in ray
	v.LiquidityRate = new(big.Int).Mul(big.NewInt(52), new(big.Int).Exp(big.NewInt(10), big.NewInt(24), nil))
	v.SetBalance(config.USDCAddress, simulatedAccount, big.NewInt(1_000_000_000))
	v.SetBalance(config.AUSDCAddress, simulatedAccount, big.NewInt(250_000_000))
	v.Install(g)
	g.Connect(simulatedAccount)
	return g
}
