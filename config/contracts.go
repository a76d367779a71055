package config

import (
	"github.com/ethereum/go-ethereum/common"
)

// Contract addresses on Base.
const (
	VaultAddressHex              = "0x26B3D10418807513f38C35f68Ed011d2250d9eC4"
	USDCAddressHex               = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
	AUSDCAddressHex              = "0x4e65fE4DbA92790696d040ac24Aa414708F5c0AB"
	AavePoolAddressesProviderHex = "0xe20fCBdBfFC4Dd138cE8b2E6FBb6CB49777ad64D"
	AaveUIPoolDataProviderHex    = "0x68100bD5345eA474D93577127C11F39FF8463e93"
	AaveProtocolDataProviderHex  = "0x2d8A3C5677189723C4cB8873CfC9C8976FDF38Ac"
)

// TargetChainID is the chain the vault is deployed on. Every write is
// refused while the session is on any other chain.
const TargetChainID uint64 = 8453

const TargetNetworkName = "base"

var (
	VaultAddress        = common.HexToAddress(VaultAddressHex)
	AaveDataProvider    = common.HexToAddress(AaveProtocolDataProviderHex)
	USDCAddress         = common.HexToAddress(USDCAddressHex)
	AUSDCAddress        = common.HexToAddress(AUSDCAddressHex)
	AaveAddressProvider = common.HexToAddress(AavePoolAddressesProviderHex)
)
