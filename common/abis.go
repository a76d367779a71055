package common

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const vaultabi = `[
{"type":"function","name":"deposit","stateMutability":"nonpayable","inputs":[{"name":"assets","type":"uint256"},{"name":"receiver","type":"address"}],"outputs":[{"name":"shares","type":"uint256"}]},
{"type":"function","name":"depositATokens","stateMutability":"nonpayable","inputs":[{"name":"assets","type":"uint256"},{"name":"receiver","type":"address"}],"outputs":[{"name":"shares","type":"uint256"}]},
{"type":"function","name":"withdraw","stateMutability":"nonpayable","inputs":[{"name":"assets","type":"uint256"},{"name":"receiver","type":"address"},{"name":"owner","type":"address"}],"outputs":[{"name":"shares","type":"uint256"}]},
{"type":"function","name":"withdrawATokens","stateMutability":"nonpayable","inputs":[{"name":"assets","type":"uint256"},{"name":"receiver","type":"address"},{"name":"owner","type":"address"}],"outputs":[{"name":"shares","type":"uint256"}]},
{"type":"function","name":"redeem","stateMutability":"nonpayable","inputs":[{"name":"shares","type":"uint256"},{"name":"receiver","type":"address"},{"name":"owner","type":"address"}],"outputs":[{"name":"assets","type":"uint256"}]},
{"type":"function","name":"redeemAsATokens","stateMutability":"nonpayable","inputs":[{"name":"shares","type":"uint256"},{"name":"receiver","type":"address"},{"name":"owner","type":"address"}],"outputs":[{"name":"assets","type":"uint256"}]},
{"type":"function","name":"totalAssets","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"maxDeposit","stateMutability":"view","inputs":[{"name":"","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"maxWithdraw","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"maxRedeem","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"previewWithdraw","stateMutability":"view","inputs":[{"name":"assets","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"previewRedeem","stateMutability":"view","inputs":[{"name":"shares","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"getFee","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"getClaimableFees","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"setFee","stateMutability":"nonpayable","inputs":[{"name":"newFee","type":"uint256"}],"outputs":[]},
{"type":"function","name":"claimRewards","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"}],"outputs":[]},
{"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
{"type":"function","name":"UNDERLYING","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]}
]`

const erc20abi = `[
{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

const aavedataproviderabi = `[
{"type":"function","name":"getReserveData","stateMutability":"view","inputs":[{"name":"asset","type":"address"}],"outputs":[
{"name":"unbacked","type":"uint256"},
{"name":"accruedToTreasuryScaled","type":"uint256"},
{"name":"totalAToken","type":"uint256"},
{"name":"totalStableDebt","type":"uint256"},
{"name":"totalVariableDebt","type":"uint256"},
{"name":"liquidityRate","type":"uint256"},
{"name":"variableBorrowRate","type":"uint256"},
{"name":"stableBorrowRate","type":"uint256"},
{"name":"averageStableBorrowRate","type":"uint256"},
{"name":"liquidityIndex","type":"uint256"},
{"name":"variableBorrowIndex","type":"uint256"},
{"name":"lastUpdateTimestamp","type":"uint40"}
]}
]`

// LiquidityRateIndex is the position of liquidityRate in getReserveData's
// outputs.
const LiquidityRateIndex = 5

var (
	abiOnce          sync.Once
	vaultABI         *abi.ABI
	erc20ABI         *abi.ABI
	aaveDataProvider *abi.ABI
)

func mustParseABI(name, raw string) *abi.ABI {
	result, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("couldn't parse %s abi: %s", name, err))
	}
	return &result
}

func loadABIs() {
	abiOnce.Do(func() {
		vaultABI = mustParseABI("vault", vaultabi)
		erc20ABI = mustParseABI("erc20", erc20abi)
		aaveDataProvider = mustParseABI("aave data provider", aavedataproviderabi)
	})
}

func GetVaultABI() *abi.ABI {
	loadABIs()
	return vaultABI
}

func GetERC20ABI() *abi.ABI {
	loadABIs()
	return erc20ABI
}

func GetAaveDataProviderABI() *abi.ABI {
	loadABIs()
	return aaveDataProvider
}
