package common

import (
	"testing"
)

func TestABIsExposeContractSurface(t *testing.T) {
	vaultMethods := []string{
		"deposit", "depositATokens", "withdraw", "withdrawATokens", "redeem",
		"redeemAsATokens", "totalAssets", "maxDeposit", "maxWithdraw", "maxRedeem",
		"previewWithdraw", "previewRedeem", "balanceOf", "getFee", "getClaimableFees",
		"setFee", "claimRewards", "owner", "UNDERLYING",
	}
	for _, m := range vaultMethods {
		if _, ok := GetVaultABI().Methods[m]; !ok {
			t.Errorf("vault abi is missing %s", m)
		}
	}
	for _, m := range []string{"approve", "balanceOf", "allowance"} {
		if _, ok := GetERC20ABI().Methods[m]; !ok {
			t.Errorf("erc20 abi is missing %s", m)
		}
	}

	reserve, ok := GetAaveDataProviderABI().Methods["getReserveData"]
	if !ok {
		t.Fatalf("aave data provider abi is missing getReserveData")
	}
	if len(reserve.Outputs) != 12 {
		t.Fatalf("getReserveData outputs: got %d, want 12", len(reserve.Outputs))
	}
	if name := reserve.Outputs[LiquidityRateIndex].Name; name != "liquidityRate" {
		t.Errorf("output %d: got %s, want liquidityRate", LiquidityRateIndex, name)
	}
	if got := GetVaultABI().Methods["withdraw"].Inputs; len(got) != 3 {
		t.Errorf("withdraw takes (assets, receiver, owner), got %d inputs", len(got))
	}
}
