package common

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// BuildExactTx builds an unsigned contract call. gasPrice is the fee cap
// for dynamic fee txs and the gas price for legacy txs.
func BuildExactTx(
	txType uint8,
	nonce uint64,
	to common.Address,
	value *big.Int,
	gasLimit uint64,
	gasPrice *big.Int,
	tipCap *big.Int,
	data []byte,
	chainID uint64,
) *types.Transaction {
	if value == nil {
		value = big.NewInt(0)
	}
	if txType == types.DynamicFeeTxType {
		return types.NewTx(&types.DynamicFeeTx{
			ChainID:   new(big.Int).SetUint64(chainID),
			Nonce:     nonce,
			GasTipCap: tipCap,
			GasFeeCap: gasPrice,
			Gas:       gasLimit,
			To:        &to,
			Value:     value,
			Data:      data,
		})
	}
	return types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       &to,
		Value:    value,
		Data:     data,
	})
}
