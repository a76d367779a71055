package common

import (
	"github.com/ethereum/go-ethereum/core/types"
)

type TxStatus string

const (
	TxStatusError    TxStatus = "error"
	TxStatusNotFound TxStatus = "notfound"
	TxStatusPending  TxStatus = "pending"
	TxStatusReverted TxStatus = "reverted"
	TxStatusDone     TxStatus = "done"
	TxStatusLost     TxStatus = "lost"
)

type TxInfo struct {
	Status  TxStatus
	Tx      *types.Transaction
	Receipt *types.Receipt
	Err     error
}

// Final reports whether no further polling can change the status.
func (ti TxInfo) Final() bool {
	return ti.Status == TxStatusDone || ti.Status == TxStatusReverted || ti.Status == TxStatusLost
}
