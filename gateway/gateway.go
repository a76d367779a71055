// Package gateway is the only way the rest of vaultctl touches a chain. It
// tracks the session (account and active chain), reads contract fields,
// submits signed transactions and waits for their receipts.
package gateway

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	ErrNotConnected    = errors.New("no account connected")
	ErrSigningDeclined = errors.New("signing declined")
	ErrTxLost          = errors.New("transaction was never seen by any node")
	ErrChainMismatch   = errors.New("node reports a different chain")
)

// Session is who is connected and where. A zero Session is disconnected.
type Session struct {
	Account   common.Address
	Connected bool
	ChainID   uint64
}

func (s Session) OnChain(chainID uint64) bool {
	return s.ChainID == chainID
}

type Gateway interface {
	Session() Session
	// Read calls a view method and returns its unpacked outputs.
	Read(ctx context.Context, contract common.Address, abi *abi.ABI, method string, args ...interface{}) ([]interface{}, error)
	// Submit signs and broadcasts a call from the session account. It
	// returns once the tx was accepted by a node.
	Submit(ctx context.Context, contract common.Address, abi *abi.ABI, method string, args ...interface{}) (common.Hash, error)
	// AwaitReceipt blocks until hash is mined or ctx ends. A reverted tx
	// returns its receipt and no error.
	AwaitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	SwitchActiveChain(ctx context.Context, chainID uint64) error
	// Subscribe delivers every later session change. Call the returned
	// func to stop.
	Subscribe() (<-chan Session, func())
}
