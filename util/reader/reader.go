package reader

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	vaultcommon "github.com/tranvictor/vaultctl/common"
)

var DEFAULT_ADDRESS = common.Address{}

// ErrNoNodes is returned by every read of a reader built without nodes.
var ErrNoNodes = errors.New("no nodes configured")

// EthReader fans every read out to all of its nodes and returns the first
// successful answer.
type EthReader struct {
	nodes map[string]EthereumNode
}

func NewEthReaderGeneric(nodes map[string]string) *EthReader {
	ns := map[string]EthereumNode{}
	for name, c := range nodes {
		ns[name] = NewOneNodeReader(name, c)
	}
	return &EthReader{nodes: ns}
}

// NewEthReaderWithNodes wraps already constructed nodes, e.g. fakes in
// tests.
func NewEthReaderWithNodes(nodes ...EthereumNode) *EthReader {
	ns := map[string]EthereumNode{}
	for _, n := range nodes {
		ns[n.NodeName()] = n
	}
	return &EthReader{nodes: ns}
}

// NodeNames lists the configured nodes in name order.
func (er *EthReader) NodeNames() []string {
	names := make([]string, 0, len(er.nodes))
	for name := range er.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func wrapError(e error, name string) error {
	if e == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", name, e)
}

type nodeResult[T any] struct {
	Value T
	Error error
}

// firstSuccess runs read on every node concurrently. The result channel is
// buffered so the slower nodes never block after an early return.
func firstSuccess[T any](er *EthReader, read func(n EthereumNode) (T, error)) (T, error) {
	var zero T
	if len(er.nodes) == 0 {
		return zero, ErrNoNodes
	}
	resCh := make(chan nodeResult[T], len(er.nodes))
	for i := range er.nodes {
		n := er.nodes[i]
		go func() {
			v, err := read(n)
			resCh <- nodeResult[T]{
				Value: v,
				Error: wrapError(err, n.NodeName()),
			}
		}()
	}
	errs := []error{}
	for i := 0; i < len(er.nodes); i++ {
		result := <-resCh
		if result.Error == nil {
			return result.Value, nil
		}
		errs = append(errs, result.Error)
	}
	return zero, fmt.Errorf("couldn't read from any nodes: %w", errors.Join(errs...))
}

func (er *EthReader) ChainID(ctx context.Context) (uint64, error) {
	return firstSuccess(er, func(n EthereumNode) (uint64, error) {
		return n.ChainID(ctx)
	})
}

func (er *EthReader) EstimateGas(
	ctx context.Context,
	from, to common.Address,
	value *big.Int,
	data []byte,
) (uint64, error) {
	msg := ethereum.CallMsg{
		From:  from,
		To:    &to,
		Value: value,
		Data:  data,
	}
	return firstSuccess(er, func(n EthereumNode) (uint64, error) {
		return n.EstimateGas(ctx, msg)
	})
}

func (er *EthReader) GetBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	return firstSuccess(er, func(n EthereumNode) (*big.Int, error) {
		return n.GetBalance(ctx, address)
	})
}

func (er *EthReader) GetPendingNonce(ctx context.Context, address common.Address) (uint64, error) {
	return firstSuccess(er, func(n EthereumNode) (uint64, error) {
		return n.GetPendingNonce(ctx, address)
	})
}

func (er *EthReader) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return firstSuccess(er, func(n EthereumNode) (*types.Receipt, error) {
		return n.TransactionReceipt(ctx, hash)
	})
}

type txByHash struct {
	tx        *types.Transaction
	isPending bool
}

func (er *EthReader) TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error) {
	r, err := firstSuccess(er, func(n EthereumNode) (txByHash, error) {
		tx, pending, err := n.TransactionByHash(ctx, hash)
		return txByHash{tx, pending}, err
	})
	return r.tx, r.isPending, err
}

// TxInfoFromHash classifies hash as notfound, pending, done or reverted. A
// node that answers "not found" is not treated as an error.
func (er *EthReader) TxInfoFromHash(ctx context.Context, hash common.Hash) (vaultcommon.TxInfo, error) {
	txObj, isPending, err := er.TransactionByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return vaultcommon.TxInfo{Status: vaultcommon.TxStatusNotFound}, nil
		}
		return vaultcommon.TxInfo{Status: vaultcommon.TxStatusError, Err: err}, err
	}
	if txObj == nil {
		return vaultcommon.TxInfo{Status: vaultcommon.TxStatusNotFound}, nil
	}
	if isPending {
		return vaultcommon.TxInfo{Status: vaultcommon.TxStatusPending, Tx: txObj}, nil
	}

	receipt, err := er.TransactionReceipt(ctx, hash)
	if receipt == nil {
		if errors.Is(err, ethereum.NotFound) {
			err = nil
		}
		return vaultcommon.TxInfo{Status: vaultcommon.TxStatusPending, Tx: txObj, Err: err}, err
	}

	if receipt.Status == types.ReceiptStatusSuccessful {
		return vaultcommon.TxInfo{Status: vaultcommon.TxStatusDone, Tx: txObj, Receipt: receipt}, nil
	}
	return vaultcommon.TxInfo{Status: vaultcommon.TxStatusReverted, Tx: txObj, Receipt: receipt}, nil
}

func (er *EthReader) ReadContractToBytes(
	ctx context.Context,
	atBlock int64,
	from common.Address,
	contract common.Address,
	abi *abi.ABI,
	method string,
	args ...interface{},
) ([]byte, error) {
	data, err := abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("packing %s: %w", method, err)
	}
	var blockBig *big.Int
	if atBlock > 0 {
		blockBig = big.NewInt(atBlock)
	}
	msg := ethereum.CallMsg{
		From: from,
		To:   &contract,
		Data: data,
	}
	return firstSuccess(er, func(n EthereumNode) ([]byte, error) {
		return n.CallContract(ctx, msg, blockBig)
	})
}

// ReadContractWithABI calls a view method at the latest block and returns
// its unpacked outputs in declaration order.
func (er *EthReader) ReadContractWithABI(
	ctx context.Context,
	contract common.Address,
	abi *abi.ABI,
	method string,
	args ...interface{},
) ([]interface{}, error) {
	responseBytes, err := er.ReadContractToBytes(ctx, -1, DEFAULT_ADDRESS, contract, abi, method, args...)
	if err != nil {
		return nil, err
	}
	return abi.Unpack(method, responseBytes)
}

// HeaderByNumber returns the header at number, or the latest header when
// number is negative.
func (er *EthReader) HeaderByNumber(ctx context.Context, number int64) (*types.Header, error) {
	var numberBig *big.Int
	if number > -1 {
		numberBig = big.NewInt(number)
	}
	return firstSuccess(er, func(n EthereumNode) (*types.Header, error) {
		return n.HeaderByNumber(ctx, numberBig)
	})
}

// CheckDynamicFeeTxAvailable reports whether the latest block carries a
// base fee, which is taken as the chain accepting EIP-1559 txs.
func (er *EthReader) CheckDynamicFeeTxAvailable(ctx context.Context) (bool, error) {
	header, err := er.HeaderByNumber(ctx, -1)
	if err != nil {
		return false, err
	}
	return header.BaseFee != nil && header.BaseFee.Sign() > 0, nil
}

// RecommendedGasPrice adds 50% to the node suggestion because the base fee
// of the next blocks may rise.
func (er *EthReader) RecommendedGasPrice(ctx context.Context) (*big.Int, error) {
	price, err := firstSuccess(er, func(n EthereumNode) (*big.Int, error) {
		return n.SuggestedGasPrice(ctx)
	})
	if err != nil {
		return nil, err
	}
	return vaultcommon.MulPercent(price, 150), nil
}

// GetSuggestedGasTipCap adds 20% on top of the node's tip suggestion.
func (er *EthReader) GetSuggestedGasTipCap(ctx context.Context) (*big.Int, error) {
	tip, err := firstSuccess(er, func(n EthereumNode) (*big.Int, error) {
		return n.SuggestedGasTipCap(ctx)
	})
	if err != nil {
		return nil, err
	}
	return vaultcommon.MulPercent(tip, 120), nil
}

// SuggestedGasSettings returns the fee cap and the tip. tip is nil when the
// chain only accepts legacy txs.
func (er *EthReader) SuggestedGasSettings(ctx context.Context) (gasPrice, tip *big.Int, err error) {
	isDynamicFeeAvailable, err := er.CheckDynamicFeeTxAvailable(ctx)
	if err != nil {
		return nil, nil, err
	}

	gasPrice, err = er.RecommendedGasPrice(ctx)
	if err != nil {
		return nil, nil, err
	}

	if isDynamicFeeAvailable {
		tip, err = er.GetSuggestedGasTipCap(ctx)
		if err != nil {
			return nil, nil, err
		}
	}
	return gasPrice, tip, nil
}
