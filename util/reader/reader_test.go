package reader

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	vaultcommon "github.com/tranvictor/vaultctl/common"
)

type fakeNode struct {
	name     string
	err      error
	chainID  uint64
	gasPrice *big.Int
	tip      *big.Int
	baseFee  *big.Int
	tx       *types.Transaction
	pending  bool
	txErr    error
	receipt  *types.Receipt
	callOut  []byte
	lastCall ethereum.CallMsg
}

func (f *fakeNode) NodeName() string { return f.name }
func (f *fakeNode) NodeURL() string  { return "fake://" + f.name }

func (f *fakeNode) ChainID(ctx context.Context) (uint64, error) {
	return f.chainID, f.err
}

func (f *fakeNode) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return 21000, f.err
}

func (f *fakeNode) GetBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	return big.NewInt(1), f.err
}

func (f *fakeNode) GetPendingNonce(ctx context.Context, address common.Address) (uint64, error) {
	return 7, f.err
}

func (f *fakeNode) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	if f.receipt == nil {
		return nil, ethereum.NotFound
	}
	return f.receipt, f.err
}

func (f *fakeNode) TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error) {
	if f.txErr != nil {
		return nil, false, f.txErr
	}
	return f.tx, f.pending, f.err
}

func (f *fakeNode) SuggestedGasPrice(ctx context.Context) (*big.Int, error) {
	return f.gasPrice, f.err
}

func (f *fakeNode) SuggestedGasTipCap(ctx context.Context) (*big.Int, error) {
	return f.tip, f.err
}

func (f *fakeNode) CallContract(ctx context.Context, msg ethereum.CallMsg, atBlock *big.Int) ([]byte, error) {
	f.lastCall = msg
	return f.callOut, f.err
}

func (f *fakeNode) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(100), BaseFee: f.baseFee}, f.err
}

func TestFirstSuccessSkipsFailingNodes(t *testing.T) {
	r := NewEthReaderWithNodes(
		&fakeNode{name: "down", err: errors.New("connection refused")},
		&fakeNode{name: "up", chainID: 8453},
	)
	id, err := r.ChainID(context.Background())
	if err != nil {
		t.Fatalf("ChainID: %s", err)
	}
	if id != 8453 {
		t.Errorf("got %d, want 8453", id)
	}
}

func TestAllNodesFailing(t *testing.T) {
	r := NewEthReaderWithNodes(
		&fakeNode{name: "a", err: errors.New("boom")},
		&fakeNode{name: "b", err: errors.New("bang")},
	)
	_, err := r.GetPendingNonce(context.Background(), common.Address{})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "couldn't read from any nodes") ||
		!strings.Contains(err.Error(), "a: boom") || !strings.Contains(err.Error(), "b: bang") {
		t.Errorf("unexpected error text: %s", err)
	}
}

func TestNodeNamesSorted(t *testing.T) {
	r := NewEthReaderWithNodes(&fakeNode{name: "public-base"}, &fakeNode{name: "alchemy"})
	got := strings.Join(r.NodeNames(), ",")
	if got != "alchemy,public-base" {
		t.Errorf("got %s", got)
	}
}

func TestNoNodes(t *testing.T) {
	r := NewEthReaderWithNodes()
	if _, err := r.ChainID(context.Background()); !errors.Is(err, ErrNoNodes) {
		t.Errorf("got %v, want ErrNoNodes", err)
	}
}

func TestTxInfoFromHash(t *testing.T) {
	tx := types.NewTx(&types.LegacyTx{Nonce: 1, Gas: 21000, GasPrice: big.NewInt(1)})
	ctx := context.Background()

	cases := []struct {
		name string
		node *fakeNode
		want vaultcommon.TxStatus
	}{
		{"notfound", &fakeNode{name: "n", txErr: ethereum.NotFound}, vaultcommon.TxStatusNotFound},
		{"pending", &fakeNode{name: "n", tx: tx, pending: true}, vaultcommon.TxStatusPending},
		{"mined-no-receipt", &fakeNode{name: "n", tx: tx}, vaultcommon.TxStatusPending},
		{"done", &fakeNode{name: "n", tx: tx, receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful}}, vaultcommon.TxStatusDone},
		{"reverted", &fakeNode{name: "n", tx: tx, receipt: &types.Receipt{Status: types.ReceiptStatusFailed}}, vaultcommon.TxStatusReverted},
		{"error", &fakeNode{name: "n", txErr: errors.New("timeout")}, vaultcommon.TxStatusError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			info, _ := NewEthReaderWithNodes(tc.node).TxInfoFromHash(ctx, tx.Hash())
			if info.Status != tc.want {
				t.Errorf("got %s, want %s", info.Status, tc.want)
			}
		})
	}
}

func TestSuggestedGasSettings(t *testing.T) {
	ctx := context.Background()
	dynamic := NewEthReaderWithNodes(&fakeNode{
		name: "n", gasPrice: big.NewInt(1000), tip: big.NewInt(100), baseFee: big.NewInt(5),
	})
	price, tip, err := dynamic.SuggestedGasSettings(ctx)
	if err != nil {
		t.Fatalf("SuggestedGasSettings: %s", err)
	}
	if price.Int64() != 1500 || tip == nil || tip.Int64() != 120 {
		t.Errorf("got price %s tip %v, want 1500 and 120", price, tip)
	}

	legacy := NewEthReaderWithNodes(&fakeNode{name: "n", gasPrice: big.NewInt(1000)})
	_, tip, err = legacy.SuggestedGasSettings(ctx)
	if err != nil {
		t.Fatalf("SuggestedGasSettings: %s", err)
	}
	if tip != nil {
		t.Errorf("legacy chains should not get a tip, got %s", tip)
	}
}

func TestReadContractWithABI(t *testing.T) {
	erc20 := vaultcommon.GetERC20ABI()
	out, err := erc20.Methods["balanceOf"].Outputs.Pack(big.NewInt(42))
	if err != nil {
		t.Fatalf("pack: %s", err)
	}
	node := &fakeNode{name: "n", callOut: out}
	token := common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913")
	res, err := NewEthReaderWithNodes(node).ReadContractWithABI(
		context.Background(), token, erc20, "balanceOf", common.HexToAddress("0x01"))
	if err != nil {
		t.Fatalf("ReadContractWithABI: %s", err)
	}
	if got := res[0].(*big.Int); got.Int64() != 42 {
		t.Errorf("got %s, want 42", got)
	}
	if node.lastCall.To == nil || *node.lastCall.To != token {
		t.Errorf("call was not sent to the token contract")
	}
}
