package gateway

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"

	vaultcommon "github.com/tranvictor/vaultctl/common"
	"github.com/tranvictor/vaultctl/logger"
	"github.com/tranvictor/vaultctl/networks"
	"github.com/tranvictor/vaultctl/util/account"
	"github.com/tranvictor/vaultctl/util/broadcaster"
	"github.com/tranvictor/vaultctl/util/monitor"
	"github.com/tranvictor/vaultctl/util/reader"
)

// TxSummary is what the signer is asked to approve.
type TxSummary struct {
	From     common.Address
	To       common.Address
	Method   string
	Args     []interface{}
	Network  networks.Network
	ChainID  uint64
	Nonce    uint64
	GasLimit uint64
	// GasPrice is the fee cap of a dynamic fee tx.
	GasPrice *big.Int
	// TipCap is nil for legacy txs.
	TipCap *big.Int
}

// ConfirmFunc returns false to decline signing.
type ConfirmFunc func(TxSummary) bool

// Options tune how txs are built. Gas prices are in gwei, zero meaning
// "ask the node".
type Options struct {
	GasPrice      float64
	TipGas        float64
	ExtraGasPrice float64
	ExtraTipGas   float64
	GasLimit      uint64
	ExtraGasLimit uint64
	ForceLegacy   bool

	// Confirm is asked before every signature. nil signs without asking.
	Confirm      ConfirmFunc
	PollInterval time.Duration
}

// EthGateway is the Gateway backed by JSON-RPC nodes.
type EthGateway struct {
	mu          sync.RWMutex
	network     networks.Network
	reader      *reader.EthReader
	broadcaster *broadcaster.Broadcaster
	monitor     *monitor.TxMonitor
	account     *account.Account
	session     Session

	notifier *SessionNotifier
	opts     Options
	log      zerolog.Logger
}

// NewEthGateway dials network's nodes, or only nodeOverride when it is set,
// and asks them which chain they are on.
func NewEthGateway(ctx context.Context, network networks.Network, nodeOverride string, opts Options) (*EthGateway, error) {
	g := &EthGateway{
		notifier: NewSessionNotifier(),
		opts:     opts,
		log:      logger.GetForComponent("gateway"),
	}
	c, err := g.dial(ctx, network, networks.Nodes(network, nodeOverride))
	if err != nil {
		return nil, err
	}
	g.use(c)
	return g, nil
}

type connection struct {
	network     networks.Network
	reader      *reader.EthReader
	broadcaster *broadcaster.Broadcaster
	monitor     *monitor.TxMonitor
	chainID     uint64
}

func (g *EthGateway) dial(ctx context.Context, network networks.Network, nodes map[string]string) (*connection, error) {
	r := reader.NewEthReaderGeneric(nodes)
	chainID, err := r.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying chain id of %s: %w", network.GetName(), err)
	}
	if chainID != network.GetChainID() {
		g.log.Warn().
			Str("network", network.GetName()).
			Uint64("expected", network.GetChainID()).
			Uint64("actual", chainID).
			Msg("node is on a different chain than its network config")
	}
	g.log.Debug().Str("network", network.GetName()).Strs("nodes", r.NodeNames()).Uint64("chain_id", chainID).Msg("dialed")
	return &connection{
		network:     network,
		reader:      r,
		broadcaster: broadcaster.NewGenericBroadcaster(nodes),
		monitor:     monitor.NewGenericTxMonitor(r).WithIntervals(g.opts.PollInterval, 0),
		chainID:     chainID,
	}, nil
}

// use must be called with mu held.
func (g *EthGateway) use(c *connection) {
	g.network = c.network
	g.reader = c.reader
	g.broadcaster = c.broadcaster
	g.monitor = c.monitor
	g.session.ChainID = c.chainID
}

func (g *EthGateway) Network() networks.Network {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.network
}

// Connect makes acc the session account.
func (g *EthGateway) Connect(acc *account.Account) {
	g.mu.Lock()
	g.account = acc
	g.session.Account = acc.Address()
	g.session.Connected = true
	s := g.session
	g.mu.Unlock()
	g.notifier.Publish(s)
}

// ConnectAddress starts a read-only session for addr. Submit refuses until
// Connect is called with a signer.
func (g *EthGateway) ConnectAddress(addr common.Address) {
	g.mu.Lock()
	g.account = nil
	g.session.Account = addr
	g.session.Connected = true
	s := g.session
	g.mu.Unlock()
	g.notifier.Publish(s)
}

func (g *EthGateway) Disconnect() {
	g.mu.Lock()
	g.account = nil
	g.session.Account = common.Address{}
	g.session.Connected = false
	s := g.session
	g.mu.Unlock()
	g.notifier.Publish(s)
}

func (g *EthGateway) Session() Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session
}

func (g *EthGateway) Subscribe() (<-chan Session, func()) {
	return g.notifier.Subscribe()
}

func (g *EthGateway) Read(ctx context.Context, contract common.Address, a *abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	g.mu.RLock()
	r := g.reader
	g.mu.RUnlock()
	return r.ReadContractWithABI(ctx, contract, a, method, args...)
}

func addGwei(v *big.Int, extra float64) *big.Int {
	if extra == 0 {
		return v
	}
	return new(big.Int).Add(v, vaultcommon.GweiToWei(extra))
}

func (g *EthGateway) gasSettings(ctx context.Context, r *reader.EthReader) (gasPrice, tip *big.Int, err error) {
	if g.opts.GasPrice > 0 {
		gasPrice = vaultcommon.GweiToWei(g.opts.GasPrice)
		if g.opts.ForceLegacy {
			return addGwei(gasPrice, g.opts.ExtraGasPrice), nil, nil
		}
		dynamic, err := r.CheckDynamicFeeTxAvailable(ctx)
		if err != nil {
			return nil, nil, err
		}
		if dynamic {
			if g.opts.TipGas > 0 {
				tip = vaultcommon.GweiToWei(g.opts.TipGas)
			} else if tip, err = r.GetSuggestedGasTipCap(ctx); err != nil {
				return nil, nil, err
			}
		}
	} else {
		gasPrice, tip, err = r.SuggestedGasSettings(ctx)
		if err != nil {
			return nil, nil, err
		}
		if g.opts.ForceLegacy {
			tip = nil
		} else if tip != nil && g.opts.TipGas > 0 {
			tip = vaultcommon.GweiToWei(g.opts.TipGas)
		}
	}
	gasPrice = addGwei(gasPrice, g.opts.ExtraGasPrice)
	if tip != nil {
		tip = addGwei(tip, g.opts.ExtraTipGas)
		if tip.Cmp(gasPrice) > 0 {
			tip = new(big.Int).Set(gasPrice)
		}
	}
	return gasPrice, tip, nil
}

func (g *EthGateway) Submit(ctx context.Context, contract common.Address, a *abi.ABI, method string, args ...interface{}) (common.Hash, error) {
	g.mu.RLock()
	acc, s, r, b, network := g.account, g.session, g.reader, g.broadcaster, g.network
	g.mu.RUnlock()
	if !s.Connected || acc == nil {
		return common.Hash{}, ErrNotConnected
	}

	data, err := a.Pack(method, args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("packing %s: %w", method, err)
	}

	gasLimit := g.opts.GasLimit
	if gasLimit == 0 {
		gasLimit, err = r.EstimateGas(ctx, s.Account, contract, nil, data)
		if err != nil {
			return common.Hash{}, fmt.Errorf("estimating gas for %s: %w", method, err)
		}
	}
	gasLimit += g.opts.ExtraGasLimit

	nonce, err := r.GetPendingNonce(ctx, s.Account)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting nonce: %w", err)
	}
	gasPrice, tip, err := g.gasSettings(ctx, r)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting gas price: %w", err)
	}

	txType := uint8(types.LegacyTxType)
	if tip != nil {
		txType = types.DynamicFeeTxType
	}
	tx := vaultcommon.BuildExactTx(txType, nonce, contract, nil, gasLimit, gasPrice, tip, data, s.ChainID)

	if g.opts.Confirm != nil {
		summary := TxSummary{
			From:     s.Account,
			To:       contract,
			Method:   method,
			Args:     args,
			Network:  network,
			ChainID:  s.ChainID,
			Nonce:    nonce,
			GasLimit: gasLimit,
			GasPrice: gasPrice,
			TipCap:   tip,
		}
		if !g.opts.Confirm(summary) {
			return common.Hash{}, ErrSigningDeclined
		}
	}

	signed, err := acc.SignTx(tx, new(big.Int).SetUint64(s.ChainID))
	if err != nil {
		return common.Hash{}, err
	}
	hash, broadcasted, err := b.BroadcastTx(ctx, signed)
	if !broadcasted {
		return common.Hash{}, fmt.Errorf("couldn't broadcast %s: %w", method, err)
	}
	g.log.Info().Str("method", method).Str("hash", hash.Hex()).Uint64("nonce", nonce).Msg("broadcasted")
	return hash, nil
}

func (g *EthGateway) AwaitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	g.mu.RLock()
	m := g.monitor
	g.mu.RUnlock()
	info := m.BlockingWait(ctx, hash)
	switch info.Status {
	case vaultcommon.TxStatusDone, vaultcommon.TxStatusReverted:
		return info.Receipt, nil
	case vaultcommon.TxStatusLost:
		return nil, ErrTxLost
	default:
		if info.Err != nil {
			return nil, info.Err
		}
		return nil, fmt.Errorf("waiting for %s ended with status %s", hash.Hex(), info.Status)
	}
}

// SwitchActiveChain moves the session to the registered network with
// chainID using that network's own nodes.
func (g *EthGateway) SwitchActiveChain(ctx context.Context, chainID uint64) error {
	network, err := networks.GetNetworkByID(chainID)
	if err != nil {
		return err
	}
	c, err := g.dial(ctx, network, networks.Nodes(network, ""))
	if err != nil {
		return err
	}
	if c.chainID != chainID {
		return fmt.Errorf("%w: asked for %d, got %d", ErrChainMismatch, chainID, c.chainID)
	}
	g.mu.Lock()
	g.use(c)
	s := g.session
	g.mu.Unlock()
	g.log.Info().Str("network", network.GetName()).Uint64("chain_id", c.chainID).Msg("switched chain")
	g.notifier.Publish(s)
	return nil
}
