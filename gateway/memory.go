package gateway

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// ReadHandler answers a view call. Outputs must use the Go types the ABI
// decodes to (*big.Int for uint256, common.Address for address).
type ReadHandler func(args []interface{}) ([]interface{}, error)

// WriteHandler applies a mined call to the fake contract state. Returning
// an error makes the tx revert.
type WriteHandler func(from common.Address, args []interface{}) error

// SubmittedCall records one accepted Submit.
type SubmittedCall struct {
	Hash     common.Hash
	From     common.Address
	Contract common.Address
	Method   string
	Args     []interface{}
}

// ErrReverted is what fake write handlers return to revert.
var ErrReverted = errors.New("execution reverted")

type methodKey struct {
	contract common.Address
	method   string
}

type pendingTx struct {
	call  SubmittedCall
	done  chan struct{}
	rcpt  *types.Receipt
	err   error
	mined bool
}

// MemoryGateway is an in-process Gateway. Contract state lives in the
// handlers registered on it. Calls are packed and unpacked through their
// ABI so argument and output types are checked like a node would.
//
// With AutoMine set every submitted tx is mined right away. Otherwise the
// caller settles it with Mine or FailReceipt.
type MemoryGateway struct {
	mu         sync.Mutex
	session    Session
	reads      map[methodKey]ReadHandler
	readErrs   map[methodKey]error
	writes     map[methodKey]WriteHandler
	txs        map[common.Hash]*pendingTx
	order      []common.Hash
	submitErrs []error
	switchErr  error
	chains     map[uint64]bool
	counter    uint64
	notifier   *SessionNotifier

	AutoMine bool
}

func NewMemoryGateway(chainID uint64) *MemoryGateway {
	return &MemoryGateway{
		session:  Session{ChainID: chainID},
		reads:    map[methodKey]ReadHandler{},
		readErrs: map[methodKey]error{},
		writes:   map[methodKey]WriteHandler{},
		txs:      map[common.Hash]*pendingTx{},
		chains:   map[uint64]bool{chainID: true},
		notifier: NewSessionNotifier(),
		AutoMine: true,
	}
}

func (m *MemoryGateway) HandleRead(contract common.Address, method string, h ReadHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads[methodKey{contract, method}] = h
}

// FailRead makes every read of method fail with err until cleared with a
// nil err.
func (m *MemoryGateway) FailRead(contract common.Address, method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.readErrs, methodKey{contract, method})
		return
	}
	m.readErrs[methodKey{contract, method}] = err
}

func (m *MemoryGateway) HandleWrite(contract common.Address, method string, h WriteHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes[methodKey{contract, method}] = h
}

// FailNextSubmit queues err for the next Submit.
func (m *MemoryGateway) FailNextSubmit(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitErrs = append(m.submitErrs, err)
}

// AddChain lets SwitchActiveChain move to chainID.
func (m *MemoryGateway) AddChain(chainID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chains[chainID] = true
}

func (m *MemoryGateway) FailSwitch(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.switchErr = err
}

func (m *MemoryGateway) Connect(acct common.Address) {
	m.setSession(func(s *Session) {
		s.Account = acct
		s.Connected = true
	})
}

func (m *MemoryGateway) Disconnect() {
	m.setSession(func(s *Session) {
		*s = Session{ChainID: s.ChainID}
	})
}

// SetChain moves the session without any check, like a wallet switching
// chains on its own.
func (m *MemoryGateway) SetChain(chainID uint64) {
	m.setSession(func(s *Session) { s.ChainID = chainID })
}

func (m *MemoryGateway) setSession(f func(*Session)) {
	m.mu.Lock()
	f(&m.session)
	s := m.session
	m.mu.Unlock()
	m.notifier.Publish(s)
}

func (m *MemoryGateway) Session() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

func (m *MemoryGateway) Subscribe() (<-chan Session, func()) {
	return m.notifier.Subscribe()
}

func (m *MemoryGateway) Read(ctx context.Context, contract common.Address, a *abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	if _, err := a.Pack(method, args...); err != nil {
		return nil, fmt.Errorf("packing %s: %w", method, err)
	}
	m.mu.Lock()
	key := methodKey{contract, method}
	h, ok := m.reads[key]
	rerr := m.readErrs[key]
	m.mu.Unlock()
	if rerr != nil {
		return nil, rerr
	}
	if !ok {
		return nil, fmt.Errorf("%s on %s: execution reverted", method, contract.Hex())
	}
	out, err := h(args)
	if err != nil {
		return nil, err
	}
	data, err := a.Methods[method].Outputs.Pack(out...)
	if err != nil {
		return nil, fmt.Errorf("handler for %s returned bad outputs: %w", method, err)
	}
	return a.Unpack(method, data)
}

func (m *MemoryGateway) Submit(ctx context.Context, contract common.Address, a *abi.ABI, method string, args ...interface{}) (common.Hash, error) {
	if _, err := a.Pack(method, args...); err != nil {
		return common.Hash{}, fmt.Errorf("packing %s: %w", method, err)
	}
	m.mu.Lock()
	if len(m.submitErrs) > 0 {
		err := m.submitErrs[0]
		m.submitErrs = m.submitErrs[1:]
		m.mu.Unlock()
		return common.Hash{}, err
	}
	if !m.session.Connected {
		m.mu.Unlock()
		return common.Hash{}, ErrNotConnected
	}
	m.counter++
	var seed [8]byte
	binary.BigEndian.PutUint64(seed[:], m.counter)
	hash := crypto.Keccak256Hash([]byte(method), seed[:])
	p := &pendingTx{
		call: SubmittedCall{
			Hash:     hash,
			From:     m.session.Account,
			Contract: contract,
			Method:   method,
			Args:     args,
		},
		done: make(chan struct{}),
	}
	m.txs[hash] = p
	m.order = append(m.order, hash)
	autoMine := m.AutoMine
	m.mu.Unlock()

	if autoMine {
		m.Mine(hash)
	}
	return hash, nil
}

// Mine executes the write handler of hash and settles its receipt. A
// missing handler or a handler error yields a reverted receipt.
func (m *MemoryGateway) Mine(hash common.Hash) {
	m.mu.Lock()
	p, ok := m.txs[hash]
	if !ok || p.mined {
		m.mu.Unlock()
		return
	}
	h, hasHandler := m.writes[methodKey{p.call.Contract, p.call.Method}]
	m.mu.Unlock()

	status := types.ReceiptStatusSuccessful
	if !hasHandler || h(p.call.From, p.call.Args) != nil {
		status = types.ReceiptStatusFailed
	}
	m.settle(hash, &types.Receipt{
		Status:      status,
		TxHash:      hash,
		BlockNumber: big.NewInt(int64(len(m.Submits()))),
	}, nil)
}

// FailReceipt makes waiting on hash fail with err, as if the node could not
// tell what happened to it.
func (m *MemoryGateway) FailReceipt(hash common.Hash, err error) {
	m.settle(hash, nil, err)
}

func (m *MemoryGateway) settle(hash common.Hash, rcpt *types.Receipt, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.txs[hash]
	if !ok || p.mined {
		return
	}
	p.mined = true
	p.rcpt = rcpt
	p.err = err
	close(p.done)
}

func (m *MemoryGateway) AwaitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	m.mu.Lock()
	p, ok := m.txs[hash]
	m.mu.Unlock()
	if !ok {
		return nil, ErrTxLost
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.done:
		return p.rcpt, p.err
	}
}

func (m *MemoryGateway) SwitchActiveChain(ctx context.Context, chainID uint64) error {
	m.mu.Lock()
	if m.switchErr != nil {
		err := m.switchErr
		m.mu.Unlock()
		return err
	}
	known := m.chains[chainID]
	m.mu.Unlock()
	if !known {
		return fmt.Errorf("chain %d is not available", chainID)
	}
	m.SetChain(chainID)
	return nil
}

// Submits lists accepted submissions in order.
func (m *MemoryGateway) Submits() []SubmittedCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SubmittedCall, 0, len(m.order))
	for _, h := range m.order {
		out = append(out, m.txs[h].call)
	}
	return out
}

// LastSubmit returns the most recent submission of method.
func (m *MemoryGateway) LastSubmit(method string) (SubmittedCall, bool) {
	calls := m.Submits()
	for i := len(calls) - 1; i >= 0; i-- {
		if strings.EqualFold(calls[i].Method, method) {
			return calls[i], true
		}
	}
	return SubmittedCall{}, false
}
