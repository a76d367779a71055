// Package orchestrator drives the write transactions of the vault. Each
// kind of transaction has its own lifecycle. An action is validated
// against the session and the latest snapshot before anything reaches the
// gateway, and a confirmed tx re-reads exactly the fields it changed.
package orchestrator

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"

	"github.com/tranvictor/vaultctl/config"
	"github.com/tranvictor/vaultctl/gateway"
	"github.com/tranvictor/vaultctl/logger"
	"github.com/tranvictor/vaultctl/metrics"
	"github.com/tranvictor/vaultctl/snapshot"
	"github.com/tranvictor/vaultctl/vault"
)

const (
	switchSucceeded = "Successfully switched to Base network!"
	switchFailed    = "Failed to switch to Base network. Please switch manually in your wallet."
)

type Orchestrator struct {
	gw         gateway.Gateway
	facade     *vault.Facade
	cache      *snapshot.Cache
	notifier   Notifier
	indicators metrics.Indicators
	machines   map[Kind]*machine

	inputsMu sync.Mutex
	inputs   map[Kind]string

	now func() time.Time
	log zerolog.Logger
}

func New(gw gateway.Gateway, facade *vault.Facade, cache *snapshot.Cache, notifier Notifier, indicators metrics.Indicators) *Orchestrator {
	if indicators == nil {
		indicators = metrics.NoopIndicators{}
	}
	o := &Orchestrator{
		gw:         gw,
		facade:     facade,
		cache:      cache,
		notifier:   notifier,
		indicators: indicators,
		machines:   map[Kind]*machine{},
		inputs:     map[Kind]string{},
		now:        time.Now,
		log:        logger.GetForComponent("orchestrator"),
	}
	for _, k := range Kinds() {
		o.machines[k] = newMachine(k, func() time.Time { return o.now() })
	}
	return o
}

func (o *Orchestrator) Cache() *snapshot.Cache {
	return o.cache
}

func (o *Orchestrator) Session() gateway.Session {
	return o.gw.Session()
}

func (o *Orchestrator) SetInput(kind Kind, value string) {
	o.inputsMu.Lock()
	defer o.inputsMu.Unlock()
	o.inputs[kind] = value
}

func (o *Orchestrator) Input(kind Kind) string {
	o.inputsMu.Lock()
	defer o.inputsMu.Unlock()
	return o.inputs[kind]
}

func (o *Orchestrator) notify(kind Kind, level Level, msg string) {
	if o.notifier == nil {
		return
	}
	o.notifier.Notify(Notification{Kind: kind, Level: level, Message: msg})
}

func (o *Orchestrator) withInput(a Action) Action {
	if a.Amount == "" {
		a.Amount = o.Input(a.Kind)
	}
	return a
}

// Start validates a and submits it. It returns once the gateway accepted
// the tx. The channel yields the outcome after confirmation and is then
// closed. Validation and submission failures are returned directly and the
// kind is Idle again when Start returns.
func (o *Orchestrator) Start(ctx context.Context, a Action) (<-chan Result, error) {
	m, ok := o.machines[a.Kind]
	if !ok {
		return nil, &ValidationError{Kind: a.Kind, Err: fmt.Errorf("unknown action %q", a.Kind)}
	}
	a = o.withInput(a)

	var p plan
	tx, err := m.begin(a.Asset, func() error {
		var err error
		p, err = o.prepare(a, o.gw.Session(), o.cache.Snapshot())
		return err
	})
	if err != nil {
		verr := &ValidationError{Kind: a.Kind, Err: err}
		o.log.Debug().Str("kind", string(a.Kind)).Err(err).Msg("action refused")
		o.notify(a.Kind, LevelError, reason(verr))
		return nil, verr
	}

	log := o.log.With().Str("kind", string(a.Kind)).Str("tx_id", tx.ID.String()).Logger()
	log.Debug().Str("method", p.call.Method).Msg(Submitting.String())
	o.indicators.IncrementInFlight(string(a.Kind))
	o.notify(a.Kind, LevelProgress, p.progress)

	hash, err := o.gw.Submit(ctx, p.call.Contract, p.call.ABI, p.call.Method, p.call.Args...)
	if err != nil {
		serr := &SubmissionError{Kind: a.Kind, Err: err}
		o.fail(m, log, serr)
		return nil, serr
	}
	tx = m.submitted(hash)
	log.Debug().Str("hash", hash.Hex()).Msg(AwaitingConfirmation.String())

	ch := make(chan Result, 1)
	go func() {
		ch <- o.await(ctx, m, log, p, tx)
		close(ch)
	}()
	return ch, nil
}

// Execute is Start followed by waiting for the outcome.
func (o *Orchestrator) Execute(ctx context.Context, a Action) (PendingTransaction, error) {
	ch, err := o.Start(ctx, a)
	if err != nil {
		return PendingTransaction{}, err
	}
	r := <-ch
	return r.Tx, r.Err
}

func (o *Orchestrator) await(ctx context.Context, m *machine, log zerolog.Logger, p plan, tx PendingTransaction) Result {
	rcpt, err := o.gw.AwaitReceipt(ctx, tx.Hash)
	if err == nil && (rcpt == nil || rcpt.Status != types.ReceiptStatusSuccessful) {
		err = ErrReverted
	}
	if err != nil {
		cerr := &ConfirmationError{Kind: p.kind, Hash: tx.Hash, Err: err}
		return Result{Tx: o.fail(m, log, cerr), Err: cerr}
	}

	tx = m.confirmed()
	o.indicators.ObserveConfirmationLatency(string(p.kind), tx.ConfirmedAt.Sub(tx.SubmittedAt))
	o.SetInput(p.kind, "")
	keys := dependents(p.kind, p.asset.ID)
	o.cache.Invalidate(keys...)
	if err := o.cache.Refresh(ctx, keys...); err != nil {
		log.Warn().Err(err).Msg("re-reading fields after confirmation")
	}
	o.notify(p.kind, LevelSuccess, p.success)
	o.indicators.DecrementInFlight(string(p.kind))
	o.indicators.IncrementProcessed(string(p.kind), Confirmed.String())
	log.Debug().Str("hash", tx.Hash.Hex()).Msg(Confirmed.String())
	m.reset()
	return Result{Tx: tx}
}

func (o *Orchestrator) fail(m *machine, log zerolog.Logger, err error) PendingTransaction {
	tx := m.failed(err)
	log.Warn().Str("hash", tx.Hash.Hex()).Err(err).Msg(Failed.String())
	o.notify(tx.Kind, LevelError, fmt.Sprintf("%s failed: %s", tx.Kind.Title(), reason(err)))
	o.indicators.DecrementInFlight(string(tx.Kind))
	o.indicators.IncrementProcessed(string(tx.Kind), Failed.String())
	m.reset()
	return tx
}

// Enabled returns nil when a could be started right now, otherwise the
// ValidationError Start would return.
func (o *Orchestrator) Enabled(a Action) error {
	m, ok := o.machines[a.Kind]
	if !ok {
		return &ValidationError{Kind: a.Kind, Err: fmt.Errorf("unknown action %q", a.Kind)}
	}
	if m.inFlight() {
		return &ValidationError{Kind: a.Kind, Err: ErrInFlight}
	}
	if _, err := o.prepare(o.withInput(a), o.gw.Session(), o.cache.Snapshot()); err != nil {
		return &ValidationError{Kind: a.Kind, Err: err}
	}
	return nil
}

// NeedsApproval reports whether depositing amount of asset needs a larger
// allowance first.
func (o *Orchestrator) NeedsApproval(asset vault.AssetID, amount string) (bool, error) {
	desc, err := selectAsset(asset)
	if err != nil {
		return false, err
	}
	s := o.cache.Snapshot()
	v, err := amountOf(amount, desc, func() (*big.Int, error) {
		return required(s, snapshot.Key(snapshot.MaxDepositable))
	})
	if err != nil {
		return false, err
	}
	allowance, err := required(s, snapshot.AssetKey(snapshot.Allowance, desc.ID))
	if err != nil {
		return false, err
	}
	return allowance.Cmp(v) < 0, nil
}

// OwnerControlsVisible is true only when the connected account is known
// to be the vault owner.
func (o *Orchestrator) OwnerControlsVisible() bool {
	s := o.gw.Session()
	return s.Connected && requireOwner(o.cache.Snapshot(), s) == nil
}

func (o *Orchestrator) Status(kind Kind) Status {
	if m, ok := o.machines[kind]; ok {
		return m.status()
	}
	return Idle
}

// Last returns the most recent finished tx of kind.
func (o *Orchestrator) Last(kind Kind) (PendingTransaction, bool) {
	if m, ok := o.machines[kind]; ok {
		return m.lastTx()
	}
	return PendingTransaction{}, false
}

// SwitchNetwork asks the gateway to move to Base and re-reads the snapshot
// for the new chain.
func (o *Orchestrator) SwitchNetwork(ctx context.Context) error {
	if err := o.gw.SwitchActiveChain(ctx, config.TargetChainID); err != nil {
		o.log.Warn().Err(err).Msg("switching network")
		o.notify("", LevelError, switchFailed)
		return err
	}
	o.notify("", LevelSuccess, switchSucceeded)
	if err := o.cache.RefreshAll(ctx); err != nil {
		o.log.Warn().Err(err).Msg("refreshing after network switch")
	}
	return nil
}

// Refresh re-reads every field available to the session.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	return o.cache.RefreshAll(ctx)
}

// WatchSession re-reads the account fields whenever the session account
// changes, until ctx ends.
func (o *Orchestrator) WatchSession(ctx context.Context) {
	ch, stop := o.gw.Subscribe()
	defer stop()
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-ch:
			if !ok {
				return
			}
			if o.cache.SyncAccount() && s.Connected {
				if err := o.cache.Refresh(ctx, snapshot.AccountKeys()...); err != nil {
					o.log.Warn().Err(err).Msg("refreshing account fields")
				}
			}
		}
	}
}
