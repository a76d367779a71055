package orchestrator

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/tranvictor/vaultctl/vault"
)

// machine is the lifecycle of one kind:
//
//	Idle -> Submitting -> AwaitingConfirmation -> Confirmed | Failed -> Idle
//
// Submitting can also go straight to Failed.
type machine struct {
	kind Kind

	mu      sync.Mutex
	current *PendingTransaction
	last    *PendingTransaction
	now     func() time.Time
}

func newMachine(kind Kind, now func() time.Time) *machine {
	return &machine{kind: kind, now: now}
}

// begin runs validate and leaves Idle only when it passes. Both happen
// under the machine lock so no other start can slip in between.
func (m *machine) begin(asset vault.AssetID, validate func() error) (PendingTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		return PendingTransaction{}, ErrInFlight
	}
	if err := validate(); err != nil {
		return PendingTransaction{}, err
	}
	m.current = &PendingTransaction{
		ID:     uuid.New(),
		Kind:   m.kind,
		Asset:  asset,
		Status: Submitting,
	}
	return *m.current, nil
}

func (m *machine) submitted(hash common.Hash) PendingTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.Hash = hash
	m.current.Status = AwaitingConfirmation
	m.current.SubmittedAt = m.now()
	return *m.current
}

func (m *machine) confirmed() PendingTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.Status = Confirmed
	m.current.ConfirmedAt = m.now()
	return *m.current
}

func (m *machine) failed(err error) PendingTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.Status = Failed
	m.current.Err = err
	return *m.current
}

// reset records the finished tx and returns to Idle.
func (m *machine) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = m.current
	m.current = nil
}

func (m *machine) status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Idle
	}
	return m.current.Status
}

func (m *machine) lastTx() (PendingTransaction, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		return PendingTransaction{}, false
	}
	return *m.last, true
}

func (m *machine) inFlight() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}
