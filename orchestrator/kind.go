package orchestrator

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/tranvictor/vaultctl/vault"
)

// Kind is one of the write transactions vaultctl drives. Each kind has its
// own lifecycle, independent of the others.
type Kind string

const (
	Approval   Kind = "approval"
	Deposit    Kind = "deposit"
	Withdrawal Kind = "withdrawal"
	SetFee     Kind = "setFee"
	ClaimFees  Kind = "claimFees"
)

func Kinds() []Kind {
	return []Kind{Approval, Deposit, Withdrawal, SetFee, ClaimFees}
}

// Title is how failures of the kind are announced.
func (k Kind) Title() string {
	switch k {
	case Approval:
		return "Approval"
	case Deposit:
		return "Deposit"
	case Withdrawal:
		return "Withdrawal"
	case SetFee:
		return "Fee update"
	case ClaimFees:
		return "Fee claim"
	}
	return string(k)
}

type Status uint8

const (
	Idle Status = iota
	Submitting
	AwaitingConfirmation
	Confirmed
	Failed
)

func (s Status) String() string {
	switch s {
	case Submitting:
		return "submitting"
	case AwaitingConfirmation:
		return "awaiting confirmation"
	case Confirmed:
		return "confirmed"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Action is what the user asks for. Amount is in asset units for deposit
// and withdrawal ("max" takes the whole allowed amount) and a percentage
// for setFee. An empty Amount uses the kind's stored input.
type Action struct {
	Kind   Kind
	Asset  vault.AssetID
	Amount string
}

// PendingTransaction is the one in flight transaction of a kind, or the
// last one that finished.
type PendingTransaction struct {
	ID          uuid.UUID
	Kind        Kind
	Asset       vault.AssetID
	Hash        common.Hash
	Status      Status
	Err         error
	SubmittedAt time.Time
	ConfirmedAt time.Time
}

// Result resolves the channel Start returns.
type Result struct {
	Tx  PendingTransaction
	Err error
}
