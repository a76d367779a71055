package orchestrator

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Reasons an action is refused before anything is submitted.
var (
	ErrNotConnected          = errors.New("wallet not connected")
	ErrWrongNetwork          = errors.New("wrong network, switch to Base (8453)")
	ErrNoAsset               = errors.New("no asset selected")
	ErrInvalidAmount         = errors.New("enter a valid amount")
	ErrExceedsMaxDeposit     = errors.New("amount exceeds the maximum deposit")
	ErrInsufficientAllowance = errors.New("insufficient allowance, approve first")
	ErrExceedsMaxWithdraw    = errors.New("amount exceeds the maximum withdrawal")
	ErrNoShares              = errors.New("no vault shares to withdraw")
	ErrNotOwner              = errors.New("only the vault owner can do this")
	ErrFeeOutOfRange         = errors.New("fee must be between 0 and 100")
	ErrNothingToClaim        = errors.New("no fees to claim")
	ErrFieldUnavailable      = errors.New("required value is not loaded")
	ErrInFlight              = errors.New("a transaction of this kind is already in progress")
)

// ErrReverted is the cause of a ConfirmationError for a mined tx with
// status 0.
var ErrReverted = errors.New("transaction reverted")

type ValidationError struct {
	Kind Kind
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s refused: %s", e.Kind, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// SubmissionError means the gateway did not accept the tx.
type SubmissionError struct {
	Kind Kind
	Err  error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submitting %s: %s", e.Kind, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// ConfirmationError means the tx was submitted but did not succeed.
type ConfirmationError struct {
	Kind Kind
	Hash common.Hash
	Err  error
}

func (e *ConfirmationError) Error() string {
	return fmt.Sprintf("%s tx %s: %s", e.Kind, e.Hash.Hex(), e.Err)
}

func (e *ConfirmationError) Unwrap() error {
	return e.Err
}

// reason is the user facing text of err, without the wrapping added by
// this package.
func reason(err error) string {
	var (
		v *ValidationError
		s *SubmissionError
		c *ConfirmationError
	)
	switch {
	case errors.As(err, &v):
		err = v.Err
	case errors.As(err, &s):
		err = s.Err
	case errors.As(err, &c):
		err = c.Err
	}
	if err == nil || err.Error() == "" {
		return "Transaction rejected"
	}
	return err.Error()
}
