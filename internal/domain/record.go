// Package domain contains the pure business types of the payments engine:
// exact monetary amounts, transaction records, ledger entries, and accounts.
// It imports no infrastructure.
package domain

import "fmt"

// Kind is the closed set of transaction record kinds.
type Kind string

const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
	KindDispute    Kind = "dispute"
	KindResolve    Kind = "resolve"
	KindChargeback Kind = "chargeback"
)

// Valid reports whether k is one of the five known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindDeposit, KindWithdrawal, KindDispute, KindResolve, KindChargeback:
		return true
	}
	return false
}

// MovesFunds reports whether the kind carries its own amount.
// Dispute, resolve and chargeback reference a prior transaction instead.
func (k Kind) MovesFunds() bool {
	return k == KindDeposit || k == KindWithdrawal
}

// Record is one immutable input event. Amount is only meaningful when
// HasAmount is set; Validate enforces the field combination per kind.
type Record struct {
	Kind      Kind
	ClientID  uint16
	TxID      uint32
	Amount    Amount
	HasAmount bool
}

// Validate checks the field combination before the record reaches the state
// machine. Deposits and withdrawals must carry a strictly positive amount;
// dispute, resolve and chargeback must not carry one.
func (r Record) Validate() error {
	if !r.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrMalformedRecord, string(r.Kind))
	}
	if r.Kind.MovesFunds() {
		if !r.HasAmount {
			return fmt.Errorf("%w: %s requires an amount", ErrMalformedRecord, r.Kind)
		}
		if !r.Amount.IsPositive() {
			return fmt.Errorf("%w: %s amount must be positive, got %s", ErrMalformedRecord, r.Kind, r.Amount)
		}
		return nil
	}
	if r.HasAmount {
		return fmt.Errorf("%w: %s must not carry an amount", ErrMalformedRecord, r.Kind)
	}
	return nil
}
