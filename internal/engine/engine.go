// Package engine implements the transaction-processing state machine: the
// rules that decide whether a record is valid given everything previously
// applied, how it mutates per-client balances, and how disputes move a prior
// transaction through a lifecycle that can end in a chargeback freezing the
// account.
//
// The engine is strictly sequential: records are applied one at a time in
// arrival order, and correctness (duplicate-id detection, dispute-state
// transitions) depends on that total order. Callers that accept records from
// concurrent sources must serialize before calling Process.
package engine

import (
	"github.com/tallyhq/tally/internal/domain"
)

// Outcome is the per-record result surfaced to the caller. Err is nil when
// the record was applied; otherwise it wraps one of the domain sentinel
// errors. A rejection never halts processing of subsequent records.
type Outcome struct {
	Record  domain.Record
	Applied bool
	Err     error
}

// Reason returns the stable rejection code, or "" when applied.
func (o Outcome) Reason() string { return domain.Reason(o.Err) }

// Engine owns the ledger and account store for one run and applies records
// against them. State is explicitly owned, never ambient, so the state
// machine is trivially testable in isolation.
type Engine struct {
	ledger   *Ledger
	accounts *AccountStore
}

// New returns an engine with empty state.
func New() *Engine {
	return &Engine{
		ledger:   NewLedger(),
		accounts: NewAccountStore(),
	}
}

// Accounts exposes the account store for reporting.
func (e *Engine) Accounts() *AccountStore { return e.accounts }

// Ledger exposes the transaction ledger for inspection.
func (e *Engine) Ledger() *Ledger { return e.ledger }

// Process applies one record and reports the outcome. Malformed records are
// rejected before reaching the state machine. Replaying a rejected record
// yields the same rejection and no state change.
func (e *Engine) Process(rec domain.Record) Outcome {
	if err := rec.Validate(); err != nil {
		return Outcome{Record: rec, Err: err}
	}

	var err error
	switch rec.Kind {
	case domain.KindDeposit:
		err = e.deposit(rec)
	case domain.KindWithdrawal:
		err = e.withdraw(rec)
	case domain.KindDispute:
		err = e.dispute(rec)
	case domain.KindResolve:
		err = e.resolve(rec)
	case domain.KindChargeback:
		err = e.chargeback(rec)
	}

	return Outcome{Record: rec, Applied: err == nil, Err: err}
}

func (e *Engine) deposit(rec domain.Record) error {
	acct := e.accounts.GetOrCreate(rec.ClientID)
	if acct.Locked {
		return domain.ErrAccountLocked
	}
	if err := e.ledger.RecordNew(rec.TxID, rec.ClientID, rec.Kind, rec.Amount); err != nil {
		return err
	}
	acct.Available = acct.Available.Add(rec.Amount)
	return nil
}

func (e *Engine) withdraw(rec domain.Record) error {
	acct := e.accounts.GetOrCreate(rec.ClientID)
	if acct.Locked {
		return domain.ErrAccountLocked
	}
	if rec.Amount.GreaterThan(acct.Available) {
		return domain.ErrInsufficientFunds
	}
	if err := e.ledger.RecordNew(rec.TxID, rec.ClientID, rec.Kind, rec.Amount); err != nil {
		return err
	}
	acct.Available = acct.Available.Sub(rec.Amount)
	return nil
}

func (e *Engine) dispute(rec domain.Record) error {
	acct := e.accounts.GetOrCreate(rec.ClientID)
	if acct.Locked {
		return domain.ErrAccountLocked
	}

	// A dispute moves the original amount from available to held, so it
	// needs the funds still present. Checked before the ledger transition
	// commits; available never goes below zero.
	if entry, ok := e.ledger.Entry(rec.TxID); ok &&
		entry.ClientID == rec.ClientID &&
		entry.State == domain.StateClean &&
		entry.Amount.GreaterThan(acct.Available) {
		return domain.ErrInsufficientFunds
	}

	amount, err := e.ledger.BeginDispute(rec.TxID, rec.ClientID)
	if err != nil {
		return err
	}
	acct.Available = acct.Available.Sub(amount)
	acct.Held = acct.Held.Add(amount)
	return nil
}

func (e *Engine) resolve(rec domain.Record) error {
	// A locked account may still close out disputes opened before the
	// freeze; resolve moves no new funds into play.
	amount, err := e.ledger.ResolveDispute(rec.TxID, rec.ClientID)
	if err != nil {
		return err
	}
	acct := e.accounts.GetOrCreate(rec.ClientID)
	acct.Held = acct.Held.Sub(amount)
	acct.Available = acct.Available.Add(amount)
	return nil
}

func (e *Engine) chargeback(rec domain.Record) error {
	amount, err := e.ledger.Chargeback(rec.TxID, rec.ClientID)
	if err != nil {
		return err
	}
	acct := e.accounts.GetOrCreate(rec.ClientID)
	acct.Held = acct.Held.Sub(amount)
	acct.Locked = true
	return nil
}
