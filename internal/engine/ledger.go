package engine

import (
	"github.com/tallyhq/tally/internal/domain"
)

// Ledger remembers every accepted deposit and withdrawal, keyed by
// transaction id, together with its dispute state. Entries are never
// deleted during a run; a charged-back entry stays terminal forever.
type Ledger struct {
	entries map[uint32]*domain.LedgerEntry
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{entries: make(map[uint32]*domain.LedgerEntry)}
}

// RecordNew inserts a Clean entry for an accepted deposit or withdrawal.
// A transaction id already tracked is rejected, never overwritten: silently
// replacing the original would corrupt any later dispute against it.
func (l *Ledger) RecordNew(txID uint32, clientID uint16, kind domain.Kind, amount domain.Amount) error {
	if _, exists := l.entries[txID]; exists {
		return domain.ErrDuplicateTransaction
	}
	l.entries[txID] = &domain.LedgerEntry{
		TxID:     txID,
		ClientID: clientID,
		Kind:     kind,
		Amount:   amount,
		State:    domain.StateClean,
	}
	return nil
}

// lookup resolves a dispute-lifecycle reference against the ledger.
// The entry must exist and belong to the claiming client.
func (l *Ledger) lookup(txID uint32, clientID uint16) (*domain.LedgerEntry, error) {
	entry, ok := l.entries[txID]
	if !ok {
		return nil, domain.ErrUnknownTransaction
	}
	if entry.ClientID != clientID {
		return nil, domain.ErrClientMismatch
	}
	return entry, nil
}

// BeginDispute transitions a Clean entry to Disputed and returns its amount.
// An entry that was disputed and resolved may be disputed again; a charged
// back entry may not.
func (l *Ledger) BeginDispute(txID uint32, clientID uint16) (domain.Amount, error) {
	entry, err := l.lookup(txID, clientID)
	if err != nil {
		return domain.ZeroAmount, err
	}
	if entry.State != domain.StateClean {
		return domain.ZeroAmount, domain.ErrNotDisputable
	}
	entry.State = domain.StateDisputed
	return entry.Amount, nil
}

// ResolveDispute transitions a Disputed entry back to Clean and returns its
// amount.
func (l *Ledger) ResolveDispute(txID uint32, clientID uint16) (domain.Amount, error) {
	entry, err := l.lookup(txID, clientID)
	if err != nil {
		return domain.ZeroAmount, err
	}
	if entry.State != domain.StateDisputed {
		return domain.ZeroAmount, domain.ErrNotDisputed
	}
	entry.State = domain.StateClean
	return entry.Amount, nil
}

// Chargeback transitions a Disputed entry to the terminal ChargedBack state
// and returns its amount.
func (l *Ledger) Chargeback(txID uint32, clientID uint16) (domain.Amount, error) {
	entry, err := l.lookup(txID, clientID)
	if err != nil {
		return domain.ZeroAmount, err
	}
	if entry.State != domain.StateDisputed {
		return domain.ZeroAmount, domain.ErrNotDisputed
	}
	entry.State = domain.StateChargedBack
	return entry.Amount, nil
}

// Entry returns a copy of the tracked entry for txID, if any.
func (l *Ledger) Entry(txID uint32) (domain.LedgerEntry, bool) {
	entry, ok := l.entries[txID]
	if !ok {
		return domain.LedgerEntry{}, false
	}
	return *entry, true
}

// Len returns the number of tracked entries.
func (l *Ledger) Len() int { return len(l.entries) }
