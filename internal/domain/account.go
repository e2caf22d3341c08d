package domain

// DisputeState is the lifecycle position of a ledger entry.
type DisputeState string

const (
	// StateClean entries may be disputed (again, after a resolve).
	StateClean DisputeState = "clean"
	// StateDisputed entries may be resolved or charged back.
	StateDisputed DisputeState = "disputed"
	// StateChargedBack is terminal.
	StateChargedBack DisputeState = "charged_back"
)

// LedgerEntry is the remembered fact of an accepted deposit or withdrawal,
// carrying its current dispute state. Entries are never deleted.
type LedgerEntry struct {
	TxID     uint32
	ClientID uint16
	Kind     Kind
	Amount   Amount
	State    DisputeState
}

// Account is the per-client balance state. Total is derived, never stored,
// so available+held can never drift apart from it.
type Account struct {
	ClientID  uint16
	Available Amount
	Held      Amount
	Locked    bool
}

// Total returns available + held.
func (a *Account) Total() Amount {
	return a.Available.Add(a.Held)
}

// Snapshot is the reportable view of an account at a point in time.
type Snapshot struct {
	ClientID  uint16 `json:"client"`
	Available Amount `json:"available"`
	Held      Amount `json:"held"`
	Total     Amount `json:"total"`
	Locked    bool   `json:"locked"`
}

// Snapshot captures the account's current reportable state.
func (a *Account) Snapshot() Snapshot {
	return Snapshot{
		ClientID:  a.ClientID,
		Available: a.Available,
		Held:      a.Held,
		Total:     a.Total(),
		Locked:    a.Locked,
	}
}
