package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Every per-record failure is recoverable: the engine reports the reason and
// moves on to the next record. None of these aborts a run.

var (
	// ErrMalformedRecord covers the wrong field combination for a record
	// kind, an unparsable amount, excess decimal precision, and
	// non-positive deposit/withdrawal amounts.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrDuplicateTransaction means the transaction id is already tracked
	// by the ledger; the original entry is never overwritten.
	ErrDuplicateTransaction = errors.New("duplicate transaction id")

	// ErrInsufficientFunds means the operation would push available funds
	// below zero.
	ErrInsufficientFunds = errors.New("insufficient available funds")

	// ErrAccountLocked rejects funds-moving and dispute-opening records
	// against an account frozen by a chargeback.
	ErrAccountLocked = errors.New("account locked")

	// ErrUnknownTransaction means a dispute/resolve/chargeback references
	// a transaction id with no ledger entry.
	ErrUnknownTransaction = errors.New("unknown transaction id")

	// ErrClientMismatch means the referenced ledger entry belongs to a
	// different client than the record claims.
	ErrClientMismatch = errors.New("client does not own transaction")

	// ErrNotDisputable means the entry is not Clean (already disputed, or
	// terminally charged back).
	ErrNotDisputable = errors.New("transaction cannot be disputed")

	// ErrNotDisputed means a resolve/chargeback targeted an entry that has
	// no open dispute.
	ErrNotDisputed = errors.New("transaction is not under dispute")
)

// Reason maps a rejection error to a stable snake_case code for diagnostics,
// metrics labels, and the run journal. Unrecognized errors map to "internal".
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedRecord):
		return "malformed_record"
	case errors.Is(err, ErrDuplicateTransaction):
		return "duplicate_transaction"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrAccountLocked):
		return "account_locked"
	case errors.Is(err, ErrUnknownTransaction):
		return "unknown_transaction"
	case errors.Is(err, ErrClientMismatch):
		return "client_mismatch"
	case errors.Is(err, ErrNotDisputable):
		return "not_disputable"
	case errors.Is(err, ErrNotDisputed):
		return "not_disputed"
	default:
		return "internal"
	}
}
