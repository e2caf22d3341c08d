package engine

import (
	"errors"
	"testing"

	"github.com/tallyhq/tally/internal/domain"
)

func TestLedger_RecordNew_Duplicate(t *testing.T) {
	l := NewLedger()

	if err := l.RecordNew(1, 1, domain.KindDeposit, domain.MustAmount("10")); err != nil {
		t.Fatalf("RecordNew() error: %v", err)
	}
	err := l.RecordNew(1, 1, domain.KindDeposit, domain.MustAmount("3"))
	if !errors.Is(err, domain.ErrDuplicateTransaction) {
		t.Fatalf("error = %v, want ErrDuplicateTransaction", err)
	}

	// The original entry survives untouched.
	entry, ok := l.Entry(1)
	if !ok {
		t.Fatal("entry 1 missing")
	}
	if !entry.Amount.Equal(domain.MustAmount("10")) {
		t.Errorf("amount = %s, want 10.0000", entry.Amount)
	}
}

func TestLedger_RecordNew_DuplicateAcrossClients(t *testing.T) {
	l := NewLedger()
	l.RecordNew(9, 1, domain.KindDeposit, domain.MustAmount("1"))

	err := l.RecordNew(9, 2, domain.KindDeposit, domain.MustAmount("1"))
	if !errors.Is(err, domain.ErrDuplicateTransaction) {
		t.Fatalf("error = %v, want ErrDuplicateTransaction", err)
	}
}

func TestLedger_DisputeLifecycle(t *testing.T) {
	l := NewLedger()
	l.RecordNew(1, 1, domain.KindDeposit, domain.MustAmount("10"))

	// Resolve before any dispute is rejected.
	if _, err := l.ResolveDispute(1, 1); !errors.Is(err, domain.ErrNotDisputed) {
		t.Fatalf("resolve clean: error = %v, want ErrNotDisputed", err)
	}
	if _, err := l.Chargeback(1, 1); !errors.Is(err, domain.ErrNotDisputed) {
		t.Fatalf("chargeback clean: error = %v, want ErrNotDisputed", err)
	}

	amt, err := l.BeginDispute(1, 1)
	if err != nil {
		t.Fatalf("BeginDispute() error: %v", err)
	}
	if !amt.Equal(domain.MustAmount("10")) {
		t.Errorf("disputed amount = %s, want 10.0000", amt)
	}

	// Double dispute is rejected.
	if _, err := l.BeginDispute(1, 1); !errors.Is(err, domain.ErrNotDisputable) {
		t.Fatalf("second dispute: error = %v, want ErrNotDisputable", err)
	}

	if _, err := l.ResolveDispute(1, 1); err != nil {
		t.Fatalf("ResolveDispute() error: %v", err)
	}

	// Clean again: a resolved entry may be re-disputed.
	if _, err := l.BeginDispute(1, 1); err != nil {
		t.Fatalf("re-dispute after resolve: error = %v", err)
	}

	if _, err := l.Chargeback(1, 1); err != nil {
		t.Fatalf("Chargeback() error: %v", err)
	}

	// ChargedBack is terminal.
	if _, err := l.BeginDispute(1, 1); !errors.Is(err, domain.ErrNotDisputable) {
		t.Errorf("dispute after chargeback: error = %v, want ErrNotDisputable", err)
	}
	if _, err := l.ResolveDispute(1, 1); !errors.Is(err, domain.ErrNotDisputed) {
		t.Errorf("resolve after chargeback: error = %v, want ErrNotDisputed", err)
	}
	if _, err := l.Chargeback(1, 1); !errors.Is(err, domain.ErrNotDisputed) {
		t.Errorf("double chargeback: error = %v, want ErrNotDisputed", err)
	}
}

func TestLedger_UnknownAndMismatch(t *testing.T) {
	l := NewLedger()
	l.RecordNew(1, 1, domain.KindDeposit, domain.MustAmount("10"))

	if _, err := l.BeginDispute(99, 1); !errors.Is(err, domain.ErrUnknownTransaction) {
		t.Errorf("unknown tx: error = %v, want ErrUnknownTransaction", err)
	}
	if _, err := l.BeginDispute(1, 2); !errors.Is(err, domain.ErrClientMismatch) {
		t.Errorf("wrong client: error = %v, want ErrClientMismatch", err)
	}

	// The rejected references left the entry Clean.
	entry, _ := l.Entry(1)
	if entry.State != domain.StateClean {
		t.Errorf("state = %s, want clean", entry.State)
	}
}

func TestLedger_EntryReturnsCopy(t *testing.T) {
	l := NewLedger()
	l.RecordNew(1, 1, domain.KindDeposit, domain.MustAmount("10"))

	entry, _ := l.Entry(1)
	entry.State = domain.StateChargedBack

	got, _ := l.Entry(1)
	if got.State != domain.StateClean {
		t.Error("mutating the returned entry must not affect the ledger")
	}
}
