package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveOutcome(t *testing.T) {
	beforeKind := testutil.ToFloat64(RecordsProcessed.WithLabelValues("deposit"))
	beforeReason := testutil.ToFloat64(RecordsRejected.WithLabelValues("insufficient_funds"))

	ObserveOutcome("deposit", true, "")
	ObserveOutcome("deposit", false, "insufficient_funds")

	if got := testutil.ToFloat64(RecordsProcessed.WithLabelValues("deposit")); got != beforeKind+2 {
		t.Errorf("records_total{deposit} = %v, want %v", got, beforeKind+2)
	}
	if got := testutil.ToFloat64(RecordsRejected.WithLabelValues("insufficient_funds")); got != beforeReason+1 {
		t.Errorf("rejections_total{insufficient_funds} = %v, want %v", got, beforeReason+1)
	}
}

func TestGauges(t *testing.T) {
	AccountsOpen.Set(3)
	if got := testutil.ToFloat64(AccountsOpen); got != 3 {
		t.Errorf("accounts gauge = %v, want 3", got)
	}

	before := testutil.ToFloat64(AccountsLocked)
	AccountsLocked.Inc()
	if got := testutil.ToFloat64(AccountsLocked); got != before+1 {
		t.Errorf("accounts_locked_total = %v, want %v", got, before+1)
	}
}
