package cli

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/tallyhq/tally/internal/csvio"
	"github.com/tallyhq/tally/internal/domain"
	"github.com/tallyhq/tally/internal/engine"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcessStream(t *testing.T) {
	input := `type,client,tx,amount
deposit,    1,      1,  1.0
deposit,    2,      2,  2.0
deposit,    1,      3,  2.0
withdrawal, 1,      4,  1.5
withdrawal, 2,      5,  3.0
`
	e := engine.New()
	summary, err := processStream(e, csvio.NewReader(strings.NewReader(input)), discardLogger(), nil, "")
	if err != nil {
		t.Fatalf("processStream() error: %v", err)
	}
	if summary.applied != 4 || summary.rejected != 1 {
		t.Errorf("summary = %+v, want 4 applied / 1 rejected", summary)
	}

	acct, _ := e.Accounts().Get(1)
	if !acct.Available.Equal(domain.MustAmount("1.5")) {
		t.Errorf("client 1 available = %s, want 1.5000", acct.Available)
	}
	acct, _ = e.Accounts().Get(2)
	if !acct.Available.Equal(domain.MustAmount("2")) {
		t.Errorf("client 2 available = %s, want 2.0000", acct.Available)
	}
}

func TestProcessStream_MalformedRowsDoNotAbort(t *testing.T) {
	input := `type,client,tx,amount
deposit,1,1,5.0
garbage row that is not a record
deposit,1,2,oops
withdrawal,1,3,2.0
`
	e := engine.New()
	summary, err := processStream(e, csvio.NewReader(strings.NewReader(input)), discardLogger(), nil, "")
	if err != nil {
		t.Fatalf("processStream() error: %v", err)
	}
	if summary.applied != 2 {
		t.Errorf("applied = %d, want 2", summary.applied)
	}
	if summary.rejected != 2 {
		t.Errorf("rejected = %d, want 2", summary.rejected)
	}

	acct, _ := e.Accounts().Get(1)
	if !acct.Available.Equal(domain.MustAmount("3")) {
		t.Errorf("available = %s, want 3.0000", acct.Available)
	}
}

func TestProcessStream_DisputeFlow(t *testing.T) {
	input := `type,client,tx,amount
deposit,1,1,10.0
dispute,1,1,
chargeback,1,1,
deposit,1,2,5.0
`
	e := engine.New()
	summary, err := processStream(e, csvio.NewReader(strings.NewReader(input)), discardLogger(), nil, "")
	if err != nil {
		t.Fatal(err)
	}
	// The trailing deposit bounces off the frozen account.
	if summary.applied != 3 || summary.rejected != 1 {
		t.Errorf("summary = %+v, want 3 applied / 1 rejected", summary)
	}

	acct, _ := e.Accounts().Get(1)
	if !acct.Locked || !acct.Available.IsZero() || !acct.Held.IsZero() {
		t.Errorf("account = %+v", acct)
	}
}
