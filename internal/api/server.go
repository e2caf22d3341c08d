// Package api provides the HTTP server for tally. It accepts transaction
// records over REST and exposes account snapshots, ledger lookups, health
// and Prometheus metrics.
//
// POST /api/transactions      — submit one record, returns its outcome
// GET  /api/accounts          — all account snapshots
// GET  /api/accounts/{client} — one account snapshot
// GET  /api/transactions/{tx} — ledger entry with dispute state
// GET  /health                — liveness
// GET  /metrics               — Prometheus (when enabled)
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tallyhq/tally/internal/domain"
	"github.com/tallyhq/tally/internal/engine"
	"github.com/tallyhq/tally/internal/infra/observability"
	"github.com/tallyhq/tally/internal/infra/sqlite"
)

// Server wraps the engine for HTTP access. The engine requires records in a
// single total order, so every submission serializes through one mutex:
// concurrent POSTs are applied in lock-acquisition order, one at a time.
type Server struct {
	mu             sync.Mutex
	engine         *engine.Engine
	seq            int
	journal        *sqlite.DB
	runID          string
	metricsEnabled bool
}

// NewServer creates an API server around an engine.
func NewServer(e *engine.Engine) *Server {
	return &Server{engine: e}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetJournal journals every submitted record under runID.
func (s *Server) SetJournal(db *sqlite.DB, runID string) {
	s.journal = db
	s.runID = runID
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/transactions", s.handleSubmit)
		r.Get("/transactions/{tx}", s.handleGetTransaction)
		r.Get("/accounts", s.handleListAccounts)
		r.Get("/accounts/{client}", s.handleGetAccount)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// submitRequest is the wire form of one record. Amount accepts a JSON
// string or number and is omitted for dispute/resolve/chargeback.
type submitRequest struct {
	Type   string         `json:"type"`
	Client uint16         `json:"client"`
	Tx     uint32         `json:"tx"`
	Amount *domain.Amount `json:"amount,omitempty"`
}

// handleSubmit applies one record through the serialized engine.
// POST /api/transactions
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	rec := domain.Record{
		Kind:     domain.Kind(req.Type),
		ClientID: req.Client,
		TxID:     req.Tx,
	}
	if req.Amount != nil {
		rec.Amount = *req.Amount
		rec.HasAmount = true
	}

	out := s.process(rec)

	if !out.Applied {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"applied": false,
			"reason":  out.Reason(),
		})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"applied": true})
}

// process applies the record under the serialization lock and records
// journal and metrics side effects.
func (s *Server) process(rec domain.Record) engine.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.engine.Process(rec)
	s.seq++

	observability.ObserveOutcome(string(rec.Kind), out.Applied, out.Reason())
	observability.AccountsOpen.Set(float64(s.engine.Accounts().Len()))
	if out.Applied && rec.Kind == domain.KindChargeback {
		observability.AccountsLocked.Inc()
	}

	if s.journal != nil {
		// Journal failures must not reject the already-applied record;
		// the journal is an audit trail, not the source of truth.
		_ = s.journal.AppendRecord(s.runID, s.seq, rec, out.Applied, out.Reason())
	}
	return out
}

// handleListAccounts returns every account snapshot.
// GET /api/accounts
func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snaps := s.engine.Accounts().Snapshots()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"accounts": snaps})
}

// handleGetAccount returns one account snapshot.
// GET /api/accounts/{client}
func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	client, err := strconv.ParseUint(chi.URLParam(r, "client"), 10, 16)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	s.mu.Lock()
	acct, ok := s.engine.Accounts().Get(uint16(client))
	var snap domain.Snapshot
	if ok {
		snap = acct.Snapshot()
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleGetTransaction returns the ledger entry for a transaction id.
// GET /api/transactions/{tx}
func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := strconv.ParseUint(chi.URLParam(r, "tx"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	s.mu.Lock()
	entry, ok := s.engine.Ledger().Entry(uint32(tx))
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tx":     entry.TxID,
		"client": entry.ClientID,
		"kind":   entry.Kind,
		"amount": entry.Amount,
		"state":  entry.State,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
