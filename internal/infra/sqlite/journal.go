// Package sqlite persists the run journal: every record outcome and the
// final account snapshots of a processing run, keyed by run id. The journal
// is an audit trail; the engine itself never reads it back.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tallyhq/tally/internal/domain"
)

// DB wraps the sqlite connection for the run journal.
type DB struct {
	sql *sql.DB
}

// migrations returns the journal schema. Each string is a single SQL
// statement (sqlite executes one at a time).
func migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id               TEXT PRIMARY KEY,
			source           TEXT NOT NULL,
			started_at       TEXT NOT NULL,
			finished_at      TEXT,
			records_applied  INTEGER NOT NULL DEFAULT 0,
			records_rejected INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS records (
			run_id  TEXT NOT NULL,
			seq     INTEGER NOT NULL,
			kind    TEXT NOT NULL,
			client  INTEGER NOT NULL,
			tx      INTEGER NOT NULL,
			amount  TEXT,
			applied INTEGER NOT NULL,
			reason  TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (run_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_run_applied ON records(run_id, applied)`,

		`CREATE TABLE IF NOT EXISTS snapshots (
			run_id    TEXT NOT NULL,
			client    INTEGER NOT NULL,
			available TEXT NOT NULL,
			held      TEXT NOT NULL,
			total     TEXT NOT NULL,
			locked    INTEGER NOT NULL,
			PRIMARY KEY (run_id, client)
		)`,
	}
}

// Open opens (creating if needed) the journal database at path and applies
// the schema.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	for _, stmt := range migrations() {
		if _, err := conn.Exec(stmt); err != nil {
			conn.Close()
			return nil, fmt.Errorf("migrate journal: %w", err)
		}
	}
	return &DB{sql: conn}, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error { return db.sql.Close() }

// BeginRun registers a new run. Source names the input, e.g. a file path or
// "api".
func (db *DB) BeginRun(runID, source string) error {
	_, err := db.sql.Exec(
		`INSERT INTO runs (id, source, started_at) VALUES (?, ?, ?)`,
		runID, source, time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// AppendRecord journals one record outcome. seq is the record's position in
// the input stream, so arrival order can be reconstructed exactly.
func (db *DB) AppendRecord(runID string, seq int, rec domain.Record, applied bool, reason string) error {
	var amount any
	if rec.HasAmount {
		amount = rec.Amount.String()
	}
	_, err := db.sql.Exec(
		`INSERT INTO records (run_id, seq, kind, client, tx, amount, applied, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, seq, string(rec.Kind), rec.ClientID, rec.TxID, amount, applied, reason,
	)
	return err
}

// FinishRun stores the final account snapshots and stamps the run finished.
func (db *DB) FinishRun(runID string, snapshots []domain.Snapshot) error {
	tx, err := db.sql.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, snap := range snapshots {
		_, err := tx.Exec(
			`INSERT INTO snapshots (run_id, client, available, held, total, locked)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			runID, snap.ClientID, snap.Available.String(), snap.Held.String(),
			snap.Total.String(), snap.Locked,
		)
		if err != nil {
			return err
		}
	}

	_, err = tx.Exec(
		`UPDATE runs SET
			finished_at = ?,
			records_applied = (SELECT COUNT(*) FROM records WHERE run_id = ? AND applied = 1),
			records_rejected = (SELECT COUNT(*) FROM records WHERE run_id = ? AND applied = 0)
		 WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), runID, runID, runID,
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// RunSummary is the stored per-run accounting.
type RunSummary struct {
	ID       string
	Source   string
	Finished bool
	Applied  int
	Rejected int
}

// GetRun returns the summary row for runID.
func (db *DB) GetRun(runID string) (RunSummary, error) {
	var s RunSummary
	var finished sql.NullString
	err := db.sql.QueryRow(
		`SELECT id, source, finished_at, records_applied, records_rejected FROM runs WHERE id = ?`,
		runID,
	).Scan(&s.ID, &s.Source, &finished, &s.Applied, &s.Rejected)
	if err != nil {
		return RunSummary{}, err
	}
	s.Finished = finished.Valid
	return s, nil
}

// RecordRow is one journaled record outcome.
type RecordRow struct {
	Seq     int
	Kind    domain.Kind
	Client  uint16
	Tx      uint32
	Amount  string // "" when the record carried no amount
	Applied bool
	Reason  string
}

// RecordsForRun returns the journaled outcomes for runID in stream order.
func (db *DB) RecordsForRun(runID string) ([]RecordRow, error) {
	rows, err := db.sql.Query(
		`SELECT seq, kind, client, tx, amount, applied, reason
		 FROM records WHERE run_id = ? ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RecordRow
	for rows.Next() {
		var r RecordRow
		var kind string
		var amount sql.NullString
		if err := rows.Scan(&r.Seq, &kind, &r.Client, &r.Tx, &amount, &r.Applied, &r.Reason); err != nil {
			return nil, err
		}
		r.Kind = domain.Kind(kind)
		r.Amount = amount.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// SnapshotsForRun returns the final account snapshots stored for runID,
// ordered by client id.
func (db *DB) SnapshotsForRun(runID string) ([]domain.Snapshot, error) {
	rows, err := db.sql.Query(
		`SELECT client, available, held, total, locked
		 FROM snapshots WHERE run_id = ? ORDER BY client`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Snapshot
	for rows.Next() {
		var snap domain.Snapshot
		if err := rows.Scan(&snap.ClientID, &snap.Available, &snap.Held, &snap.Total, &snap.Locked); err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}
