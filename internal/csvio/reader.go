// Package csvio is the serialization boundary of the engine: it decodes the
// CSV wire format into typed records and encodes account snapshots back out.
// The engine core never sees raw bytes.
//
// Input format, one record per row after a header row:
//
//	type,       client, tx, amount
//	deposit,    1,      1,  1.0
//	withdrawal, 1,      4,  1.5
//	dispute,    1,      1,
//
// Fields may be padded with whitespace. The amount column is present only
// for deposits and withdrawals.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tallyhq/tally/internal/domain"
)

// Reader decodes transaction records from CSV. A malformed row yields a
// reasoned error from Read; the reader stays usable, so callers skip the row
// and continue with the rest of the stream.
type Reader struct {
	csv    *csv.Reader
	line   int
	header bool
}

// NewReader wraps r, expecting a header row followed by record rows.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	// Rows for dispute/resolve/chargeback may omit the amount column
	// entirely, so field counts legitimately vary.
	cr.FieldsPerRecord = -1
	return &Reader{csv: cr}
}

// Read returns the next record. It returns io.EOF when the stream is
// exhausted, and an error wrapping domain.ErrMalformedRecord for rows that
// do not decode; such errors are per-row and non-fatal.
func (r *Reader) Read() (domain.Record, error) {
	if !r.header {
		r.header = true
		r.line++
		if _, err := r.csv.Read(); err != nil {
			if err == io.EOF {
				return domain.Record{}, io.EOF
			}
			return domain.Record{}, fmt.Errorf("%w: header: %v", domain.ErrMalformedRecord, err)
		}
	}

	row, err := r.csv.Read()
	r.line++
	if err == io.EOF {
		return domain.Record{}, io.EOF
	}
	if err != nil {
		return domain.Record{}, fmt.Errorf("%w: line %d: %v", domain.ErrMalformedRecord, r.line, err)
	}
	rec, err := parseRow(row)
	if err != nil {
		return domain.Record{}, fmt.Errorf("%w: line %d: %v", domain.ErrMalformedRecord, r.line, err)
	}
	return rec, nil
}

// parseRow decodes one positional row: type, client, tx, optional amount.
func parseRow(row []string) (domain.Record, error) {
	if len(row) < 3 {
		return domain.Record{}, fmt.Errorf("%d fields, want at least 3", len(row))
	}
	for i := range row {
		row[i] = strings.TrimSpace(row[i])
	}

	kind := domain.Kind(strings.ToLower(row[0]))
	if !kind.Valid() {
		return domain.Record{}, fmt.Errorf("unknown type %q", row[0])
	}

	client, err := strconv.ParseUint(row[1], 10, 16)
	if err != nil {
		return domain.Record{}, fmt.Errorf("client %q: %v", row[1], err)
	}
	tx, err := strconv.ParseUint(row[2], 10, 32)
	if err != nil {
		return domain.Record{}, fmt.Errorf("tx %q: %v", row[2], err)
	}

	rec := domain.Record{
		Kind:     kind,
		ClientID: uint16(client),
		TxID:     uint32(tx),
	}
	if len(row) >= 4 && row[3] != "" {
		amount, err := domain.ParseAmount(row[3])
		if err != nil {
			return domain.Record{}, fmt.Errorf("amount %q invalid", row[3])
		}
		rec.Amount = amount
		rec.HasAmount = true
	}
	return rec, nil
}
