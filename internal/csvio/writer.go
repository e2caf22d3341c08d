package csvio

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/tallyhq/tally/internal/domain"
)

// WriteReport encodes account snapshots as the final CSV report:
//
//	client,available,held,total,locked
//	1,1.5000,0.0000,1.5000,false
//
// Rows are written in the order given; callers wanting deterministic output
// pass snapshots sorted by client id.
func WriteReport(w io.Writer, snapshots []domain.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return err
	}
	for _, snap := range snapshots {
		row := []string{
			strconv.FormatUint(uint64(snap.ClientID), 10),
			snap.Available.String(),
			snap.Held.String(),
			snap.Total.String(),
			strconv.FormatBool(snap.Locked),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
