package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/csvio"
	"github.com/tallyhq/tally/internal/domain"
	"github.com/tallyhq/tally/internal/engine"
	"github.com/tallyhq/tally/internal/infra/observability"
	"github.com/tallyhq/tally/internal/infra/sqlite"
)

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().StringP("output", "o", "", "write the account report to a file instead of stdout")
	processCmd.Flags().String("journal", "", "journal the run to this sqlite file (overrides config)")
	processCmd.Flags().BoolP("quiet", "q", false, "suppress per-record rejection diagnostics")
}

var processCmd = &cobra.Command{
	Use:   "process FILE",
	Short: "Process a CSV transaction stream and print the account report",
	Long: `Process reads transaction records from FILE in arrival order, applies
them through the engine, and prints the final account snapshots as CSV.

Rejected records are diagnostics, not failures: each is logged to stderr
with its reason code and the run continues. The command only fails when
the input cannot be read at all.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	input := args[0]
	outputPath, _ := cmd.Flags().GetString("output")
	journalPath, _ := cmd.Flags().GetString("journal")
	quiet, _ := cmd.Flags().GetBool("quiet")
	if journalPath == "" {
		journalPath = cfg.Journal.Path
	}

	logLevel := slog.LevelInfo
	if quiet {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	out := os.Stdout
	if outputPath != "" {
		out, err = os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer out.Close()
	}

	var journal *sqlite.DB
	runID := uuid.NewString()
	if journalPath != "" {
		journal, err = sqlite.Open(journalPath)
		if err != nil {
			return err
		}
		defer journal.Close()
		if err := journal.BeginRun(runID, input); err != nil {
			return fmt.Errorf("begin journal run: %w", err)
		}
		logger.Info("journaling run", "run_id", runID, "path", journalPath)
	}

	e := engine.New()
	summary, err := processStream(e, csvio.NewReader(f), logger, journal, runID)
	if err != nil {
		return err
	}

	if err := csvio.WriteReport(out, e.Accounts().Snapshots()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if journal != nil {
		if err := journal.FinishRun(runID, e.Accounts().Snapshots()); err != nil {
			return fmt.Errorf("finish journal run: %w", err)
		}
	}

	logger.Info("run complete",
		"applied", summary.applied,
		"rejected", summary.rejected,
		"accounts", e.Accounts().Len(),
	)
	return nil
}

type runSummary struct {
	applied  int
	rejected int
}

// processStream drains the reader through the engine, logging and counting
// outcomes. Only a broken input stream returns an error; per-record
// rejections never do.
func processStream(e *engine.Engine, r *csvio.Reader, logger *slog.Logger, journal *sqlite.DB, runID string) (runSummary, error) {
	var summary runSummary
	seq := 0
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return summary, nil
		}
		if err != nil {
			// Undecodable row: it never became a record, so it is
			// counted and logged but not journaled.
			summary.rejected++
			observability.RecordsRejected.WithLabelValues("malformed_record").Inc()
			logger.Warn("skipping malformed row", "error", err)
			continue
		}

		out := e.Process(rec)
		seq++

		observability.ObserveOutcome(string(rec.Kind), out.Applied, out.Reason())
		observability.AccountsOpen.Set(float64(e.Accounts().Len()))
		if out.Applied {
			summary.applied++
			if rec.Kind == domain.KindChargeback {
				observability.AccountsLocked.Inc()
			}
		} else {
			summary.rejected++
			logger.Warn("record rejected",
				"kind", rec.Kind,
				"client", rec.ClientID,
				"tx", rec.TxID,
				"reason", out.Reason(),
			)
		}

		if journal != nil {
			if err := journal.AppendRecord(runID, seq, rec, out.Applied, out.Reason()); err != nil {
				return summary, fmt.Errorf("journal record: %w", err)
			}
		}
	}
}
