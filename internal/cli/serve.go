package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/api"
	"github.com/tallyhq/tally/internal/engine"
	"github.com/tallyhq/tally/internal/infra/sqlite"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (overrides config)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serve starts the HTTP API. Records submitted to POST /api/transactions
are applied in arrival order against a fresh engine; account snapshots and
ledger entries are readable while the server runs. State is in-memory for
the lifetime of the process.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.API.Addr()
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	server := api.NewServer(engine.New())
	if cfg.Metrics.Enabled {
		server.EnableMetrics()
	}

	if cfg.Journal.Enabled() {
		journal, err := sqlite.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer journal.Close()

		runID := uuid.NewString()
		if err := journal.BeginRun(runID, "api"); err != nil {
			return fmt.Errorf("begin journal run: %w", err)
		}
		server.SetJournal(journal, runID)
		logger.Info("journaling submissions", "run_id", runID, "path", cfg.Journal.Path)
	}

	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Handler(),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
