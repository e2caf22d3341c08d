// Package cli implements the tally command line: batch CSV processing and
// the HTTP server mode.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/daemon"
)

// Version is the release version, overridable at link time.
var Version = "0.1.0"

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.toml (default ~/.tally/config.toml)")
	rootCmd.AddCommand(versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "tally",
	Short: "Payments transaction engine",
	Long: `Tally processes an ordered stream of payment transaction records
(deposits, withdrawals, disputes, resolves, chargebacks) and reports the
final per-client account balances.

Batch mode reads a CSV file and prints the account report:

  tally process transactions.csv > accounts.csv

Server mode accepts records over HTTP:

  tally serve`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tally version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "tally %s\n", Version)
	},
}

// loadConfig loads the configured or default TOML file.
func loadConfig() (daemon.Config, error) {
	path := configPath
	if path == "" {
		path = daemon.DefaultConfigPath()
	}
	return daemon.Load(path)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
