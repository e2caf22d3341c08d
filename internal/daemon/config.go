// Package daemon holds the engine's runtime configuration: a TOML file with
// defaults that work with no file present at all.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the full tally configuration.
type Config struct {
	API     APIConfig     `toml:"api"`
	Journal JournalConfig `toml:"journal"`
	Metrics MetricsConfig `toml:"metrics"`
}

// APIConfig configures the HTTP server (`tally serve`).
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port listen address.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// JournalConfig configures the optional sqlite run journal. With an empty
// path the journal is disabled and runs leave no trace on disk.
type JournalConfig struct {
	Path string `toml:"path"`
}

// Enabled reports whether a journal should be opened.
func (c JournalConfig) Enabled() bool { return c.Path != "" }

// MetricsConfig configures the Prometheus /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 7355,
		},
		Journal: JournalConfig{
			Path: "",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// DefaultConfigPath returns ~/.tally/config.toml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".tally", "config.toml")
}

// Load reads the TOML file at path over the defaults. A missing file is not
// an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
