package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/me/mlfq/internal/logging"
)

// Limits bounds the size of a workload. They replace compile-time buffer
// sizes and are enforced by the validator before a simulation starts.
type Limits struct {
	MaxLevels     int // Maximum number of priority levels (queue_num)
	MaxProcesses  int // Maximum rows in the process table
	MaxNameLength int // Maximum process name length in bytes
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxLevels:     4,
		MaxProcesses:  64,
		MaxNameLength: 16,
	}
}

// ServerConfig holds configuration for the simulation API server.
type ServerConfig struct {
	Addr      string // Listen address (default ":8080")
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: text, json
	DBPath    string // SQLite database path (default ~/.mlfq/mlfq.db, ":memory:" for testing)
	Limits    Limits
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:      ":8080",
		LogLevel:  "info",
		LogFormat: logging.FormatText,
		Limits:    DefaultLimits(),
	}
}

// ResolveDBPath returns DBPath, or ~/.mlfq/mlfq.db when it is empty. The
// parent directory of the default path is created if missing.
func (c ServerConfig) ResolveDBPath() (string, error) {
	if c.DBPath != "" {
		return c.DBPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".mlfq")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create %s: %w", dir, err)
	}
	return filepath.Join(dir, "mlfq.db"), nil
}
