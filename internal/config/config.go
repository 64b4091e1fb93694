// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New(ctx) builds a Config populated with defaults.
// - Load(ctx) layers a YAML file and environment variables over them.
package config

import (
	"context"
	"time"

	"github.com/okian/medalgrid/internal/grid"
)

// Config contains process configuration for the backend and gridctl.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":3000".
	Addr string `koanf:"addr"`

	// DBPath is the sqlite database file. ":memory:" keeps it in memory.
	DBPath string `koanf:"db_path"`

	// SeedCount is the number of sample records an empty store receives.
	SeedCount int `koanf:"seed_count"`

	// MaxReadWindow caps the rows one read may return.
	MaxReadWindow int `koanf:"max_read_window"`

	// AllowedOrigin is sent in CORS responses; "*" allows any origin.
	AllowedOrigin string `koanf:"allowed_origin"`

	// BackendURL is where gridctl sends its calls.
	BackendURL string `koanf:"backend_url"`

	// ClientTimeoutMS bounds one data service call.
	ClientTimeoutMS int `koanf:"client_timeout_ms"`

	// ClientWorkers and ClientQueueSize size the data service pool.
	ClientWorkers   int `koanf:"client_workers"`
	ClientQueueSize int `koanf:"client_queue_size"`

	// ServerFilterValues makes set filters fetch their values from the backend.
	ServerFilterValues bool `koanf:"server_filter_values"`

	// LogTransactions logs every transaction applied to the grid.
	LogTransactions bool `koanf:"log_transactions"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":3000",
		DBPath:             "medalgrid.db",
		SeedCount:          1000,
		MaxReadWindow:      1000,
		AllowedOrigin:      "*",
		BackendURL:         "http://localhost:3000",
		ClientTimeoutMS:    10_000,
		ClientWorkers:      4,
		ClientQueueSize:    1024,
		ServerFilterValues: true,
		LogTransactions:    false,
	}
}

// ClientTimeout is ClientTimeoutMS as a duration.
func (c *Config) ClientTimeout() time.Duration {
	return time.Duration(c.ClientTimeoutMS) * time.Millisecond
}

// GridOptions are the grid behaviour switches carried by the config.
func (c *Config) GridOptions() grid.Options {
	return grid.Options{
		ServerFilterValues: c.ServerFilterValues,
		LogTransactions:    c.LogTransactions,
	}
}
