// Package backends builds storage adapters and stores from configuration.
package backends

import (
	"context"
	"fmt"

	"github.com/nonibytes/keywordize/config"
	"github.com/nonibytes/keywordize/keywordize"
	"github.com/nonibytes/keywordize/keywordize/storage"
	"github.com/nonibytes/keywordize/keywordize/storage/postgres"
	"github.com/nonibytes/keywordize/keywordize/storage/sqlite"
)

// NewAdapter creates the appropriate storage adapter based on cfg.Backend
func NewAdapter(cfg config.StorageConfig) (storage.Adapter, error) {
	switch cfg.Backend {
	case "sqlite", "":
		driver := cfg.SQLiteDriver
		if driver == "" {
			driver = sqlite.DriverModernc
		}
		if driver != sqlite.DriverModernc && driver != sqlite.DriverMattn {
			return nil, keywordize.ConfigError(fmt.Sprintf("unknown sqlite driver %q", driver))
		}
		if cfg.SQLitePath == "" {
			return nil, keywordize.ConfigError("sqlite backend requires a database path")
		}
		return sqlite.NewWithDriver(cfg.SQLitePath, driver), nil
	case "postgres", "pg":
		if cfg.PostgresDSN == "" {
			return nil, keywordize.ConfigError("postgres backend requires a connection string")
		}
		return postgres.New(cfg.PostgresDSN, cfg.PostgresSchema), nil
	default:
		return nil, keywordize.ConfigError(fmt.Sprintf("unknown backend %q", cfg.Backend))
	}
}

// Open creates the adapter described by cfg and opens a store on it, logging
// through a logger built from cfg.Log.
func Open(ctx context.Context, cfg *config.Config) (*storage.Store, error) {
	adapter, err := NewAdapter(cfg.Storage)
	if err != nil {
		return nil, err
	}
	opts := storage.DefaultOptions()
	opts.Logger = config.NewLogger(cfg.Log).WithField("component", "storage")
	return storage.Open(ctx, adapter, opts)
}
