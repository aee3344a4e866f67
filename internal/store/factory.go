package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
)

// Options selects and configures a backend.
type Options struct {
	Backend     string
	DataDir     string
	DatabaseURL string
	Pool        PoolOptions
}

// New creates a Store based on the backend name.
//
// Supported backends:
//
//	"csv"      - one CSV file per collection in DataDir (default)
//	"sqlite"   - SQLite database at DataDir/records.db
//	"badger"   - Badger key-value database in DataDir/badger
//	"postgres" - PostgreSQL at DatabaseURL
//	"memory"   - in-memory (ephemeral, for testing)
func New(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "csv", "":
		return NewCSVFileStore(opts.DataDir)
	case "sqlite":
		return NewSqliteStore(filepath.Join(opts.DataDir, "records.db"))
	case "badger":
		return NewBadgerStore(filepath.Join(opts.DataDir, "badger"))
	case "postgres":
		if opts.DatabaseURL == "" {
			return nil, errors.New("postgres backend requires a database URL")
		}
		return NewPostgresStore(ctx, opts.DatabaseURL, opts.Pool)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %q (supported: csv, sqlite, badger, postgres, memory)", opts.Backend)
	}
}
