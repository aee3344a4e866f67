package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps collections in PostgreSQL using the same two-table
// layout as SqliteStore, with record data stored as jsonb.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// PoolOptions tunes the connection pool. Zero values keep pgxpool defaults.
type PoolOptions struct {
	MaxConns int32
	MinConns int32
}

func NewPostgresStore(ctx context.Context, databaseURL string, opts PoolOptions) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if opts.MaxConns > 0 {
		poolConfig.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = opts.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS record_collections (
			name TEXT PRIMARY KEY,
			columns JSONB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS collection_records (
			collection TEXT NOT NULL,
			position INTEGER NOT NULL,
			data JSONB NOT NULL,
			PRIMARY KEY (collection, position)
		)`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) ReadAll(ctx context.Context, collection string) ([]Record, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx,
		"SELECT data FROM collection_records WHERE collection = $1 ORDER BY position", collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode %s row: %w", collection, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *PostgresStore) WriteAll(ctx context.Context, collection string, records []Record, columns []string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if err := checkColumns(columns); err != nil {
		return err
	}
	cols, err := json.Marshal(columns)
	if err != nil {
		return err
	}

	rows := make([][]any, 0, len(records))
	for i, rec := range project(records, columns) {
		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		rows = append(rows, []any{collection, int32(i), string(b)})
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO record_collections (name, columns) VALUES ($1, $2)
			 ON CONFLICT (name) DO UPDATE SET columns = EXCLUDED.columns`,
			collection, string(cols),
		); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, "DELETE FROM collection_records WHERE collection = $1", collection); err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"collection_records"},
			[]string{"collection", "position", "data"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("copy %s rows: %w", collection, err)
		}
		return nil
	})
}
