package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SqliteStore keeps all collections in a single SQLite database.
//
// Tables:
//
//	collections(name, columns)               PRIMARY KEY (name)
//	records(collection, position, data)      PRIMARY KEY (collection, position)
//
// data holds the record as a JSON object; columns is a JSON array.
type SqliteStore struct {
	db *sql.DB
}

func NewSqliteStore(dbPath string) (*SqliteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// One writer at a time keeps WriteAll transactions from tripping over
	// SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	stmts := []string{
		"PRAGMA journal_mode=WAL",
		`CREATE TABLE IF NOT EXISTS collections (
			name TEXT PRIMARY KEY,
			columns TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			collection TEXT NOT NULL,
			position INTEGER NOT NULL,
			data TEXT NOT NULL,
			PRIMARY KEY (collection, position)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
	}
	return &SqliteStore{db: db}, nil
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func (s *SqliteStore) ReadAll(ctx context.Context, collection string) ([]Record, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT data FROM records WHERE collection = ? ORDER BY position", collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var rec Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode %s row: %w", collection, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SqliteStore) WriteAll(ctx context.Context, collection string, records []Record, columns []string) error {
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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO collections (name, columns) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET columns = excluded.columns`,
		collection, string(cols),
	); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE collection = ?", collection); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO records (collection, position, data) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, rec := range project(records, columns) {
		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, collection, i, string(b)); err != nil {
			return fmt.Errorf("insert %s row %d: %w", collection, i, err)
		}
	}
	return tx.Commit()
}
