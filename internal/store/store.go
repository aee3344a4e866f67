// Package store persists named collections of flat string records.
//
// Every backend works on whole collections: ReadAll returns the current
// contents in stored order and WriteAll replaces them. A reader never sees
// a partially written collection. Callers that need read-modify-write
// consistency must serialize access themselves.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCollection is returned for collection names that cannot be
// mapped onto a backing file or row key.
var ErrInvalidCollection = errors.New("invalid collection name")

// Record is one row of a collection keyed by column name.
type Record map[string]string

// Clone returns an independent copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Store is implemented by every persistence backend.
type Store interface {
	// ReadAll returns every record of the collection in stored order.
	// A collection that has never been written reads as empty.
	ReadAll(ctx context.Context, collection string) ([]Record, error)

	// WriteAll atomically replaces the collection. Each record is
	// projected onto columns: missing fields are stored empty and
	// fields outside columns are dropped.
	WriteAll(ctx context.Context, collection string, records []Record, columns []string) error

	Close() error
}

// project normalizes records onto the column list.
func project(records []Record, columns []string) []Record {
	out := make([]Record, len(records))
	for i, rec := range records {
		row := make(Record, len(columns))
		for _, col := range columns {
			row[col] = rec[col]
		}
		out[i] = row
	}
	return out
}

func cloneAll(records []Record) []Record {
	out := make([]Record, len(records))
	for i, rec := range records {
		out[i] = rec.Clone()
	}
	return out
}

func checkCollection(name string) error {
	if name == "" || strings.ContainsAny(name, `/\.`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidCollection, name)
	}
	return nil
}

func checkColumns(columns []string) error {
	if len(columns) == 0 {
		return errors.New("column list is empty")
	}
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if c == "" {
			return errors.New("column name is empty")
		}
		if _, dup := seen[c]; dup {
			return fmt.Errorf("duplicate column %q", c)
		}
		seen[c] = struct{}{}
	}
	return nil
}
