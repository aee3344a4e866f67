package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore keeps each collection as a single value in an embedded
// Badger database, keyed "collection/<name>". A write replaces the value
// in one transaction.
type BadgerStore struct {
	db *badger.DB
}

// badgerCollection is the stored value: the declared columns followed by
// the records in order.
type badgerCollection struct {
	Columns []string `json:"columns"`
	Records []Record `json:"records"`
}

// NewBadgerStore opens (or creates) a Badger database in dir.
func NewBadgerStore(dir string) (*BadgerStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func badgerKey(collection string) []byte {
	return []byte("collection/" + collection)
}

func (s *BadgerStore) ReadAll(ctx context.Context, collection string) ([]Record, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(collection))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, err
	}

	var c badgerCollection
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	if c.Records == nil {
		c.Records = []Record{}
	}
	return c.Records, nil
}

func (s *BadgerStore) WriteAll(ctx context.Context, collection string, records []Record, columns []string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if err := checkColumns(columns); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := json.Marshal(badgerCollection{Columns: columns, Records: project(records, columns)})
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(collection), raw)
	})
}
