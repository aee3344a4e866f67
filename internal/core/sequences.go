package core

import (
	"context"
	"strconv"

	"github.com/JonMunkholm/resale/internal/store"
)

// sequences holds the last issued value of each named counter. Counters
// only move forward, so an id is never handed out twice even after the
// record holding it is deleted.
type sequences map[string]int64

// loadSequences reads the counters. Caller holds the CollectionSequences lock.
func (s *Service) loadSequences(ctx context.Context) (sequences, error) {
	recs, err := s.readCollection(ctx, CollectionSequences)
	if err != nil {
		return nil, err
	}
	seq := make(sequences, len(recs))
	for _, rec := range recs {
		v, err := strconv.ParseInt(rec["value"], 10, 64)
		if err != nil {
			continue
		}
		seq[rec["name"]] = v
	}
	return seq, nil
}

func (s *Service) saveSequences(ctx context.Context, seq sequences) error {
	names := []string{SequenceOrderID, SequenceTransactionID}
	for name := range seq {
		if name != SequenceOrderID && name != SequenceTransactionID {
			names = append(names, name)
		}
	}
	recs := make([]store.Record, 0, len(names))
	for _, name := range names {
		v, ok := seq[name]
		if !ok {
			continue
		}
		recs = append(recs, store.Record{"name": name, "value": strconv.FormatInt(v, 10)})
	}
	return s.writeCollection(ctx, CollectionSequences, recs)
}

// next issues the value after max(last issued, floor). floor lets
// collections written before the counter existed seed it.
func (seq sequences) next(name string, floor int64) int64 {
	v := seq[name]
	if floor > v {
		v = floor
	}
	v++
	seq[name] = v
	return v
}

// advance moves a counter up to at least v.
func (seq sequences) advance(name string, v int64) {
	if v > seq[name] {
		seq[name] = v
	}
}

// maxID returns the largest integer value of field across items.
func maxID[T any](items []T, field func(T) string) int64 {
	var highest int64
	for _, item := range items {
		if v, err := strconv.ParseInt(field(item), 10, 64); err == nil && v > highest {
			highest = v
		}
	}
	return highest
}
