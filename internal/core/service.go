package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/resale/internal/store"
)

// Options configures a Service. Zero values are usable.
type Options struct {
	// DecrementStock removes one unit of the purchased item when an order
	// is created.
	DecrementStock bool

	// Images processes background-removal batches. Nil disables them.
	Images ImageProcessor

	// ImageLimiter caps concurrent image batches. Nil uses the defaults.
	ImageLimiter *BatchLimiter

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Service provides the business logic for inventory, orders and the ledger.
// All methods are safe for concurrent use.
type Service struct {
	store store.Store
	locks *lockSet

	decrementStock bool
	images         ImageProcessor
	imageLimiter   *BatchLimiter
	now            func() time.Time
}

// NewService creates a Service backed by st.
func NewService(st store.Store, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	limiter := opts.ImageLimiter
	if limiter == nil {
		limiter = NewBatchLimiter(DefaultMaxConcurrentBatches, DefaultMaxWaitTime)
	}
	return &Service{
		store:          st,
		locks:          newLockSet(),
		decrementStock: opts.DecrementStock,
		images:         opts.Images,
		imageLimiter:   limiter,
		now:            now,
	}
}

// ImageLimiter exposes the batch limiter for status reporting and shutdown.
func (s *Service) ImageLimiter() *BatchLimiter {
	return s.imageLimiter
}

// ListCollections returns information about all registered collections.
func (s *Service) ListCollections() []CollectionInfo {
	defs := Public()
	infos := make([]CollectionInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

func (s *Service) today() string {
	return s.now().Format(DateLayout)
}

// readCollection loads every record of a registered collection.
func (s *Service) readCollection(ctx context.Context, key string) ([]store.Record, error) {
	recs, err := s.store.ReadAll(ctx, key)
	if err != nil {
		return nil, &StorageError{Op: "read", Collection: key, Err: err}
	}
	return recs, nil
}

// writeCollection replaces a registered collection using its declared columns.
func (s *Service) writeCollection(ctx context.Context, key string, recs []store.Record) error {
	def, err := lookup(key)
	if err != nil {
		return err
	}
	if err := s.store.WriteAll(ctx, key, recs, def.Info.Columns); err != nil {
		return &StorageError{Op: "write", Collection: key, Err: err}
	}
	return nil
}

// normalize validates an incoming payload against a collection's specs.
func normalize(key string, payload store.Record) (store.Record, error) {
	def, err := lookup(key)
	if err != nil {
		return nil, err
	}
	return normalizeRecord(def.FieldSpecs, payload)
}
