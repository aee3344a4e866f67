package core

import (
	"context"

	"github.com/JonMunkholm/resale/internal/store"
)

// ExportCollection returns a public collection's definition and records for
// download. Internal collections are reported as not found.
func (s *Service) ExportCollection(ctx context.Context, key string) (CollectionInfo, []store.Record, error) {
	def, ok := Get(key)
	if !ok || def.Internal {
		return CollectionInfo{}, nil, notFound("collection", key)
	}
	recs, err := s.readCollection(ctx, key)
	if err != nil {
		return CollectionInfo{}, nil, err
	}
	return def.Info, recs, nil
}
