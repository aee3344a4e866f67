package core

import (
	"context"
	"io"
	"time"

	"github.com/JonMunkholm/resale/internal/logging"
)

// ImageUpload is one file of a background-removal batch.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

// ProcessedImage describes one successfully processed image.
type ProcessedImage struct {
	Filename string `json:"filename"`
	URL      string `json:"processed_url"`
}

// ImageBatchResult lists the images that succeeded, in input order, and
// where the zip bundling them can be fetched.
type ImageBatchResult struct {
	Images     []ProcessedImage `json:"processed_images"`
	ArchiveURL string           `json:"zip_url"`
}

// ImageProcessor removes backgrounds from a batch of images. Implementations
// skip files they cannot handle and return ErrNoImagesProcessed when none
// succeed.
type ImageProcessor interface {
	ProcessBatch(ctx context.Context, uploads []ImageUpload) (ImageBatchResult, error)
}

// ProcessImages runs a batch through the configured processor, waiting for
// a free batch slot first.
func (s *Service) ProcessImages(ctx context.Context, uploads []ImageUpload) (ImageBatchResult, error) {
	if len(uploads) == 0 {
		return ImageBatchResult{}, ErrNoImagesProvided
	}
	if s.images == nil {
		return ImageBatchResult{}, ErrImagesUnavailable
	}

	if err := s.imageLimiter.Acquire(ctx); err != nil {
		return ImageBatchResult{}, err
	}
	defer s.imageLimiter.Release()

	start := time.Now()
	result, err := s.images.ProcessBatch(ctx, uploads)
	if err != nil {
		return ImageBatchResult{}, err
	}

	logging.FromContext(ctx).Info("image batch processed",
		"submitted", len(uploads),
		"processed", len(result.Images),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	s.recordAudit(ctx, AuditLogParams{
		Action:     ActionImageBatch,
		Collection: "images",
		Details: map[string]any{
			"submitted": len(uploads),
			"processed": len(result.Images),
			"zip_url":   result.ArchiveURL,
		},
	})
	return result, nil
}
