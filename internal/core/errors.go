package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the addressed record is not in its collection.
	ErrNotFound = errors.New("record not found")

	// ErrOutOfStock means an order referenced an item that is missing
	// from inventory or has no units left.
	ErrOutOfStock = errors.New("item out of stock")

	// ErrConflict means the operation would create a second record with
	// an existing key.
	ErrConflict = errors.New("record already exists")

	// ErrNoImagesProvided means an image batch contained no files.
	ErrNoImagesProvided = errors.New("no images provided")

	// ErrNoImagesProcessed means every image in a batch failed.
	ErrNoImagesProcessed = errors.New("no images were successfully processed")

	// ErrImagesUnavailable means no image processor is configured.
	ErrImagesUnavailable = errors.New("image processing not configured")
)

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string // Field/column name
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// StorageError wraps a failed read or write of a collection.
type StorageError struct {
	Op         string // "read" or "write"
	Collection string
	Err        error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func notFound(kind, key string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, key)
}

func conflict(kind, key string) error {
	return fmt.Errorf("%w: %s %q", ErrConflict, kind, key)
}
