package store

import (
	"context"
	"errors"
)

// ErrStorageUnavailable is returned when the backing store cannot be read or written.
// Callers may retry or fall back to a cached copy.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Repository is the persistence collaborator for a collection of records.
// Load returns the full collection in stored order; Save replaces it.
type Repository[T any] interface {
	Load(ctx context.Context) ([]T, error)
	Save(ctx context.Context, items []T) error
}

// IDFunc extracts the stable string identifier of a record.
type IDFunc[T any] func(T) string
