package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists a collection as a JSON array in a single file.
// Writes go to a temp file first and are renamed into place.
type FileStore[T any] struct {
	mu   sync.Mutex
	path string
}

func NewFileStore[T any](path string) *FileStore[T] {
	return &FileStore[T]{path: path}
}

// Path returns the file backing the store
func (s *FileStore[T]) Path() string {
	return s.path
}

// Load reads the collection; a missing file is an empty collection
func (s *FileStore[T]) Load(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errUnavailable("read "+s.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}
	return items, nil
}

// Save writes the collection atomically
func (s *FileStore[T]) Save(ctx context.Context, items []T) error {
	if err := ctx.Err(); err != nil {
		return errUnavailable("save", err)
	}
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", s.path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errUnavailable("mkdir", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errUnavailable("create temp file", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errUnavailable("write "+tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return errUnavailable("close "+tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errUnavailable("rename "+s.path, err)
	}
	return nil
}

func errUnavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, err)
}
