package store

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Cached reads from a primary repository and keeps a local copy in a secondary one.
// When the primary cannot be loaded the local copy is served instead; writes always
// go to the primary first and fail if it fails.
type Cached[T any] struct {
	primary Repository[T]
	local   Repository[T]
	logger  *zap.Logger
}

func NewCached[T any](primary, local Repository[T], logger *zap.Logger) *Cached[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached[T]{primary: primary, local: local, logger: logger}
}

func (c *Cached[T]) Load(ctx context.Context) ([]T, error) {
	items, err := c.primary.Load(ctx)
	if err == nil {
		if err := c.local.Save(ctx, items); err != nil {
			c.logger.Warn("failed to refresh local copy", zap.Error(err))
		}
		return items, nil
	}
	if !errors.Is(err, ErrStorageUnavailable) {
		return nil, err
	}

	c.logger.Warn("primary store unavailable, serving local copy", zap.Error(err))
	items, localErr := c.local.Load(ctx)
	if localErr != nil {
		return nil, errors.Join(err, localErr)
	}
	return items, nil
}

func (c *Cached[T]) Save(ctx context.Context, items []T) error {
	if err := c.primary.Save(ctx, items); err != nil {
		return err
	}
	if err := c.local.Save(ctx, items); err != nil {
		c.logger.Warn("failed to update local copy", zap.Error(err))
	}
	return nil
}
