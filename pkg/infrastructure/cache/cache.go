// Package cache stores computed plan results keyed by a fingerprint of their inputs.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by stores when a key is absent or expired
var ErrMiss = errors.New("cache miss")

// Store is a JSON value store with expiration
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}
