// Package cache stores serialized scheme listings keyed by filter so repeated
// catalogue queries skip the database.
package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrCacheMiss indicates the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Client is the cache contract used by the scheme service.
type Client interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Close() error
}

// Key joins parts with ":". Empty parts are kept so positional keys stay
// unambiguous ("schemes:list::ka" differs from "schemes:list:ka:").
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}
