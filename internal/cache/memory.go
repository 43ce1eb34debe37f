package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryClient is an in-process Client used when no Redis address is
// configured. Expired entries are dropped lazily on read and on Set.
type MemoryClient struct {
	mu      sync.RWMutex
	data    map[string]memEntry
	maxSize int
	now     func() time.Time
}

type memEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryClient returns an empty cache holding at most maxSize entries
// (10000 when maxSize <= 0).
func NewMemoryClient(maxSize int) *MemoryClient {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &MemoryClient{
		data:    make(map[string]memEntry),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Get returns a copy of the stored bytes or ErrCacheMiss.
func (c *MemoryClient) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, ErrCacheMiss
	}
	return append([]byte(nil), e.value...), nil
}

// Set stores value under key for ttl, evicting the entry closest to expiry
// when full.
func (c *MemoryClient) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.data[key]; !exists && len(c.data) >= c.maxSize {
		c.sweep(now)
		if len(c.data) >= c.maxSize {
			c.evictOldest()
		}
	}
	c.data[key] = memEntry{
		value:     append([]byte(nil), value...),
		expiresAt: now.Add(ttl),
	}
	return nil
}

// Delete removes key.
func (c *MemoryClient) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
	return nil
}

// DeleteByPrefix removes all keys starting with prefix.
func (c *MemoryClient) DeleteByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

// Close is a no-op.
func (c *MemoryClient) Close() error { return nil }

// Len reports the number of stored entries, expired or not.
func (c *MemoryClient) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

func (c *MemoryClient) sweep(now time.Time) {
	for k, e := range c.data {
		if !now.Before(e.expiresAt) {
			delete(c.data, k)
		}
	}
}

func (c *MemoryClient) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for k, e := range c.data {
		if oldestKey == "" || e.expiresAt.Before(oldest) {
			oldestKey, oldest = k, e.expiresAt
		}
	}
	if oldestKey != "" {
		delete(c.data, oldestKey)
	}
}
