package qapi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/querio-io/qapi/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrCacheKeyNotFound   = errors.New("key not found")
	ErrCacheEntryExpired  = errors.New("entry expired")
	ErrCacheValueTooLarge = errors.New("cache value exceeds maximum size")
)

// CacheEntry is one cached GET response body.
type CacheEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
	ETag      string    `json:"etag,omitempty"`
}

// Expired reports whether the entry's TTL has elapsed.
func (e *CacheEntry) Expired() bool {
	return time.Now().After(e.ExpiresAt)
}

// Cache is a pluggable backend for GET-response caching.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
}

// CacheOptions are common options applied to any backend.
type CacheOptions struct {
	// TTL applied when an entry is stored without an explicit expiry.
	TTL time.Duration

	// MaxValueSize rejects oversized bodies instead of evicting everything
	// else to make room.
	MaxValueSize int
}

// DefaultCacheOptions returns sensible cache defaults.
func DefaultCacheOptions() *CacheOptions {
	return &CacheOptions{
		TTL:          constants.DefaultCacheTTL,
		MaxValueSize: constants.MaxCacheValueSize,
	}
}

// normalizeCacheOptions fills unset option fields with the defaults.
func normalizeCacheOptions(options *CacheOptions) CacheOptions {
	opts := *DefaultCacheOptions()

	if options != nil {
		if options.TTL > 0 {
			opts.TTL = options.TTL
		}

		if options.MaxValueSize > 0 {
			opts.MaxValueSize = options.MaxValueSize
		}
	}

	return opts
}

// MemoryCache is a bounded in-memory cache with TTL expiry. Eviction is
// oldest-expiry-first once the size limit is reached.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*CacheEntry
	maxSize int
	options CacheOptions
}

// NewMemoryCache creates a memory cache holding at most maxSize entries,
// using the default options.
func NewMemoryCache(maxSize int) *MemoryCache {
	return NewMemoryCacheWithOptions(maxSize, nil)
}

// NewMemoryCacheWithOptions creates a memory cache with explicit options.
// Unset option fields fall back to the defaults.
func NewMemoryCacheWithOptions(maxSize int, options *CacheOptions) *MemoryCache {
	if maxSize <= 0 {
		maxSize = constants.DefaultCacheSize
	}

	return &MemoryCache{
		entries: make(map[string]*CacheEntry),
		maxSize: maxSize,
		options: normalizeCacheOptions(options),
	}
}

// Get retrieves an entry, expiring it lazily.
func (c *MemoryCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCacheKeyNotFound, key)
	}

	if entry.Expired() {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()

		return nil, fmt.Errorf("%w: %s", ErrCacheEntryExpired, key)
	}

	return entry, nil
}

// Set stores an entry, evicting the entry closest to expiry when full. An
// entry without an explicit expiry gets the configured TTL.
func (c *MemoryCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	if len(entry.Data) > c.options.MaxValueSize {
		return ErrCacheValueTooLarge
	}

	stored := *entry
	if stored.ExpiresAt.IsZero() {
		stored.ExpiresAt = time.Now().Add(c.options.TTL)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = &stored

	return nil
}

// evictOldest drops the entry with the earliest expiry. Caller holds the lock.
func (c *MemoryCache) evictOldest() {
	var oldestKey string

	var oldestExpiry time.Time

	for key, entry := range c.entries {
		if oldestKey == "" || entry.ExpiresAt.Before(oldestExpiry) {
			oldestKey = key
			oldestExpiry = entry.ExpiresAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// Delete removes an entry.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)

	return nil
}

// Clear removes all entries.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*CacheEntry)

	return nil
}

// Has reports whether a live entry exists for key.
func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]

	return ok && !entry.Expired()
}

// NATSKVConfig configures the NATS JetStream key-value cache backend.
type NATSKVConfig struct {
	// URL of the NATS server, e.g. nats://localhost:4222.
	URL string

	// Bucket is the KV bucket name. Created if it does not exist.
	Bucket string

	// TTL applied to the bucket on creation.
	TTL time.Duration

	// Credentials file path, optional.
	Credentials string
}

// NATSKVCache stores entries in a NATS JetStream key-value bucket, letting
// multiple client processes share one response cache.
type NATSKVCache struct {
	conn    *nats.Conn
	kv      nats.KeyValue
	options CacheOptions
}

// NewNATSKVCache connects to NATS and binds (or creates) the bucket, using
// the default options.
func NewNATSKVCache(config *NATSKVConfig) (*NATSKVCache, error) {
	return NewNATSKVCacheWithOptions(config, nil)
}

// NewNATSKVCacheWithOptions connects to NATS with explicit options. Unset
// option fields fall back to the defaults.
func NewNATSKVCacheWithOptions(config *NATSKVConfig, options *CacheOptions) (*NATSKVCache, error) {
	opts := []nats.Option{nats.Name("qapi-cache")}
	if config.Credentials != "" {
		opts = append(opts, nats.UserCredentials(config.Credentials))
	}

	conn, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("getting JetStream context: %w", err)
	}

	kv, err := js.KeyValue(config.Bucket)
	if err != nil {
		ttl := config.TTL
		if ttl <= 0 {
			ttl = constants.DefaultCacheTTL
		}

		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket: config.Bucket,
			TTL:    ttl,
		})
		if err != nil {
			conn.Close()

			return nil, fmt.Errorf("creating KV bucket: %w", err)
		}
	}

	return &NATSKVCache{conn: conn, kv: kv, options: normalizeCacheOptions(options)}, nil
}

// Get retrieves an entry from the bucket.
func (c *NATSKVCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	kvEntry, err := c.kv.Get(sanitizeKVKey(key))
	if err != nil {
		if errors.Is(err, nats.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCacheKeyNotFound, key)
		}

		return nil, fmt.Errorf("getting cache entry: %w", err)
	}

	entry, err := decodeCacheEntry(kvEntry.Value())
	if err != nil {
		return nil, err
	}

	if entry.Expired() {
		_ = c.kv.Delete(sanitizeKVKey(key))

		return nil, fmt.Errorf("%w: %s", ErrCacheEntryExpired, key)
	}

	return entry, nil
}

// Set stores an entry in the bucket. An entry without an explicit expiry
// gets the configured TTL.
func (c *NATSKVCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	if len(entry.Data) > c.options.MaxValueSize {
		return ErrCacheValueTooLarge
	}

	stored := *entry
	if stored.ExpiresAt.IsZero() {
		stored.ExpiresAt = time.Now().Add(c.options.TTL)
	}

	value, err := encodeCacheEntry(&stored)
	if err != nil {
		return err
	}

	if _, err := c.kv.Put(sanitizeKVKey(key), value); err != nil {
		return fmt.Errorf("storing cache entry: %w", err)
	}

	return nil
}

// Delete removes an entry from the bucket.
func (c *NATSKVCache) Delete(ctx context.Context, key string) error {
	err := c.kv.Delete(sanitizeKVKey(key))
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("deleting cache entry: %w", err)
	}

	return nil
}

// Clear purges every key in the bucket.
func (c *NATSKVCache) Clear(ctx context.Context) error {
	keys, err := c.kv.Keys()
	if err != nil {
		if errors.Is(err, nats.ErrNoKeysFound) {
			return nil
		}

		return fmt.Errorf("listing cache keys: %w", err)
	}

	for _, key := range keys {
		if err := c.kv.Delete(key); err != nil {
			return fmt.Errorf("deleting cache entry: %w", err)
		}
	}

	return nil
}

// Has reports whether a live entry exists for key.
func (c *NATSKVCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Close releases the NATS connection.
func (c *NATSKVCache) Close() {
	c.conn.Close()
}
