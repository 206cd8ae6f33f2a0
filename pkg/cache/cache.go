// Package cache stores API responses, layouts and rendered artifacts.
//
// Three backends implement [Cache]:
//
//   - [NullCache]: never stores anything (--no-cache)
//   - [FileCache]: one JSON file per key under the user cache directory,
//     used by the CLI
//   - [RedisCache]: a shared Redis instance, used by `flowtower serve` when a
//     Redis URL is configured
//
// Keys come from a [Keyer]. [DefaultKeyer] derives API keys from [Query]
// values that follow the dashboard's hierarchical layout
// (workflows/detail/{id}/diagram, tasks/pending, stats/system) and layout and
// artifact keys from a content hash plus the options that affect the output.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/flowtower/pkg/observability"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
//
// Get reports a miss as (nil, false, nil); an error means the backend itself
// failed. A TTL of zero means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetJSON reads key from c and unmarshals it into v.
func GetJSON(ctx context.Context, c Cache, key string, v any) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		// Undecodable entries are dropped and reported as a miss.
		_ = c.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetJSON marshals v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}

// Instrumented wraps a Cache and reports hits, misses and writes to the
// registered [observability.CacheHooks] under keyType.
type Instrumented struct {
	Cache
	keyType string
}

// Instrument wraps c so that its operations are reported as keyType.
func Instrument(c Cache, keyType string) *Instrumented {
	return &Instrumented{Cache: c, keyType: keyType}
}

// Get implements Cache.
func (c *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, c.keyType)
		} else {
			observability.Cache().OnCacheMiss(ctx, c.keyType)
		}
	}
	return data, ok, err
}

// Set implements Cache.
func (c *Instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, c.keyType, len(data))
	return nil
}
