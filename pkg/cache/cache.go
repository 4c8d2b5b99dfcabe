// Package cache stores rendered frame artifacts.
//
// Frames are pure functions of the canvas configuration, the viewport, the
// transform, and the render options, so identical requests can be served
// from cache. The CLI uses [FileCache] under the user cache directory, the
// HTTP server uses [RedisCache] when a Redis URL is configured so several
// server replicas share artifacts, and [NullCache] disables caching.
//
// Keys are produced by a [Keyer]; values are opaque bytes.
package cache

import (
	"context"
	"time"
)

// Default TTLs for cached artifacts.
const (
	// FrameTTL bounds how long a rendered frame is kept.
	FrameTTL = 24 * time.Hour
	// DiagramTTL bounds how long a state diagram is kept.
	DiagramTTL = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources held by the cache.
	Close() error
}
