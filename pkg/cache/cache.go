// Package cache provides pluggable byte caching for expensive lookups.
//
// gridsnap uses it to memoize sampled image luminance: downloading and
// decoding an image just to average its pixels is by far the slowest part of
// a color sort, and the result never changes for a given source. Entries are
// keyed by a SHA-256 hash of the image source so keys are filesystem-safe.
//
// Three backends are provided:
//   - FileCache: directory-backed, for CLI usage (~/.cache/gridsnap/)
//   - RedisCache: shared cache for a board server deployment
//   - NullCache: disables caching
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry kind.
const (
	// TTLLuma is the time-to-live for cached luminance samples. Image
	// content behind a stable source rarely changes, so this is generous.
	TTLLuma = 7 * 24 * time.Hour
)

// Cache is the interface all cache backends implement.
type Cache interface {
	// Get retrieves a value. The second return value reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
