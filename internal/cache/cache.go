// Package cache provides the key-value capability shared by the revocation
// registry and the role-claims cache. Entries are derived, re-computable data
// bounded by a TTL; a cold cache is always safe.
package cache

import (
	"context"
	"time"
)

// Cache is a process-wide key-value store with per-entry TTL semantics.
// Implementations must make individual reads and writes atomic per key.
// Callers namespace their keys with distinct prefixes.
type Cache interface {
	// Get returns the value stored under key. The second return value reports
	// whether the key was present and not expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for at most ttl. Setting an existing key
	// replaces its value and resets its TTL (idempotent upsert).
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
