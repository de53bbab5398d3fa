// Package cache stores built partition trees so an unchanged graph is not
// partitioned again.
//
// Entries are keyed by the graph's content hash together with the options
// that determine the tree shape (see [partition.Options.TreeOptions]).
// Thread counts and loggers are not part of the key: they never change the
// result.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value cache with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}
