// Package cache provides local caching of remote archive files.
//
// Files fetched from HTTP-served trees can be kept in a cache so repeated
// reads do not hit the network. Keys are SHA256 digests of the remote file
// identity (its URL); remote trees are treated as static input, so a cached
// file stays valid until it is evicted or deleted.
package cache

import (
	"crypto/sha256"
	"io"
	"io/fs"
)

// Cache stores file content by key.
//
// Implementations should handle their own size limits and eviction policies.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns an fs.File for reading cached content.
	// Returns nil, false if content is not cached.
	// Each call returns a new file handle (safe for concurrent use).
	Get(key []byte) (fs.File, bool)

	// Put stores content by reading r to completion.
	// A Put that loses a race with another Put for the same key is a no-op.
	Put(key []byte, r io.Reader) error

	// Delete removes cached content for the given key.
	// Implementations should treat missing entries as a no-op.
	Delete(key []byte) error

	// MaxBytes returns the configured cache size limit (0 = unlimited).
	MaxBytes() int64

	// SizeBytes returns the current cache size in bytes.
	SizeBytes() int64

	// Prune removes cached entries until the cache is at or below targetBytes.
	// Returns the number of bytes freed.
	Prune(targetBytes int64) (int64, error)
}

// Key derives the cache key of a remote file identity.
func Key(identity string) []byte {
	sum := sha256.Sum256([]byte(identity))
	return sum[:]
}
