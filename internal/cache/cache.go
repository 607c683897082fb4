// Package cache stores fetched review pages so repeated runs against the same
// restaurant do not hit the review sites again.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// keyPrefix is bumped whenever the cached payload format changes
const keyPrefix = "reviewlens:v1:"

// CacheKey generates a cache key from a page URL
func CacheKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return keyPrefix + hex.EncodeToString(hash[:])
}
