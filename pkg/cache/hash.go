package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Key builds a namespaced cache key from a prefix and arbitrary content.
// The content is hashed so callers can pass raw URLs or byte payloads
// without worrying about key length or special characters.
func Key(prefix string, content []byte) string {
	return prefix + ":" + Hash(content)
}
