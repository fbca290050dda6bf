// Package checksum derives cache keys and content digests.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/adler32"
)

// KeyLen is the length of a cache key in characters.
const KeyLen = 8

// Key maps a recipe name to its 8-char lowercase hex cache key
// (Adler-32 of the UTF-8 bytes). Distinct names may collide.
func Key(name string) string {
	return fmt.Sprintf("%08x", adler32.Checksum([]byte(name)))
}

// IsKey reports whether s has the shape of a cache key.
func IsKey(s string) bool {
	if len(s) != KeyLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
