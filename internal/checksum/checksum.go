// Package checksum derives content digests and content-addressed paste keys.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Key returns the first n hex characters of the digest of data.
// n is clamped to the digest length.
func Key(data []byte, n int) string {
	s := Sum(data)
	if n <= 0 || n > len(s) {
		return s
	}
	return s[:n]
}
