// Package checksum computes the content digests recorded on file rows.
// The digest is taken at upload time and lets a reader detect blob
// corruption or out-of-band edits under the storage root.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data. This is the format
// stored in the files table's checksum column.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Matches reports whether data hashes to want. An empty want matches
// anything; file rows without a recorded checksum are not verifiable.
func Matches(data []byte, want string) bool {
	if want == "" {
		return true
	}
	return Sum(data) == want
}
