package ir

import (
	"crypto/sha256"
	"encoding/hex"
)

// ID computes the content-addressed identifier for a string value:
// the hex-encoded SHA-256 digest of its UTF-8 bytes.
//
// IDs carry no domain prefix. The ID doubles as the sha256_hash
// property, so it must equal a plain digest of the value.
func ID(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
