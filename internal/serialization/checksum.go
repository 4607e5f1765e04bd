package serialization

import (
	"crypto/sha256"
	"encoding/hex"
)

// ComputeChecksum computes the SHA-256 checksum of data as a hex string.
func ComputeChecksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ValidateChecksum compares a computed checksum against a stored one.
// An empty stored checksum is accepted.
func ValidateChecksum(data []byte, stored string) error {
	if stored == "" {
		return nil
	}
	if ComputeChecksum(data) != stored {
		return ErrChecksumMismatch
	}
	return nil
}
