package scanner

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// contentDigest returns the SHA3-256 hex digest of a playbook file's raw
// bytes. The compare command uses digests to tell moved files apart from
// edited ones, so the digest covers the bytes as stored on disk, never
// the parsed tree.
func contentDigest(data []byte) string {
	hash := sha3.Sum256(data)
	return hex.EncodeToString(hash[:])
}
