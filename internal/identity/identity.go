// Package identity derives short stable fingerprints from remote identifiers.
//
// A fingerprint is the join key between a remote playlist item and its local
// shadow entry. It is deterministic across runs, treated as opaque, and used
// only for equality comparison and as a map key.
package identity

import (
	"crypto/sha256"
	"encoding/base32"
)

// FingerprintLength is the number of base32 characters kept from the digest.
// Short enough to scan by eye in a shadow file, long enough that collisions
// are not expected in practice. Collisions are not detected on insert.
const FingerprintLength = 10

// Fingerprint returns a 10-character base32 token derived from the SHA-256
// digest of id.
func Fingerprint(id string) string {
	sum := sha256.Sum256([]byte(id))
	return base32.StdEncoding.EncodeToString(sum[:])[:FingerprintLength]
}
