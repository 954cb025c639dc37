package token

import (
	"crypto/sha256"
	"encoding/hex"
)

// fingerprintLen is the number of hex characters kept from the digest.
const fingerprintLen = 12

// Fingerprint returns "sha256:" followed by a prefix of the token's
// SHA-256 digest. Empty tokens have an empty fingerprint.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	h := sha256.Sum256([]byte(token))
	return "sha256:" + hex.EncodeToString(h[:])[:fingerprintLen]
}
