package adaptive

import (
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

// Argon2id parameters for passphrase keys. They favour an interactive
// CLI start-up over offline cracking cost.
const (
	argonTime    = 2
	argonMemory  = 32 * 1024
	argonThreads = 2
)

// SaltSize is the recommended salt length for DeriveKey.
const SaltSize = 16

// DeriveKey stretches a passphrase into a KeySize key with Argon2id.
func DeriveKey(passphrase string, salt []byte) ([]byte, error) {
	if passphrase == "" {
		return nil, errors.New("adaptive: empty passphrase")
	}
	if len(salt) < 8 {
		return nil, errors.New("adaptive: salt too short")
	}
	return argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, KeySize), nil
}

// SubKey derives a purpose-bound KeySize key from master with HKDF-SHA256.
func SubKey(master []byte, info string) ([]byte, error) {
	if len(master) == 0 {
		return nil, ErrInvalidKey
	}
	out := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(info)), out); err != nil {
		return nil, err
	}
	return out, nil
}
