package adaptive

import (
	"errors"
	"fmt"
	"runtime"
)

// CipherType identifies the cipher algorithm.
type CipherType string

const (
	CipherAESGCM   CipherType = "aes-gcm"
	CipherChaCha20 CipherType = "chacha20-poly1305"
)

// KeySize is the key length accepted by NewSealer.
const KeySize = 32

const envelopeVersion byte = 1

var cipherIDs = map[CipherType]byte{
	CipherAESGCM:   1,
	CipherChaCha20: 2,
}

var (
	// ErrInvalidKey is returned for keys that are not KeySize bytes.
	ErrInvalidKey = errors.New("adaptive: key must be 32 bytes")
	// ErrMalformed is returned when sealed data has no valid envelope.
	ErrMalformed = errors.New("adaptive: malformed sealed data")
	// ErrDecrypt is returned when authentication fails.
	ErrDecrypt = errors.New("adaptive: message authentication failed")
)

// Cipher provides authenticated encryption.
type Cipher interface {
	Type() CipherType
	Encrypt(plaintext, additionalData []byte) ([]byte, error)
	Decrypt(ciphertext, additionalData []byte) ([]byte, error)
	NonceSize() int
	Overhead() int
}

// New creates a cipher with the given key, choosing the algorithm for
// this platform.
func New(key []byte) (Cipher, error) {
	return NewWithType(key, Preferred())
}

// NewWithType creates a cipher of the specified type.
func NewWithType(key []byte, cipherType CipherType) (Cipher, error) {
	aead, err := newAEAD(cipherType, key)
	if err != nil {
		return nil, err
	}
	return &aeadCipher{typ: cipherType, aead: aead}, nil
}

// Preferred returns the cipher used for new data on this platform.
// Go's crypto/aes is hardware accelerated on amd64 and arm64.
func Preferred() CipherType {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		return CipherAESGCM
	default:
		return CipherChaCha20
	}
}

// Sealer wraps a key and produces self-describing envelopes.
type Sealer struct {
	key       []byte
	preferred CipherType
}

// NewSealer creates a Sealer for a 32 byte key.
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return &Sealer{key: k, preferred: Preferred()}, nil
}

// WithCipher returns a copy of s that seals with the given cipher.
func (s *Sealer) WithCipher(t CipherType) (*Sealer, error) {
	if _, ok := cipherIDs[t]; !ok {
		return nil, fmt.Errorf("adaptive: unknown cipher type %q", t)
	}
	return &Sealer{key: s.key, preferred: t}, nil
}

// Seal encrypts plaintext bound to aad.
func (s *Sealer) Seal(plaintext, aad []byte) ([]byte, error) {
	c, err := NewWithType(s.key, s.preferred)
	if err != nil {
		return nil, err
	}
	ct, err := c.Encrypt(plaintext, aad)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 2+len(ct))
	out = append(out, envelopeVersion, cipherIDs[s.preferred])
	return append(out, ct...), nil
}

// Open decrypts data produced by Seal with the same key and aad.
func (s *Sealer) Open(sealed, aad []byte) ([]byte, error) {
	if len(sealed) < 2 || sealed[0] != envelopeVersion {
		return nil, ErrMalformed
	}

	var cipherType CipherType
	for t, id := range cipherIDs {
		if id == sealed[1] {
			cipherType = t
		}
	}
	if cipherType == "" {
		return nil, ErrMalformed
	}

	c, err := NewWithType(s.key, cipherType)
	if err != nil {
		return nil, err
	}
	return c.Decrypt(sealed[2:], aad)
}
