package token

import (
	"crypto/rand"
	"fmt"
	"io"
)

// GenerateBytes returns n bytes from the system CSPRNG. n may be zero.
func GenerateBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("token: negative length %d", n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("token: read random bytes: %w", err)
	}
	return b, nil
}
