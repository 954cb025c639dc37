package storage

import (
	"context"
	"errors"
)

// TokenKey is the key the session token is stored under.
const TokenKey = "auth/token"

var (
	// ErrNotFound is returned when no value is stored under the key.
	ErrNotFound = errors.New("storage: not found")
	// ErrUnavailable is returned when the backend cannot be used at all.
	ErrUnavailable = errors.New("storage: unavailable")
	// ErrCorrupt is returned when stored data cannot be decoded.
	ErrCorrupt = errors.New("storage: corrupt data")
)

// Backend persists values under string keys.
//
// Implementations must be safe for concurrent use. Concurrent writers to
// the same key resolve last-write-wins.
type Backend interface {
	// Name identifies the backend in logs, metrics and status output.
	Name() string
	// Load returns ErrNotFound when key has no value.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	// Delete of an absent key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}
