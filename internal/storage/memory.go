package storage

import (
	"context"

	"github.com/yndnr/trainly-go/internal/storage/memory"
)

// MemoryBackend keeps values in process memory.
type MemoryBackend struct {
	store *memory.Store
}

// NewMemoryBackend creates an empty memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{store: memory.New()}
}

func (b *MemoryBackend) Name() string { return "memory" }

func (b *MemoryBackend) Load(_ context.Context, key string) ([]byte, error) {
	v, ok := b.store.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (b *MemoryBackend) Save(_ context.Context, key string, value []byte) error {
	b.store.Set(key, value)
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.store.Delete(key)
	return nil
}

func (b *MemoryBackend) Close() error { return nil }
