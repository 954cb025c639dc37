package storage

import "context"

// NoneBackend models a host that does not allow persistent storage.
// Every operation fails with ErrUnavailable.
type NoneBackend struct{}

// NewNoneBackend returns the disabled backend.
func NewNoneBackend() *NoneBackend { return &NoneBackend{} }

func (NoneBackend) Name() string { return "none" }

func (NoneBackend) Load(context.Context, string) ([]byte, error) { return nil, ErrUnavailable }

func (NoneBackend) Save(context.Context, string, []byte) error { return ErrUnavailable }

func (NoneBackend) Delete(context.Context, string) error { return ErrUnavailable }

func (NoneBackend) Close() error { return nil }
