package storage

import (
	"context"
	"errors"

	"github.com/yndnr/trainly-go/internal/telemetry/logger"
	"github.com/yndnr/trainly-go/internal/telemetry/metric"
	"github.com/yndnr/trainly-go/pkg/token"
)

// TokenStore persists the session bearer token.
//
// None of its operations fail toward the caller: a backend that cannot be
// read reports "no token", a failed write or delete is logged and
// counted. Concurrent writers resolve last-write-wins.
type TokenStore struct {
	backend Backend
	logger  logger.Logger
	metrics *metric.Registry
}

// TokenStoreOption configures a TokenStore.
type TokenStoreOption func(*TokenStore)

// WithLogger sets the logger for backend failures.
func WithLogger(l logger.Logger) TokenStoreOption {
	return func(s *TokenStore) {
		s.logger = l
	}
}

// WithMetrics counts backend failures in m.
func WithMetrics(m *metric.Registry) TokenStoreOption {
	return func(s *TokenStore) {
		s.metrics = m
	}
}

// NewTokenStore wraps backend. A nil backend behaves like NoneBackend.
func NewTokenStore(backend Backend, opts ...TokenStoreOption) *TokenStore {
	if backend == nil {
		backend = NewNoneBackend()
	}
	s := &TokenStore{
		backend: backend,
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the stored token, or false when there is none or the
// backend cannot be read.
func (s *TokenStore) Get(ctx context.Context) (string, bool) {
	data, err := s.backend.Load(ctx, TokenKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.fail(ctx, "get", err)
		}
		return "", false
	}
	if len(data) == 0 {
		return "", false
	}
	return string(data), true
}

// Set stores tok. An empty tok clears the store.
func (s *TokenStore) Set(ctx context.Context, tok string) {
	if tok == "" {
		s.Clear(ctx)
		return
	}
	if err := s.backend.Save(ctx, TokenKey, []byte(tok)); err != nil {
		s.fail(ctx, "set", err, "fingerprint", token.Fingerprint(tok))
		return
	}
	s.logger.WithContext(ctx).Debug("token stored",
		"backend", s.backend.Name(),
		"fingerprint", token.Fingerprint(tok))
}

// Clear removes the stored token.
func (s *TokenStore) Clear(ctx context.Context) {
	if err := s.backend.Delete(ctx, TokenKey); err != nil && !errors.Is(err, ErrNotFound) {
		s.fail(ctx, "clear", err)
		return
	}
	s.logger.WithContext(ctx).Debug("token cleared", "backend", s.backend.Name())
}

// Available reports whether the backend can currently be read.
func (s *TokenStore) Available(ctx context.Context) bool {
	_, err := s.backend.Load(ctx, TokenKey)
	return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrCorrupt)
}

// Backend returns the name of the underlying backend.
func (s *TokenStore) Backend() string {
	return s.backend.Name()
}

// Close releases the backend.
func (s *TokenStore) Close() error {
	return s.backend.Close()
}

func (s *TokenStore) fail(ctx context.Context, op string, err error, args ...any) {
	s.metrics.RecordTokenStoreError(s.backend.Name(), op)

	attrs := append([]any{"backend", s.backend.Name(), "op", op, "error", err}, args...)
	if errors.Is(err, ErrUnavailable) {
		s.logger.WithContext(ctx).Debug("token store unavailable", attrs...)
		return
	}
	s.logger.WithContext(ctx).Warn("token store operation failed", attrs...)
}
