package fetch

import (
	"context"
	"slices"
	"sync"

	"github.com/yndnr/trainly-go/internal/core/domain"
)

// Producer yields the resource value.
type Producer[T any] func(ctx context.Context) (T, error)

// Result is a snapshot of a Resource.
type Result[T any] struct {
	Data      T      `json:"data" yaml:"data"`
	IsLoading bool   `json:"is_loading" yaml:"is_loading"`
	Err       string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Option configures a Resource.
type Option[T any] func(*Resource[T])

// WithFallback sets the value reported before the first successful load
// and after failures when no good value exists yet.
func WithFallback[T any](v T) Option[T] {
	return func(r *Resource[T]) {
		r.data = v
	}
}

// WithUnauthorizedHandler registers fn for loads failing with a 401-class
// error. fn runs once per failed load, after the snapshot is updated.
func WithUnauthorizedHandler[T any](fn func(ctx context.Context)) Option[T] {
	return func(r *Resource[T]) {
		r.onUnauthorized = fn
	}
}

// WithDeps sets the initial dependency keys compared by SetDeps.
func WithDeps[T any](keys ...string) Option[T] {
	return func(r *Resource[T]) {
		r.deps = slices.Clone(keys)
	}
}

// Resource wraps a Producer. It is safe for concurrent use; when loads
// overlap, the most recently started one decides the snapshot.
type Resource[T any] struct {
	producer       Producer[T]
	onUnauthorized func(ctx context.Context)

	mu       sync.Mutex
	data     T
	err      string
	inFlight int
	started  uint64
	applied  uint64
	deps     []string
}

// New creates a Resource. Nothing is loaded until Load is called.
func New[T any](producer Producer[T], opts ...Option[T]) *Resource[T] {
	r := &Resource[T]{producer: producer}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Snapshot returns the current value, loading flag and error message.
func (r *Resource[T]) Snapshot() Result[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Result[T]{Data: r.data, IsLoading: r.inFlight > 0, Err: r.err}
}

// Load runs the producer and records its outcome. On failure Data is kept
// and Err carries the message; the error is also returned.
func (r *Resource[T]) Load(ctx context.Context) error {
	r.mu.Lock()
	r.inFlight++
	r.started++
	seq := r.started
	r.mu.Unlock()

	v, err := r.producer(ctx)

	r.mu.Lock()
	r.inFlight--
	if seq > r.applied {
		r.applied = seq
		if err != nil {
			r.err = err.Error()
		} else {
			r.data = v
			r.err = ""
		}
	}
	r.mu.Unlock()

	if err != nil && r.onUnauthorized != nil && domain.IsUnauthorized(err) {
		r.onUnauthorized(ctx)
	}
	return err
}

// Refetch reloads the resource.
func (r *Resource[T]) Refetch(ctx context.Context) error {
	return r.Load(ctx)
}

// SetDeps replaces the dependency keys and reloads when they changed.
// It reports whether a load ran.
func (r *Resource[T]) SetDeps(ctx context.Context, keys ...string) (bool, error) {
	r.mu.Lock()
	if slices.Equal(r.deps, keys) {
		r.mu.Unlock()
		return false, nil
	}
	r.deps = slices.Clone(keys)
	r.mu.Unlock()

	return true, r.Load(ctx)
}
