package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/yndnr/trainly-go/internal/telemetry/metric"
)

func newTestBadger(t *testing.T, dir string) *BadgerBackend {
	t.Helper()
	b, err := NewBadgerBackend(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewBadgerBackend() error = %v", err)
	}
	return b
}

func TestBadgerBackend_BasicOperations(t *testing.T) {
	ctx := context.Background()
	b := newTestBadger(t, t.TempDir())
	defer b.Close()

	if _, err := b.Load(ctx, TokenKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load on empty db error = %v, want ErrNotFound", err)
	}

	if err := b.Save(ctx, TokenKey, []byte("tok")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := b.Load(ctx, TokenKey)
	if err != nil || string(got) != "tok" {
		t.Fatalf("Load() = %q, %v", got, err)
	}

	if err := b.Delete(ctx, TokenKey); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := b.Load(ctx, TokenKey); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after Delete error = %v, want ErrNotFound", err)
	}
	if err := b.Delete(ctx, TokenKey); err != nil {
		t.Errorf("Delete of absent key error = %v", err)
	}
}

func TestBadgerBackend_Persistence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	b := newTestBadger(t, dir)
	if err := b.Save(ctx, TokenKey, []byte("persisted")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened := newTestBadger(t, dir)
	defer reopened.Close()

	got, err := reopened.Load(ctx, TokenKey)
	if err != nil || string(got) != "persisted" {
		t.Errorf("Load() after reopen = %q, %v", got, err)
	}
}

func TestBadgerBackend_LockedDirIsUnavailable(t *testing.T) {
	dir := t.TempDir()
	b := newTestBadger(t, dir)
	defer b.Close()

	_, err := NewBadgerBackend(dir, nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("second open error = %v, want ErrUnavailable", err)
	}
}

func TestBadgerBackend_Collectors(t *testing.T) {
	b := newTestBadger(t, t.TempDir())
	defer b.Close()

	reg := metric.NewRegistry()
	for _, c := range b.Collectors() {
		if err := reg.Register(c); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
	}
}

func TestBadgerBackend_WithTokenStore(t *testing.T) {
	ctx := context.Background()
	b := newTestBadger(t, t.TempDir())
	s := NewTokenStore(b)
	defer s.Close()

	s.Set(ctx, "tok")
	if got, ok := s.Get(ctx); !ok || got != "tok" {
		t.Errorf("Get = %q, %v", got, ok)
	}
	if !s.Available(ctx) {
		t.Error("badger store should be available")
	}
}
