package fetch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/yndnr/trainly-go/internal/core/domain"
)

func TestResource_Initial(t *testing.T) {
	r := New(func(ctx context.Context) ([]string, error) {
		return []string{"a"}, nil
	}, WithFallback([]string{}))

	snap := r.Snapshot()
	if snap.Data == nil || len(snap.Data) != 0 {
		t.Errorf("Data = %v, want fallback", snap.Data)
	}
	if snap.IsLoading || snap.Err != "" {
		t.Errorf("Snapshot() = %+v", snap)
	}
}

func TestResource_Load(t *testing.T) {
	tests := []struct {
		name     string
		results  []error
		wantData int
		wantErr  string
	}{
		{"success", []error{nil}, 1, ""},
		{"failure uses fallback", []error{errors.New("boom")}, -1, "boom"},
		{"failure keeps last good", []error{nil, errors.New("boom")}, 1, "boom"},
		{"success clears error", []error{errors.New("boom"), nil}, 2, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			r := New(func(ctx context.Context) (int, error) {
				err := tt.results[calls]
				calls++
				if err != nil {
					return 0, err
				}
				return calls, nil
			}, WithFallback(-1))

			var lastErr error
			for range tt.results {
				lastErr = r.Load(context.Background())
			}

			snap := r.Snapshot()
			if snap.Data != tt.wantData {
				t.Errorf("Data = %d, want %d", snap.Data, tt.wantData)
			}
			if snap.Err != tt.wantErr {
				t.Errorf("Err = %q, want %q", snap.Err, tt.wantErr)
			}
			if (lastErr != nil) != (tt.wantErr != "") {
				t.Errorf("Load() error = %v", lastErr)
			}
		})
	}
}

func TestResource_IsLoading(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	r := New(func(ctx context.Context) (string, error) {
		close(started)
		<-release
		return "done", nil
	})

	done := make(chan error)
	go func() { done <- r.Load(context.Background()) }()
	<-started

	if !r.Snapshot().IsLoading {
		t.Error("IsLoading = false during load")
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if snap := r.Snapshot(); snap.IsLoading || snap.Data != "done" {
		t.Errorf("Snapshot() = %+v", snap)
	}
}

func TestResource_LatestLoadWins(t *testing.T) {
	slow := make(chan struct{})
	first := make(chan struct{})
	var calls atomic.Int32
	r := New(func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			close(first)
			<-slow
			return "stale", nil
		}
		return "fresh", nil
	})

	done := make(chan struct{})
	go func() {
		_ = r.Load(context.Background())
		close(done)
	}()
	<-first

	if err := r.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	close(slow)
	<-done

	if got := r.Snapshot().Data; got != "fresh" {
		t.Errorf("Data = %q, want fresh", got)
	}
}

func TestResource_Unauthorized(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCalls int32
	}{
		{"401", &domain.APIError{Status: 401, Detail: "expired"}, 1},
		{"sentinel", domain.ErrUnauthorized, 1},
		{"500", &domain.APIError{Status: 500}, 0},
		{"plain", errors.New("boom"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			r := New(func(ctx context.Context) (int, error) {
				return 0, tt.err
			}, WithUnauthorizedHandler[int](func(ctx context.Context) {
				calls.Add(1)
			}))

			_ = r.Load(context.Background())
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("handler called %d times, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestResource_SetDeps(t *testing.T) {
	var calls atomic.Int32
	r := New(func(ctx context.Context) (int32, error) {
		return calls.Add(1), nil
	}, WithDeps[int32]("page=1"))

	ran, err := r.SetDeps(context.Background(), "page=1")
	if err != nil || ran {
		t.Errorf("SetDeps(same) = %v, %v", ran, err)
	}
	ran, err = r.SetDeps(context.Background(), "page=2")
	if err != nil || !ran {
		t.Errorf("SetDeps(changed) = %v, %v", ran, err)
	}
	if calls.Load() != 1 {
		t.Errorf("producer called %d times, want 1", calls.Load())
	}

	if err := r.Refetch(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := r.Snapshot().Data; got != 2 {
		t.Errorf("Data = %d, want 2", got)
	}
}

func TestAll(t *testing.T) {
	ok := New(func(ctx context.Context) (string, error) { return "ok", nil })
	bad := New(func(ctx context.Context) (string, error) { return "", errors.New("down") }, WithFallback("cached"))

	err := All(context.Background(), ok, bad)
	if err == nil || err.Error() != "down" {
		t.Errorf("All() error = %v, want down", err)
	}
	if got := ok.Snapshot().Data; got != "ok" {
		t.Errorf("ok.Data = %q", got)
	}
	if snap := bad.Snapshot(); snap.Data != "cached" || snap.Err != "down" {
		t.Errorf("bad = %+v", snap)
	}
}

func TestResource_ConcurrentUse(t *testing.T) {
	r := New(func(ctx context.Context) (int, error) { return 1, nil })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); _ = r.Load(context.Background()) }()
		go func() { defer wg.Done(); _ = r.Snapshot() }()
	}
	wg.Wait()

	if snap := r.Snapshot(); snap.IsLoading || snap.Data != 1 {
		t.Errorf("Snapshot() = %+v", snap)
	}
}
