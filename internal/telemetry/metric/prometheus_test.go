package metric

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/trainly-go/internal/core/domain"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestSessionOpMetrics(t *testing.T) {
	r := NewRegistry()

	r.RecordSessionOp("login", OutcomeSuccess)
	r.RecordSessionOp("login", OutcomeSuccess)
	r.RecordSessionOp("login", OutcomeFailure)
	r.RecordSessionOp("initialize", OutcomeNoop)

	if got := testutil.ToFloat64(r.sessionOps.WithLabelValues("login", OutcomeSuccess)); got != 2 {
		t.Errorf("login success = %v, want 2", got)
	}

	body := scrape(t, r)
	if !strings.Contains(body, `trainly_session_operations_total{op="login",outcome="failure"} 1`) {
		t.Errorf("expected login failure counter in:\n%s", body)
	}
	if !strings.Contains(body, `trainly_session_operations_total{op="initialize",outcome="noop"} 1`) {
		t.Error("expected initialize noop counter")
	}
}

func TestIdentityRequestMetrics(t *testing.T) {
	r := NewRegistry()

	r.ObserveIdentityRequest("me", "200", 0.01)
	r.ObserveIdentityRequest("login", "401", 0.02)
	r.ObserveIdentityRequest("login", "error", 0.5)

	body := scrape(t, r)
	if !strings.Contains(body, `trainly_identity_requests_total{endpoint="login",status="401"} 1`) {
		t.Error("expected login 401 counter")
	}
	if !strings.Contains(body, `trainly_identity_request_duration_seconds_count{endpoint="login"} 2`) {
		t.Error("expected login histogram count 2")
	}
}

func TestTokenStoreErrorMetrics(t *testing.T) {
	r := NewRegistry()
	r.RecordTokenStoreError("file", "load")

	if got := testutil.ToFloat64(r.tokenStoreErrors.WithLabelValues("file", "load")); got != 1 {
		t.Errorf("token store errors = %v, want 1", got)
	}
}

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry
	r.RecordSessionOp("login", OutcomeSuccess)
	r.ObserveIdentityRequest("me", "200", 0.1)
	r.RecordTokenStoreError("badger", "save")
}

type fixedState domain.SessionState

func (f fixedState) State() domain.SessionState { return domain.SessionState(f) }

func TestSessionCollector(t *testing.T) {
	r := NewRegistry()
	src := fixedState{IsInitialized: true, User: &domain.Identity{ID: "u1"}}
	if err := r.Register(NewSessionCollector(src)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	var buf bytes.Buffer
	if err := r.WriteText(&buf); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"trainly_session_initialized 1",
		"trainly_session_authenticated 1",
		"trainly_session_loading 0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}

func TestConcurrentMetricUpdates(t *testing.T) {
	r := NewRegistry()

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				r.RecordSessionOp("login", OutcomeSuccess)
				r.ObserveIdentityRequest("me", "200", 0.001)
			}
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	if got := testutil.ToFloat64(r.sessionOps.WithLabelValues("login", OutcomeSuccess)); got != 1000 {
		t.Errorf("login success = %v, want 1000", got)
	}
}
