package connection

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/yndnr/trainly-go/internal/storage"
)

// mockServer is a test identity service with per-path handlers.
type mockServer struct {
	*httptest.Server
	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	hits     map[string]*atomic.Int32
}

func newMockServer(t *testing.T) *mockServer {
	t.Helper()
	m := &mockServer{
		handlers: make(map[string]http.HandlerFunc),
		hits:     make(map[string]*atomic.Int32),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		handler, ok := m.handlers[r.URL.Path]
		hits := m.hits[r.URL.Path]
		m.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(m.Close)
	return m
}

func (m *mockServer) handle(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
	m.hits[path] = &atomic.Int32{}
}

func (m *mockServer) count(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.hits[path]; ok {
		return int(h.Load())
	}
	return 0
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResponse(w http.ResponseWriter, status int, detail string) {
	jsonResponse(w, status, map[string]string{"detail": detail})
}

// newTestIdentityClient returns a client for server backed by a memory
// token store.
func newTestIdentityClient(server *mockServer) (*IdentityClient, *storage.TokenStore) {
	tokens := newTestTokenStore()
	return NewIdentityClient(NewHTTPClient(server.URL), tokens, Endpoints{}), tokens
}

func bearerOf(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func newTestTokenStore() *storage.TokenStore {
	return storage.NewTokenStore(storage.NewMemoryBackend())
}
