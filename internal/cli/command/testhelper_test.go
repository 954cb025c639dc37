package command

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/yndnr/trainly-go/internal/core/domain"
)

// fakeAPI is an in-process Trainly API with real token semantics.
type fakeAPI struct {
	*httptest.Server

	mu        sync.Mutex
	users     map[string]fakeUser // by email
	tokens    map[string]string   // token -> email
	nextToken int
	plans     []domain.TrainingPlan
	// plansStatus, when non-zero, is returned by /plans instead of the list.
	plansStatus int

	meHits atomic.Int32
}

type fakeUser struct {
	identity domain.Identity
	password string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{
		users:  make(map[string]fakeUser),
		tokens: make(map[string]string),
		plans: []domain.TrainingPlan{
			{ID: "p1", Title: "First 5k", Level: "beginner", Weeks: 8, Tier: domain.PlanFree},
			{ID: "p2", Title: "Marathon Build", Level: "advanced", Weeks: 16, Tier: domain.PlanPro},
		},
	}
	api.addUser("ada@example.com", "secret", "Ada")

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", api.login)
	mux.HandleFunc("POST /auth/register", api.register)
	mux.HandleFunc("GET /auth/me", api.me)
	mux.HandleFunc("GET /plans", api.listPlans)
	api.Server = httptest.NewServer(mux)
	t.Cleanup(api.Close)
	return api
}

func (a *fakeAPI) addUser(email, password, name string) {
	a.users[email] = fakeUser{
		identity: domain.Identity{
			ID:    fmt.Sprintf("u-%d", len(a.users)+1),
			Email: email,
			Name:  name,
			Plan:  domain.PlanFree,
		},
		password: password,
	}
}

func (a *fakeAPI) issue(email string) string {
	a.nextToken++
	tok := fmt.Sprintf("tok-%d", a.nextToken)
	a.tokens[tok] = email
	return tok
}

// revokeAll invalidates every issued token.
func (a *fakeAPI) revokeAll() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tokens = make(map[string]string)
}

func (a *fakeAPI) setPlansStatus(status int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.plansStatus = status
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func (a *fakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	u, ok := a.users[req.Email]
	if !ok || u.password != req.Password {
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": a.issue(req.Email), "token_type": "bearer"})
}

func (a *fakeAPI) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.users[req.Email]; exists {
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	a.addUser(req.Email, req.Password, req.Name)
	writeJSON(w, http.StatusOK, map[string]string{"access_token": a.issue(req.Email), "token_type": "bearer"})
}

func (a *fakeAPI) authorize(w http.ResponseWriter, r *http.Request) (fakeUser, bool) {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	a.mu.Lock()
	defer a.mu.Unlock()
	email, ok := a.tokens[tok]
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return fakeUser{}, false
	}
	return a.users[email], true
}

func (a *fakeAPI) me(w http.ResponseWriter, r *http.Request) {
	a.meHits.Add(1)
	u, ok := a.authorize(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, u.identity)
}

func (a *fakeAPI) listPlans(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.authorize(w, r); !ok {
		return
	}
	a.mu.Lock()
	status, plans := a.plansStatus, a.plans
	a.mu.Unlock()
	if status != 0 {
		writeDetail(w, status, http.StatusText(status))
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

// harness runs the CLI against a fakeAPI with an isolated config dir.
type harness struct {
	t       *testing.T
	api     *fakeAPI
	dir     string
	cfgPath string
	stdin   string

	out    bytes.Buffer
	errOut bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api := newFakeAPI(t)
	dir := t.TempDir()

	h := &harness{
		t:       t,
		api:     api,
		dir:     dir,
		cfgPath: filepath.Join(dir, "cli.yaml"),
	}
	h.writeConfig("")
	return h
}

// writeConfig writes the harness config followed by extra YAML lines.
func (h *harness) writeConfig(extra string) {
	h.t.Helper()
	cfg := fmt.Sprintf(`server: %s
storage:
  backend: file
  path: %s
shell:
  history_file: %s
`, h.api.URL, h.credentialsPath(), filepath.Join(h.dir, "history")) + extra

	if err := os.WriteFile(h.cfgPath, []byte(cfg), 0o600); err != nil {
		h.t.Fatal(err)
	}
}

func (h *harness) credentialsPath() string {
	return filepath.Join(h.dir, "credentials")
}

// run executes one CLI invocation; each call is a fresh process-like run.
func (h *harness) run(args ...string) error {
	h.t.Helper()
	h.out.Reset()
	h.errOut.Reset()

	app := App()
	app.Writer = &h.out
	app.ErrWriter = &h.errOut
	app.Reader = strings.NewReader(h.stdin)

	full := append([]string{"trainly-cli", "--config", h.cfgPath}, args...)
	return app.Run(full)
}

// mustRun fails the test when the invocation errors.
func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	if err := h.run(args...); err != nil {
		h.t.Fatalf("run %v: %v\nstderr: %s", args, err, h.errOut.String())
	}
	return h.out.String()
}

func (h *harness) login() {
	h.t.Helper()
	h.mustRun("login", "-e", "ada@example.com", "-p", "secret")
}
