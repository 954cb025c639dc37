package command

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/yndnr/trainly-go/internal/core/domain"
)

func decodeStatus(t *testing.T, out string) statusView {
	t.Helper()
	var v statusView
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode status %q: %v", out, err)
	}
	return v
}

func TestLoginWhoamiLogout(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("login", "-e", "ada@example.com", "-p", "secret")
	if !strings.Contains(out, "Signed in as Ada") {
		t.Errorf("login output = %q", out)
	}
	if _, err := os.Stat(h.credentialsPath()); err != nil {
		t.Errorf("credentials file not written: %v", err)
	}

	// A new run restores the session from the stored token.
	out = h.mustRun("-o", "json", "whoami")
	var user domain.Identity
	if err := json.Unmarshal([]byte(out), &user); err != nil {
		t.Fatalf("decode whoami: %v", err)
	}
	if user.Email != "ada@example.com" || user.Name != "Ada" {
		t.Errorf("whoami = %+v", user)
	}

	st := decodeStatus(t, h.mustRun("-o", "json", "status"))
	if st.Phase != domain.PhaseAuthenticated || !st.TokenStored || st.User != "ada@example.com" {
		t.Errorf("status = %+v", st)
	}
	if st.TokenExpiry != "unknown" {
		t.Errorf("TokenExpiry = %q, want unknown for an opaque token", st.TokenExpiry)
	}
	if st.Server != h.api.URL || st.Storage != "file" || !st.StorageOK {
		t.Errorf("status = %+v", st)
	}

	h.mustRun("logout")
	if !strings.Contains(h.errOut.String(), "Signed out. Sign in again at /login") {
		t.Errorf("logout stderr = %q", h.errOut.String())
	}

	err := h.run("whoami")
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Errorf("whoami after logout: err = %v, want ErrNotAuthenticated", err)
	}
}

func TestLoginFailure(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		want     string
	}{
		{"wrong password", "ada@example.com", "nope", "Incorrect email or password"},
		{"unknown user", "eve@example.com", "secret", "Incorrect email or password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			err := h.run("login", "-e", tt.email, "-p", tt.password)
			if err == nil {
				t.Fatal("login succeeded")
			}
			if err.Error() != tt.want {
				t.Errorf("error = %q, want %q", err, tt.want)
			}
			if _, statErr := os.Stat(h.credentialsPath()); statErr == nil {
				t.Error("credentials written after failed login")
			}
		})
	}
}

func TestLoginPromptsForMissingValues(t *testing.T) {
	h := newHarness(t)
	h.stdin = "ada@example.com\nsecret\n"

	out := h.mustRun("login")
	if !strings.Contains(out, "Signed in as Ada") {
		t.Errorf("login output = %q", out)
	}
	if got := h.errOut.String(); !strings.Contains(got, "Email: ") || !strings.Contains(got, "Password: ") {
		t.Errorf("prompts = %q", got)
	}
}

func TestLoginPasswordFromEnv(t *testing.T) {
	h := newHarness(t)
	t.Setenv("TRAINLY_PASSWORD", "secret")

	h.mustRun("login", "-e", "ada@example.com")
	if strings.Contains(h.errOut.String(), "Password: ") {
		t.Error("prompted for a password supplied by the environment")
	}
}

func TestLoginEmptyInput(t *testing.T) {
	h := newHarness(t)
	h.stdin = "\n\n"

	err := h.run("login")
	if err == nil {
		t.Fatal("login with empty credentials succeeded")
	}
	if h.api.meHits.Load() != 0 {
		t.Error("identity service called for invalid input")
	}
	if !strings.Contains(err.Error(), "cannot be blank") {
		t.Errorf("error = %q, want the validation message", err)
	}
}

func TestRegister(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("register", "-e", "bob@example.com", "-p", "pw", "-n", "Bob")
	if !strings.Contains(out, "Welcome, Bob") {
		t.Errorf("register output = %q", out)
	}

	st := decodeStatus(t, h.mustRun("-o", "json", "status"))
	if st.User != "bob@example.com" {
		t.Errorf("status user = %q", st.User)
	}

	h.mustRun("logout")
	err := h.run("register", "-e", "bob@example.com", "-p", "pw", "-n", "Bob")
	if err == nil || err.Error() != "Email already registered" {
		t.Errorf("duplicate register err = %v", err)
	}
}

func TestStartupClearsRejectedToken(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.api.revokeAll()

	st := decodeStatus(t, h.mustRun("-o", "json", "status"))
	if st.Phase != domain.PhaseAnonymous {
		t.Errorf("phase = %q, want anonymous", st.Phase)
	}
	if st.TokenStored {
		t.Error("rejected token still stored")
	}
}

func TestStartupChecksIdentityOnce(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.api.meHits.Store(0)

	h.mustRun("status")
	if got := h.api.meHits.Load(); got != 1 {
		t.Errorf("/auth/me hits = %d, want 1", got)
	}
}

func TestStatusMetrics(t *testing.T) {
	h := newHarness(t)
	h.login()

	out := h.mustRun("status", "--metrics")
	for _, want := range []string{
		`trainly_session_operations_total{op="initialize",outcome="success"} 1`,
		"trainly_session_initialized 1",
		"trainly_session_authenticated 1",
		"trainly_identity_requests_total",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("status --metrics missing %q\n%s", want, out)
		}
	}
}

func TestStatusAnonymous(t *testing.T) {
	h := newHarness(t)

	st := decodeStatus(t, h.mustRun("-o", "json", "status"))
	if st.Phase != domain.PhaseAnonymous || st.TokenStored || st.User != "" {
		t.Errorf("status = %+v", st)
	}
}
