package command

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestShellPipedInput(t *testing.T) {
	h := newHarness(t)
	h.stdin = strings.Join([]string{
		"login -e ada@example.com -p secret",
		"whoami",
		"bogus",
		"shell",
		"logout",
		"exit",
		"status",
	}, "\n") + "\n"

	out := h.mustRun("shell")
	errOut := h.errOut.String()

	if !strings.Contains(out, "Signed in as Ada") {
		t.Errorf("shell output missing login:\n%s", out)
	}
	if !strings.Contains(out, "ada@example.com") {
		t.Errorf("shell output missing whoami:\n%s", out)
	}
	if !strings.Contains(errOut, "already in the shell") {
		t.Errorf("nested shell not refused:\n%s", errOut)
	}
	if !strings.Contains(errOut, "Signed out") {
		t.Errorf("logout hint missing:\n%s", errOut)
	}

	// One login, one /auth/me: the whole shell shares a single session.
	if got := h.api.meHits.Load(); got != 1 {
		t.Errorf("/auth/me hits = %d, want 1", got)
	}

	data, err := os.ReadFile(filepath.Join(h.dir, "history"))
	if err != nil {
		t.Fatalf("history not saved: %v", err)
	}
	history := string(data)
	if strings.Contains(history, "secret") {
		t.Errorf("history kept a password:\n%s", history)
	}
	if !strings.Contains(history, "whoami") {
		t.Errorf("history = %q", history)
	}
}

func TestShellPromptsReadFromSameInput(t *testing.T) {
	h := newHarness(t)
	h.stdin = "login\nada@example.com\nsecret\nwhoami\n"

	out := h.mustRun("-o", "json", "shell")
	if !strings.Contains(out, "Signed in as Ada") {
		t.Errorf("shell output missing login:\n%s", out)
	}
	if !strings.Contains(out, `"email": "ada@example.com"`) {
		t.Errorf("whoami did not run after the prompts:\n%s", out)
	}
}

func TestShellEOF(t *testing.T) {
	h := newHarness(t)
	h.stdin = ""

	h.mustRun("shell")
}

func TestShellPromptFollowsSession(t *testing.T) {
	h := newHarness(t)
	h.login()

	rt, err := NewRuntime(RuntimeOptions{
		ConfigPath: h.cfgPath,
		In:         strings.NewReader(""),
		Out:        &h.out,
		Err:        &h.errOut,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer rt.Close()

	prompt := shellPrompt(rt)
	if got := prompt(); got != "trainly> " {
		t.Errorf("prompt before init = %q", got)
	}

	rt.Session.Initialize(t.Context())
	if got := prompt(); got != "trainly(Ada)> " {
		t.Errorf("prompt after init = %q", got)
	}

	rt.Session.Logout(t.Context())
	if got := prompt(); got != "trainly> " {
		t.Errorf("prompt after logout = %q", got)
	}
}
