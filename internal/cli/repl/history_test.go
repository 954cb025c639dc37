package repl

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestHistory_Add(t *testing.T) {
	h := NewHistory("", 3)

	for _, cmd := range []string{"status", "status", "whoami", "", "plans", "logout"} {
		h.Add(cmd)
	}

	want := []string{"whoami", "plans", "logout"}
	if got := h.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}
	if got := h.Get(0); got != "logout" {
		t.Errorf("Get(0) = %q", got)
	}
	if got := h.Get(5); got != "" {
		t.Errorf("Get(5) = %q, want empty", got)
	}
}

func TestHistory_SkipsSecrets(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"login --email a@b.com --password hunter2", false},
		{"login -p hunter2", false},
		{"login --password=hunter2", false},
		{"login --email a@b.com", true},
		{"config set storage.passphrase x", true},
	}
	for _, tt := range tests {
		h := NewHistory("", 0)
		if got := h.Add(tt.line); got != tt.want {
			t.Errorf("Add(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestHistory_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history")

	h := NewHistory(path, 10)
	h.Add("status")
	h.Add("plans -o json")
	if err := h.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}

	loaded := NewHistory(path, 10)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := loaded.Entries(); !reflect.DeepEqual(got, h.Entries()) {
		t.Errorf("Entries() = %v, want %v", got, h.Entries())
	}
}

func TestHistory_LoadMissing(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "absent"), 0)
	if err := h.Load(); err != nil {
		t.Errorf("Load() error = %v", err)
	}
	if len(h.Entries()) != 0 {
		t.Error("expected empty history")
	}
	if h.maxSize != DefaultHistorySize {
		t.Errorf("maxSize = %d", h.maxSize)
	}
}

func TestHistory_NoFile(t *testing.T) {
	h := NewHistory("", 0)
	h.Add("status")
	if err := h.Save(); err != nil {
		t.Errorf("Save() error = %v", err)
	}
	if err := h.Load(); err != nil {
		t.Errorf("Load() error = %v", err)
	}
}
