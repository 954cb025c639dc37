package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultHistorySize bounds the history when no size is configured.
const DefaultHistorySize = 1000

// History is the shell's command history, oldest first.
type History struct {
	mu      sync.Mutex
	entries []string
	maxSize int
	file    string
}

// NewHistory creates a history persisted at file. maxSize <= 0 uses
// DefaultHistorySize.
func NewHistory(file string, maxSize int) *History {
	if maxSize <= 0 {
		maxSize = DefaultHistorySize
	}
	return &History{
		entries: make([]string, 0),
		maxSize: maxSize,
		file:    file,
	}
}

// Add appends cmd, skipping an immediate repeat. Lines that look like they
// carry a password are not recorded.
func (h *History) Add(cmd string) bool {
	if cmd == "" || carriesSecret(cmd) {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n > 0 && h.entries[n-1] == cmd {
		return false
	}
	h.entries = append(h.entries, cmd)
	if over := len(h.entries) - h.maxSize; over > 0 {
		h.entries = h.entries[over:]
	}
	return true
}

// Entries returns a copy of the history, oldest first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.entries...)
}

// Get returns the entry at index, 0 being the most recent.
func (h *History) Get(index int) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if index < 0 || index >= len(h.entries) {
		return ""
	}
	return h.entries[len(h.entries)-1-index]
}

// Load reads the history file. A missing file is not an error.
func (h *History) Load() error {
	if h.file == "" {
		return nil
	}
	f, err := os.Open(h.file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		h.Add(scanner.Text())
	}
	return scanner.Err()
}

// Save writes the history file with 0600 permissions.
func (h *History) Save() error {
	if h.file == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(h.file), 0o700); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	var b strings.Builder
	for _, entry := range h.Entries() {
		b.WriteString(entry)
		b.WriteByte('\n')
	}

	tmp := h.file + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.Rename(tmp, h.file); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// carriesSecret reports whether a line passes a password on the command
// line.
func carriesSecret(line string) bool {
	for _, field := range strings.Fields(line) {
		name, _, _ := strings.Cut(strings.TrimLeft(field, "-"), "=")
		if strings.HasPrefix(field, "-") && (name == "password" || name == "p") {
			return true
		}
	}
	return false
}
