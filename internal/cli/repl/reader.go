package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// LineReader reads one line at a time. *readline.Instance implements it.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	SaveHistory(line string) error
	Close() error
}

// ErrInterrupt is returned by a LineReader when the user pressed Ctrl-C.
var ErrInterrupt = readline.ErrInterrupt

// TerminalConfig configures NewTerminalReader.
type TerminalConfig struct {
	Prompt    string
	Completer readline.AutoCompleter
	// HistorySize bounds the in-memory recall list.
	HistorySize int
	Stdin       io.ReadCloser
	Stdout      io.Writer
	Stderr      io.Writer
}

// NewTerminalReader creates a readline-backed reader with completion. The
// history file is managed by History, not by readline.
func NewTerminalReader(cfg TerminalConfig) (*readline.Instance, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 cfg.Prompt,
		AutoComplete:           cfg.Completer,
		HistoryLimit:           cfg.HistorySize,
		DisableAutoSaveHistory: true,
		InterruptPrompt:        "^C",
		EOFPrompt:              "exit",
		Stdin:                  cfg.Stdin,
		Stdout:                 cfg.Stdout,
		Stderr:                 cfg.Stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("init line editor: %w", err)
	}
	return rl, nil
}

// ScanReader is a LineReader for non-interactive input such as a pipe.
type ScanReader struct {
	r      *bufio.Reader
	out    io.Writer
	prompt string
}

// NewScanReader reads lines from r and writes prompts to out. A nil out
// suppresses prompts. A *bufio.Reader is used as is, so other readers of
// it (credential prompts) see the lines the shell has not consumed.
func NewScanReader(r io.Reader, out io.Writer) *ScanReader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &ScanReader{r: br, out: out}
}

// Readline returns the next line without its terminator, or io.EOF.
func (s *ScanReader) Readline() (string, error) {
	if s.out != nil && s.prompt != "" {
		fmt.Fprint(s.out, s.prompt)
	}
	line, err := s.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// SetPrompt sets the prompt printed before each line.
func (s *ScanReader) SetPrompt(prompt string) { s.prompt = prompt }

// SaveHistory is a no-op; piped input has no recall.
func (s *ScanReader) SaveHistory(string) error { return nil }

// Close is a no-op.
func (s *ScanReader) Close() error { return nil }
