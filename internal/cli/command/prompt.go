package command

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// prompter asks the user for missing input.
type prompter interface {
	Line(label string) (string, error)
	Secret(label string) (string, error)
}

// isTerminal reports whether v is a terminal file.
func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func promptLine(rt *Runtime, label string) (string, error) {
	return rt.prompter.Line(label)
}

func promptSecret(rt *Runtime, label string) (string, error) {
	return rt.prompter.Secret(label)
}

// stdPrompter reads from the runtime's input; secrets are read without
// echo when the input is a terminal.
type stdPrompter struct {
	rt *Runtime
}

func (p stdPrompter) Line(label string) (string, error) {
	fmt.Fprintf(p.rt.Err, "%s: ", label)
	line, err := p.rt.lines.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

func (p stdPrompter) Secret(label string) (string, error) {
	f, ok := p.rt.In.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.Line(label)
	}

	fmt.Fprintf(p.rt.Err, "%s: ", label)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(p.rt.Err)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return string(b), nil
}
