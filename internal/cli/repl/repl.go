package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/shlex"
)

// Executor runs one parsed command line.
type Executor func(ctx context.Context, args []string) error

// Option configures a REPL.
type Option func(*REPL)

// WithPrompt sets a prompt function evaluated before every line, so the
// prompt can follow session state.
func WithPrompt(fn func() string) Option {
	return func(r *REPL) {
		r.prompt = fn
	}
}

// WithHistory records accepted lines in h.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// WithErrorOutput sets where command errors are printed.
func WithErrorOutput(w io.Writer) Option {
	return func(r *REPL) {
		r.errOut = w
	}
}

// REPL is the read-eval-print loop.
type REPL struct {
	reader  LineReader
	output  io.Writer
	errOut  io.Writer
	exec    Executor
	history *History
	prompt  func() string
}

// New creates a REPL reading from reader and running lines with exec.
func New(reader LineReader, out io.Writer, exec Executor, opts ...Option) *REPL {
	r := &REPL{
		reader: reader,
		output: out,
		errOut: out,
		exec:   exec,
		prompt: func() string { return "> " },
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.history == nil {
		r.history = NewHistory("", 0)
	}
	return r
}

// Run loops until EOF, an exit command, or ctx ends. Command errors are
// printed and do not stop the loop.
func (r *REPL) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		r.reader.SetPrompt(r.prompt())
		line, err := r.reader.Readline()
		switch {
		case errors.Is(err, ErrInterrupt):
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if r.history.Add(line) {
			_ = r.reader.SaveHistory(line)
		}

		switch line {
		case "exit", "quit":
			return nil
		case "history":
			for i, entry := range r.history.Entries() {
				fmt.Fprintf(r.output, "%4d  %s\n", i+1, entry)
			}
			continue
		}

		args, err := shlex.Split(line)
		if err != nil {
			fmt.Fprintf(r.errOut, "error: %v\n", err)
			continue
		}
		if err := r.exec(ctx, args); err != nil {
			fmt.Fprintf(r.errOut, "error: %v\n", err)
		}
	}
}
