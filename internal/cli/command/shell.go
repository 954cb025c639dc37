package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/trainly-go/internal/cli/config"
	"github.com/yndnr/trainly-go/internal/cli/output"
	"github.com/yndnr/trainly-go/internal/cli/repl"
	"github.com/yndnr/trainly-go/internal/infra/confloader"
	"github.com/yndnr/trainly-go/internal/infra/shutdown"
	"github.com/yndnr/trainly-go/internal/telemetry/logger"
)

const shellShutdownTimeout = 5 * time.Second

// ShellCommand returns the interactive shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:    "shell",
		Aliases: []string{"repl"},
		Usage:   "Start an interactive session",
		Action:  runShell,
	}
}

// runShell runs every line as a command of the same App. All of them share
// this process's runtime, so there is one session for the whole shell.
func runShell(c *cli.Context) error {
	rt, err := requireRuntime(c)
	if err != nil {
		return err
	}
	lr := c.App.Metadata[runtimeKey].(*lazyRuntime)
	if lr.shared {
		return errors.New("already in the shell")
	}
	lr.shared = true
	defer func() { lr.shared = false }()

	ctx, cancel := context.WithCancel(contextOf(c))
	defer cancel()

	history := repl.NewHistory(rt.Config.HistoryPath(), rt.Config.Shell.HistorySize)
	if err := history.Load(); err != nil {
		rt.Logger.Warn("could not load shell history", "error", err)
	}

	reader, restore, err := newShellReader(c, rt, history)
	if err != nil {
		return err
	}
	defer restore()

	handler := shutdown.NewHandler(shellShutdownTimeout)
	handler.OnShutdown(func(context.Context) error { return history.Save() })
	handler.OnShutdown(func(context.Context) error { return reader.Close() })
	if w := watchConfig(rt); w != nil {
		handler.OnShutdown(func(context.Context) error { return w.Stop() })
	}
	handler.OnShutdown(func(context.Context) error {
		cancel()
		return nil
	})

	exec := func(ctx context.Context, args []string) error {
		return c.App.RunContext(ctx, append([]string{c.App.Name}, args...))
	}
	r := repl.New(reader, rt.Out, exec,
		repl.WithPrompt(shellPrompt(rt)),
		repl.WithHistory(history),
		repl.WithErrorOutput(rt.Err),
	)

	output.Hint(rt.Out, "Trainly shell. Type help for commands, exit to leave.")

	done := make(chan error, 1)
	go func() {
		done <- r.Run(ctx)
		handler.Trigger()
	}()

	shutdownErr := handler.Wait(ctx)

	// A scanner blocked on a pipe cannot be interrupted; do not wait on it
	// forever once the hooks have run.
	var runErr error
	select {
	case runErr = <-done:
	case <-time.After(shellShutdownTimeout):
		rt.Logger.Warn("shell input did not close in time")
	}
	return errors.Join(runErr, shutdownErr)
}

// shellPrompt follows the session: it names the user while signed in and
// turns anonymous after a logout.
func shellPrompt(rt *Runtime) func() string {
	return func() string {
		if u := rt.Session.User(); u != nil {
			return fmt.Sprintf("trainly(%s)> ", u.DisplayName())
		}
		return "trainly> "
	}
}

// newShellReader picks a line editor for terminals and a plain scanner for
// piped input. On a terminal, prompts for credentials also go through the
// line editor, which owns stdin while the shell runs.
func newShellReader(c *cli.Context, rt *Runtime, history *repl.History) (repl.LineReader, func(), error) {
	if !isTerminal(rt.In) || !isTerminal(rt.Out) {
		return repl.NewScanReader(rt.lines, nil), func() {}, nil
	}

	rl, err := repl.NewTerminalReader(repl.TerminalConfig{
		Prompt:      "trainly> ",
		Completer:   repl.NewCompleter(repl.CommandPhrases(c.App.Commands)...),
		HistorySize: rt.Config.Shell.HistorySize,
	})
	if err != nil {
		return nil, nil, err
	}
	for _, entry := range history.Entries() {
		_ = rl.SaveHistory(entry)
	}

	prev := rt.prompter
	rt.prompter = readlinePrompter{rl: rl}
	return rl, func() { rt.prompter = prev }, nil
}

// readlinePrompter asks through the shell's line editor.
type readlinePrompter struct {
	rl *readline.Instance
}

func (p readlinePrompter) Line(label string) (string, error) {
	p.rl.SetPrompt(label + ": ")
	line, err := p.rl.Readline()
	if err != nil {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

func (p readlinePrompter) Secret(label string) (string, error) {
	b, err := p.rl.ReadPassword(label + ": ")
	if err != nil {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return string(b), nil
}

// watchConfig reloads the log level when the config file changes. Errors
// only disable the reload.
func watchConfig(rt *Runtime) *confloader.Watcher {
	if rt.LogLevelPinned {
		return nil
	}
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(logger.Slog(rt.Logger)))
	if err != nil {
		rt.Logger.Debug("config watcher unavailable", "error", err)
		return nil
	}
	if err := w.Watch(rt.ConfigPath); err != nil {
		rt.Logger.Debug("config watcher unavailable", "path", rt.ConfigPath, "error", err)
		_ = w.Stop()
		return nil
	}

	w.OnChange(func(path string) {
		reloadLogLevel(rt, path)
	})
	w.StartAsync()
	return w
}

func reloadLogLevel(rt *Runtime, path string) {
	cfg, err := config.Load(path, nil)
	if err != nil {
		rt.Logger.Warn("ignoring invalid config change", "path", path, "error", err)
		return
	}
	if cfg.Log.Level == logger.GetLevel() {
		return
	}
	logger.SetLevel(cfg.Log.Level)
	rt.Logger.Info("log level reloaded", "level", cfg.Log.Level)
}
