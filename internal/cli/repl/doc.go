// Package repl implements the interactive shell of trainly-cli.
//
//   - repl.go: the read-eval-print loop and its built-ins
//   - reader.go: line readers (chzyer/readline on a terminal, a plain
//     scanner otherwise)
//   - completer.go: tab completion built from the command tree
//   - history.go: history persistence
//
// Lines are split with shell quoting rules (google/shlex) and handed to an
// Executor; the loop itself knows nothing about commands.
package repl
