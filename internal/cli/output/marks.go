package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	successMark = color.New(color.FgGreen).SprintFunc()
	failureMark = color.New(color.FgRed).SprintFunc()
	warnMark    = color.New(color.FgYellow).SprintFunc()
	dimText     = color.New(color.Faint).SprintFunc()
)

// SetColor forces colored output on or off. By default color follows
// whether stdout is a terminal.
func SetColor(enabled bool) {
	color.NoColor = !enabled
}

// Success prints a green check line.
func Success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", successMark("✓"), fmt.Sprintf(format, args...))
}

// Failure prints a red cross line.
func Failure(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", failureMark("✗"), fmt.Sprintf(format, args...))
}

// Warn prints a yellow exclamation line.
func Warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", warnMark("!"), fmt.Sprintf(format, args...))
}

// Hint prints a faint informational line.
func Hint(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, dimText(fmt.Sprintf(format, args...)))
}
