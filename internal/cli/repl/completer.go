package repl

import (
	"sort"
	"strings"

	"github.com/urfave/cli/v2"
)

// Completer completes command phrases such as "config set".
// It implements readline.AutoCompleter.
type Completer struct {
	phrases []string
}

// NewCompleter creates a completer for the given phrases plus the shell
// built-ins.
func NewCompleter(phrases ...string) *Completer {
	all := append([]string{"exit", "quit", "history", "help"}, phrases...)
	sort.Strings(all)
	return &Completer{phrases: all}
}

// CommandPhrases lists every command path of cmds, e.g. "config",
// "config set". Hidden commands are skipped.
func CommandPhrases(cmds []*cli.Command) []string {
	var out []string
	var walk func(prefix string, cmds []*cli.Command)
	walk = func(prefix string, cmds []*cli.Command) {
		for _, cmd := range cmds {
			if cmd.Hidden {
				continue
			}
			phrase := prefix + cmd.Name
			out = append(out, phrase)
			walk(phrase+" ", cmd.Subcommands)
		}
	}
	walk("", cmds)
	return out
}

// Complete returns the phrases starting with prefix.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, p := range c.phrases {
		if strings.HasPrefix(p, prefix) && p != prefix {
			suggestions = append(suggestions, p)
		}
	}
	return suggestions
}

// Do implements readline.AutoCompleter. It returns the remaining text of
// each candidate and the length of the word being completed.
func (c *Completer) Do(line []rune, pos int) ([][]rune, int) {
	typed := strings.TrimLeft(string(line[:pos]), " ")
	word := typed
	if i := strings.LastIndex(typed, " "); i >= 0 {
		word = typed[i+1:]
	}

	var out [][]rune
	seen := make(map[string]bool)
	for _, p := range c.Complete(typed) {
		rest := p[len(typed):]
		// Complete one word at a time.
		if i := strings.Index(strings.TrimLeft(rest, " "), " "); i >= 0 {
			rest = rest[:len(rest)-len(strings.TrimLeft(rest, " "))+i]
		}
		if rest == "" || seen[rest] {
			continue
		}
		seen[rest] = true
		out = append(out, []rune(rest+" "))
	}
	return out, len([]rune(word))
}
