package command

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/trainly-go/internal/cli/output"
	"github.com/yndnr/trainly-go/internal/infra/buildinfo"
)

const runtimeKey = "runtime"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:                 buildinfo.Product,
		Usage:                "Trainly command-line client",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			LoginCommand(),
			RegisterCommand(),
			LogoutCommand(),
			WhoamiCommand(),
			StatusCommand(),
			PlansCommand(),
			ConfigCommand(),
			VersionCommand(),
			ShellCommand(),
		},
		Before: before,
		After:  after,
		// main reports errors; commands never exit the process themselves,
		// which keeps the shell alive across failing commands.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Trainly API base URL (e.g., http://localhost:8000)",
			EnvVars: []string{"TRAINLY_SERVER"},
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file path (default ~/.trainly/cli.yaml)",
			EnvVars: []string{"TRAINLY_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable debug logging",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.BoolFlag{
			Name:  "ephemeral",
			Usage: "Keep the session token in memory only",
		},
	}
}

// GlobalFlags holds the parsed global flags.
type GlobalFlags struct {
	Server     string
	ConfigPath string
	Output     string
	Wide       bool
	Verbose    bool
	LogLevel   string
	Ephemeral  bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Server:     c.String("server"),
		ConfigPath: c.String("config"),
		Output:     c.String("output"),
		Wide:       c.Bool("wide"),
		Verbose:    c.Bool("verbose"),
		LogLevel:   c.String("log-level"),
		Ephemeral:  c.Bool("ephemeral"),
	}
}

// Overrides maps the flags that were set onto dotted config keys.
func (f *GlobalFlags) Overrides() map[string]any {
	m := make(map[string]any)
	if f.Server != "" {
		m["server"] = f.Server
	}
	if f.Output != "" {
		m["output"] = f.Output
	}
	if f.LogLevel != "" {
		m["log.level"] = f.LogLevel
	}
	if f.Verbose {
		m["log.level"] = "debug"
	}
	if f.Ephemeral {
		m["storage.backend"] = "memory"
	}
	return m
}

// before registers a lazy runtime. Commands that need the session call
// requireRuntime; config and version work even with a broken config file.
// A runtime installed by an enclosing shell is reused.
func before(c *cli.Context) error {
	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	if _, ok := c.App.Metadata[runtimeKey].(*lazyRuntime); ok {
		return nil
	}
	c.App.Metadata[runtimeKey] = &lazyRuntime{flags: ParseGlobalFlags(c)}
	return nil
}

// after closes the runtime unless a shell still owns it.
func after(c *cli.Context) error {
	lr, ok := c.App.Metadata[runtimeKey].(*lazyRuntime)
	if !ok || lr.shared {
		return nil
	}
	delete(c.App.Metadata, runtimeKey)
	return lr.close()
}

// requireRuntime returns the initialized runtime, building it on first use.
func requireRuntime(c *cli.Context) (*Runtime, error) {
	lr, ok := c.App.Metadata[runtimeKey].(*lazyRuntime)
	if !ok {
		return nil, fmt.Errorf("runtime not configured")
	}
	return lr.get(c)
}

// formatterFor honors a per-command --output over the configured format.
func formatterFor(c *cli.Context, rt *Runtime) (output.Formatter, error) {
	name := rt.Config.Output
	if f := c.String("output"); f != "" {
		name = f
	}
	format, err := output.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	return output.NewFormatter(format, c.Bool("wide") || rt.Wide), nil
}

// PrintError prints an error message the way main does.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
}
