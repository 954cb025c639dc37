package command

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/trainly-go/internal/cli/config"
	"github.com/yndnr/trainly-go/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Local configuration management",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:   "path",
				Usage:  "Print the config file path",
				Action: configPath,
			},
			{
				Name:  "init",
				Usage: "Write a config file with default values",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Overwrite an existing file",
					},
				},
				Action: configInit,
			},
			{
				Name:      "set",
				Usage:     "Set a configuration key",
				ArgsUsage: "KEY VALUE",
				Action:    configSet,
				BashComplete: func(c *cli.Context) {
					if c.NArg() == 0 {
						for _, k := range config.Keys() {
							fmt.Fprintln(c.App.Writer, k)
						}
					}
				},
			},
		},
	}
}

func configFile(c *cli.Context) string {
	if p := c.String("config"); p != "" {
		return p
	}
	return config.DefaultConfigPath()
}

func configShow(c *cli.Context) error {
	flags := ParseGlobalFlags(c)
	cfg, err := config.Load(configFile(c), flags.Overrides())
	if err != nil {
		return err
	}
	if cfg.Storage.Passphrase != "" {
		cfg.Storage.Passphrase = "***REDACTED***"
	}

	name := cfg.Output
	if flags.Output == "" {
		// The effective config is nested; YAML reads better than a table.
		name = string(output.FormatYAML)
	}
	format, err := output.ParseFormat(name)
	if err != nil {
		return err
	}
	return output.NewFormatter(format, flags.Wide).Format(c.App.Writer, cfg)
}

func configPath(c *cli.Context) error {
	fmt.Fprintln(c.App.Writer, configFile(c))
	return nil
}

func configInit(c *cli.Context) error {
	path := configFile(c)
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}

	if err := config.Save(config.Default(), path); err != nil {
		return err
	}
	output.Success(c.App.Writer, "Wrote %s", path)
	return nil
}

func configSet(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: config set KEY VALUE (keys: %v)", config.Keys())
	}
	key, value := c.Args().Get(0), c.Args().Get(1)

	path := configFile(c)
	if err := config.Set(path, key, value); err != nil {
		return err
	}
	output.Success(c.App.Writer, "Set %s in %s", key, path)
	return nil
}
