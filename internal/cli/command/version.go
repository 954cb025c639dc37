package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/trainly-go/internal/cli/output"
	"github.com/yndnr/trainly-go/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show build information",
		Action: func(c *cli.Context) error {
			info := buildinfo.Get()
			format, err := output.ParseFormat(c.String("output"))
			if err != nil {
				return err
			}
			if format == output.FormatTable {
				fmt.Fprintf(c.App.Writer, "%s %s\n", buildinfo.Product, buildinfo.String())
				fmt.Fprintf(c.App.Writer, "go: %s\n", info.GoVersion)
				return nil
			}
			return output.NewFormatter(format, false).Format(c.App.Writer, info)
		},
	}
}
