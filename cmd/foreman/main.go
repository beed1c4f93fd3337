// Foreman: project catalogue MCP server.
//
// Exposes a project → stage → object → section catalogue, plus the people
// responsible for it, as MCP tools that take human-readable names instead
// of identifiers.
//
// Usage:
//
//	foreman serve                  # Start MCP server (stdio transport)
//	foreman serve --transport http # Streamable HTTP on --addr
//	foreman migrate                # Create or upgrade the schema
//	foreman users import FILE      # Import users from YAML
//	foreman version
package main

import (
	"fmt"
	"os"

	"github.com/HendryAvila/foreman/internal/cli"
	"github.com/mattn/go-isatty"
)

func main() {
	root := cli.NewRootCmd(&cli.App{Out: os.Stdout, ErrOut: os.Stderr})
	if err := root.Execute(); err != nil {
		colored := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
		fmt.Fprint(os.Stderr, cli.FormatError(err, colored))
		os.Exit(cli.ExitCode(err))
	}
}
