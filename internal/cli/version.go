package cli

import (
	"fmt"

	"github.com/HendryAvila/foreman/internal/server"
	"github.com/spf13/cobra"
)

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(app.Out, "foreman v%s\n", server.Version)
		},
	}
}
