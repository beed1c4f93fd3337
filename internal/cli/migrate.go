package cli

import (
	"fmt"

	"github.com/HendryAvila/foreman/internal/apperr"
	"github.com/HendryAvila/foreman/internal/store"
	"github.com/spf13/cobra"
)

func newMigrateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd)
			if err != nil {
				return err
			}
			st, err := app.openStore(cfg.StoreConfig())
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Migrate(commandContext(cmd)); err != nil {
				return apperr.StoreFailure("apply the schema", err)
			}
			fmt.Fprintf(app.Out, "Schema is up to date (%s).\n", st.Driver())
			return nil
		},
	}
}

func (a *App) openStore(cfg store.Config) (*store.Store, error) {
	st, err := store.New(cfg)
	if err != nil {
		return nil, apperr.StoreFailure("open the database", err)
	}
	return st, nil
}
