package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/HendryAvila/foreman/internal/apperr"
	"github.com/HendryAvila/foreman/internal/domain"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newUsersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage the people directory",
	}
	cmd.AddCommand(newUsersImportCmd(app))
	return cmd
}

func newUsersImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import users from a YAML list, matching existing users by email",
		Example: `  foreman users import people.yaml

  # people.yaml
  - first_name: Anna
    last_name: Ivanova
    email: anna.ivanova@example.com
    department: Design
    team: Structures
    position: Lead engineer`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := readUsers(args[0])
			if err != nil {
				return err
			}
			cfg, err := app.loadConfig(cmd)
			if err != nil {
				return err
			}
			st, err := app.openStore(cfg.StoreConfig())
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := commandContext(cmd)
			var created, updated int
			for i := range users {
				isNew, err := st.UpsertUser(ctx, &users[i])
				if err != nil {
					return apperr.StoreFailure(fmt.Sprintf("import %s", users[i].Email), err)
				}
				if isNew {
					created++
				} else {
					updated++
				}
			}
			fmt.Fprintf(app.Out, "Imported %d user(s): %d created, %d updated.\n", len(users), created, updated)
			return nil
		},
	}
}

// readUsers parses and checks a YAML user list before anything is written.
func readUsers(path string) ([]domain.User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.InvalidInput("file", fmt.Sprintf("Cannot read %s: %v", path, err))
	}
	var users []domain.User
	if err := yaml.Unmarshal(data, &users); err != nil {
		return nil, apperr.InvalidInput("file", fmt.Sprintf("Cannot parse %s: %v", path, err))
	}

	seen := map[string]int{}
	for i, u := range users {
		email := strings.ToLower(strings.TrimSpace(u.Email))
		if email == "" {
			return nil, apperr.InvalidInput("email", fmt.Sprintf("User #%d has no email.", i+1))
		}
		if u.DisplayName() == "" {
			return nil, apperr.InvalidInput("name", fmt.Sprintf("User #%d (%s) has no name.", i+1, email))
		}
		if prev, ok := seen[email]; ok {
			return nil, apperr.InvalidInput("email",
				fmt.Sprintf("Users #%d and #%d share the email %s.", prev, i+1, email))
		}
		seen[email] = i + 1
	}
	return users, nil
}
