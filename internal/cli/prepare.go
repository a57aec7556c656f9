package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vasari/tienda/internal/database"
	"github.com/vasari/tienda/internal/store"
)

// NewPrepareCommand creates the prepare command.
func NewPrepareCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prepare",
		Short: "Empty every table, creating the missing ones",
		Long: `Prepare leaves every table empty: existing tables are truncated and
missing ones are created. All rows are lost.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, rootOpts)
			if err != nil {
				return err
			}

			db, err := s.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.close(db)

			dialect, err := database.DialectFor(s.cfg.Database.Driver)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			repos, err := store.NewRepositories(db, dialect, s.log)
			if err != nil {
				return WrapExitError(ExitFailure, "failed to set up repositories", err)
			}

			if err := repos.PrepareAll(s.ctx); err != nil {
				return WrapExitError(ExitFailure, "failed to prepare tables", err)
			}

			tables := []string{repos.Stores.Table(), repos.Articles.Table(), repos.Users.Table()}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "tables prepared: %s\n", strings.Join(tables, ", "))
			return err
		},
	}
}
