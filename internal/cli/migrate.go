package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vasari/tienda/internal/platform/migrations"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate <up|down|status|reset|version>",
		Short: "Apply or roll back the database schema",
		Long: `Migrate runs the embedded schema migrations with goose.

  up       apply all pending migrations
  down     roll back the latest migration
  status   log the state of every migration
  reset    roll back every migration
  version  print the current schema version`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: migrations.Commands,
		RunE: func(cmd *cobra.Command, args []string) error {
			command := args[0]

			s, err := newSession(cmd, rootOpts)
			if err != nil {
				return err
			}

			db, err := s.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.close(db)

			if err := migrations.Run(s.ctx, db, s.cfg.Database.Driver, command); err != nil {
				return WrapExitError(ExitFailure, "migration failed", err)
			}

			version, err := migrations.Version(s.ctx, db, s.cfg.Database.Driver)
			if err != nil {
				return WrapExitError(ExitFailure, "migration failed", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", version)
			return err
		},
	}
}
