package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vasari/tienda/internal/database"
	"github.com/vasari/tienda/internal/demo"
	"github.com/vasari/tienda/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Prepare bool
	Rounds  int
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Seed, update, delete and list every table",
		Long: `Connect to the database and exercise every data access object:
insert the seed rows, read one back and update it, delete another and
print what is left in each table.

Failed operations are logged and counted; they do not stop the run.

Example:
  tienda run --prepare
  tienda run --rounds 4 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Prepare, "prepare", false, "empty (or create) every table before seeding")
	cmd.Flags().IntVar(&opts.Rounds, "rounds", 1, "how many times the seed rows are inserted")

	return cmd
}

func runDemo(cmd *cobra.Command, opts *RunOptions) error {
	if opts.Rounds < 1 {
		return WrapExitError(ExitCommandError, "invalid flags", fmt.Errorf("--rounds must be at least 1, got %d", opts.Rounds))
	}

	s, err := newSession(cmd, opts.RootOptions)
	if err != nil {
		return err
	}

	db, err := s.open(statusWriter(cmd, opts.Format))
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

	res, err := demo.Run(s.ctx, repos, demo.Options{Prepare: opts.Prepare, Rounds: opts.Rounds})
	if err != nil {
		return WrapExitError(ExitFailure, "run interrupted", err)
	}

	if len(res.Failures) > 0 {
		s.log.Warn("run finished with failed operations",
			slog.Int("failures", len(res.Failures)),
			slog.Int("operations", res.Operations))
	}
	return demo.Render(cmd.OutOrStdout(), opts.Format, res)
}
