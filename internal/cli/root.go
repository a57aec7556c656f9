package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vasari/tienda/internal/config"
	"github.com/vasari/tienda/internal/database"
	"github.com/vasari/tienda/internal/demo"
	"github.com/vasari/tienda/internal/platform/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	LogLevel   string
	Format     string // "text" | "json" | "yaml"

	// DotEnvFiles replaces the default ".env" lookup (for testing).
	DotEnvFiles []string
}

// NewRootCommand creates the root command for the tienda CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "tienda",
		Short: "Data access objects for stores, articles and users",
		Long: `tienda stores shops, articles and users in a relational database
(PostgreSQL or SQLite) through one data access object per table.

Configuration comes from TIENDA_* environment variables, an optional .env
file and an optional config file (--config).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !demo.IsValidFormat(opts.Format) {
				return WrapExitError(ExitCommandError, "invalid flags",
					fmt.Errorf("invalid format %q: must be one of %v", opts.Format, demo.Formats))
			}
			if opts.LogLevel != "" {
				if _, err := logger.ParseLevel(opts.LogLevel); err != nil {
					return WrapExitError(ExitCommandError, "invalid flags", err)
				}
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "path to a config file (yaml, toml or json)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error), overrides log.level")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", demo.FormatText, "output format (text|json|yaml)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewPrepareCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))

	return cmd
}

// session is what every command needs once flags are parsed: configuration,
// a logger writing to the command's stderr and a context carrying it.
type session struct {
	cfg *config.Config
	log *slog.Logger
	ctx context.Context
}

func newSession(cmd *cobra.Command, opts *RootOptions) (*session, error) {
	overrides := map[string]any{}
	if opts.LogLevel != "" {
		overrides["log.level"] = opts.LogLevel
	}

	cfg, err := config.Load(config.Options{
		ConfigFile:  opts.ConfigFile,
		DotEnvFiles: opts.DotEnvFiles,
		Overrides:   overrides,
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	log, err := logger.SetupWriter(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	log = log.With(slog.String("command", cmd.Name()))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return &session{cfg: cfg, log: log, ctx: logger.WithLogger(ctx, log)}, nil
}

// open connects to the configured database. Progress lines go to status.
func (s *session) open(status io.Writer) (*sql.DB, error) {
	fmt.Fprintln(status, "connecting.....")
	db, err := database.Open(s.ctx, s.cfg.Database, s.log)
	if err != nil {
		fmt.Fprintln(status, "connection ERROR")
		return nil, WrapExitError(ExitCommandError, "database connection failed", err)
	}
	fmt.Fprintln(status, "connection valid")
	return db, nil
}

func (s *session) close(db *sql.DB) {
	if err := db.Close(); err != nil {
		s.log.Warn("failed to close database", slog.String("error", err.Error()))
	}
}

// statusWriter returns where progress lines go: stdout for text output and
// stderr otherwise, so that JSON and YAML output stays parseable.
func statusWriter(cmd *cobra.Command, format string) io.Writer {
	if format == demo.FormatText {
		return cmd.OutOrStdout()
	}
	return cmd.ErrOrStderr()
}
