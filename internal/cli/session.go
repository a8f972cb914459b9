package cli

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/todokit/internal/app"
	"github.com/roach88/todokit/internal/config"
	"github.com/roach88/todokit/internal/todo"
)

// session is what a command runs against: the opened app, the effective
// config, a logger and the output formatter.
type session struct {
	app    *app.App
	cfg    *config.Config
	logger *slog.Logger
	out    *OutputFormatter
}

func (s *session) todos() *todo.Service {
	return s.app.Todos()
}

// loadConfig reads --config, if given, and applies --db on top of it.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if o.ConfigPath != "" {
		loaded, err := config.Load(o.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if o.Database != "" {
		cfg.Database = o.Database
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	return cfg, nil
}

// newLogger logs to stderr at the configured level, or Debug with --verbose.
func (o *RootOptions) newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	level := cfg.SlogLevel()
	if o.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// withSession opens the todo list, runs fn and closes the list again.
// Failing to save on close turns a successful run into a command error.
func (o *RootOptions) withSession(cmd *cobra.Command, fn func(s *session) error) (err error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	logger := o.newLogger(cmd, cfg)

	appOpts := []app.Option{app.WithLogger(logger)}
	if o.IDGenerator != nil {
		appOpts = append(appOpts, app.WithIDGenerator(o.IDGenerator))
	}
	if o.Clock != nil {
		appOpts = append(appOpts, app.WithClock(o.Clock))
	}

	logger.Debug("opening todo list", "db", cfg.Database)
	a, err := app.Open(cmd.Context(), cfg, appOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open todo list", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil && err == nil {
			err = WrapExitError(ExitCommandError, "failed to save todo list", closeErr)
		}
	}()

	out := o.formatter(cmd)
	out.VerboseLog("todo list %s: %d todos", cfg.Database, a.Todos().Stats().Total)

	return fn(&session{
		app:    a,
		cfg:    cfg,
		logger: logger,
		out:    out,
	})
}

// fail reports err through the formatter and returns the matching
// ExitError. Service errors exit with ExitFailure, anything else with
// ExitCommandError.
func (s *session) fail(err error) error {
	code := string(todo.CodeOf(err))
	exitCode := ExitFailure
	message := err.Error()

	var te *todo.Error
	if errors.As(err, &te) {
		message = te.Message
		if te.ID != "" {
			message += ": " + te.ID
		}
	} else {
		code = "INTERNAL"
		exitCode = ExitCommandError
	}

	if outErr := s.out.Error(code, message, nil); outErr != nil {
		return WrapExitError(ExitCommandError, "failed to write output", outErr)
	}
	return &ExitError{Code: exitCode, Message: message, Err: err, Reported: true}
}
