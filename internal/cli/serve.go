package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/todokit/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Listen string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the todo list over HTTP",
		Long: `Serve the todo list as a JSON API with a live websocket feed.

Routes live under /v1 (todos, stats, feed); /healthz and /metrics sit at the
root. Every change is saved to the database as it happens.

Example:
  todo serve --db ./todo.db --listen 127.0.0.1:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(s *session) error {
				return runServer(opts, s, cmd)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Listen, "listen", "", "listen address (default from config, 127.0.0.1:8080)")

	return cmd
}

func runServer(opts *ServeOptions, s *session, cmd *cobra.Command) error {
	addr := opts.Listen
	if addr == "" {
		addr = s.cfg.Server.Listen
	}

	srv := server.New(s.todos(),
		server.WithLogger(s.logger),
		server.WithDebug(s.cfg.Server.Debug),
	)
	defer srv.Close()

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			s.logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	s.logger.Info("server starting", "addr", addr, "db", s.cfg.Database)
	fmt.Fprintf(cmd.OutOrStdout(), "Serving todos on http://%s\n", addr)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")

	if err := srv.Run(ctx, addr); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitCommandError, "server error", err)
	}

	s.logger.Info("server stopped gracefully")
	return nil
}
