package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/todokit/internal/todo"
)

// ClearResult is the JSON payload of the clear-completed command.
type ClearResult struct {
	Cleared int        `json:"cleared"`
	Stats   todo.Stats `json:"stats"`
}

// NewToggleAllCommand creates the toggle-all command.
func NewToggleAllCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-all",
		Short: "Complete every todo, or reactivate all if all are completed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withSession(cmd, func(s *session) error {
				stats := s.todos().ToggleAll()
				return s.out.Success(stats, formatStats(stats))
			})
		},
	}
}

// NewClearCompletedCommand creates the clear-completed command.
func NewClearCompletedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-completed",
		Short: "Remove every completed todo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withSession(cmd, func(s *session) error {
				n := s.todos().ClearCompleted()
				stats := s.todos().Stats()
				return s.out.Success(ClearResult{Cleared: n, Stats: stats},
					fmt.Sprintf("Cleared %d completed todo(s)\n%s", n, formatStats(stats)))
			})
		},
	}
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show todo counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withSession(cmd, func(s *session) error {
				stats := s.todos().Stats()
				return s.out.Success(stats, formatStats(stats))
			})
		},
	}
}
