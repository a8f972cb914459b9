package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/todokit/internal/todo"
)

// ListResult is the JSON payload of the list command.
type ListResult struct {
	Todos []*todo.Todo `json:"todos"`
	Stats todo.Stats   `json:"stats"`
}

// RemoveResult is the JSON payload of commands that delete a todo.
type RemoveResult struct {
	Removed string `json:"removed"`
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var tags []string

	cmd := &cobra.Command{
		Use:   "add <text...>",
		Short: "Add a todo",
		Long: `Add a new active todo. All arguments are joined into its text.

Example:
  todo add Buy milk --tag shopping`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withSession(cmd, func(s *session) error {
				t, err := s.todos().Create(strings.Join(args, " "), tags...)
				if err != nil {
					return s.fail(err)
				}
				s.logger.Debug("todo added", "id", t.ID)
				return s.out.Success(t, "Added "+formatTodo(t))
			})
		},
	}

	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "tag (repeatable)")

	return cmd
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var filter, tag string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List todos",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withSession(cmd, func(s *session) error {
				f, err := todo.ParseFilter(filter)
				if err != nil {
					return s.fail(err)
				}
				items := s.todos().List(f, tag)
				if items == nil {
					items = []*todo.Todo{}
				}
				stats := s.todos().Stats()

				text := formatTodos(items) + "\n" + formatStats(stats)
				return s.out.Success(ListResult{Todos: items, Stats: stats}, text)
			})
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "all", "all|active|completed")
	cmd.Flags().StringVar(&tag, "tag", "", "only todos with this tag")

	return cmd
}

// NewToggleCommand creates the toggle command.
func NewToggleCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a todo between active and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withSession(cmd, func(s *session) error {
				return s.updateTodo(args[0], func(id string) (*todo.Todo, error) {
					return s.todos().Toggle(id)
				})
			})
		},
	}
}

// NewDoneCommand creates the done command.
func NewDoneCommand(rootOpts *RootOptions) *cobra.Command {
	return newSetCompletedCommand(rootOpts, "done", "Mark a todo completed", true)
}

// NewUndoCommand creates the undo command.
func NewUndoCommand(rootOpts *RootOptions) *cobra.Command {
	return newSetCompletedCommand(rootOpts, "undo", "Mark a todo active again", false)
}

func newSetCompletedCommand(rootOpts *RootOptions, use, short string, completed bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withSession(cmd, func(s *session) error {
				return s.updateTodo(args[0], func(id string) (*todo.Todo, error) {
					return s.todos().SetCompleted(id, completed)
				})
			})
		},
	}
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	var tags []string

	cmd := &cobra.Command{
		Use:   "edit <id> [text...]",
		Short: "Change the text or tags of a todo",
		Long: `Change the text of a todo. Editing a todo to empty text removes it.

With --tag and no text, only the tags are replaced.

Examples:
  todo edit 0192f3 Buy oat milk
  todo edit 0192f3 --tag shopping --tag urgent`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			retag := cmd.Flags().Changed("tag")
			if len(args) == 1 && !retag {
				return NewExitError(ExitCommandError, "edit needs new text or --tag")
			}

			return rootOpts.withSession(cmd, func(s *session) error {
				t, err := s.todos().Resolve(args[0])
				if err != nil {
					return s.fail(err)
				}

				if len(args) > 1 {
					id := t.ID
					t, err = s.todos().Edit(id, strings.Join(args[1:], " "))
					if err != nil {
						return s.fail(err)
					}
					if t == nil {
						return s.out.Success(RemoveResult{Removed: id}, "Removed "+id)
					}
				}
				if retag {
					t, err = s.todos().Retag(t.ID, tags...)
					if err != nil {
						return s.fail(err)
					}
				}
				return s.out.Success(t, formatTodo(t))
			})
		},
	}

	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "replace tags (repeatable)")

	return cmd
}

// NewRemoveCommand creates the rm command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove a todo",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withSession(cmd, func(s *session) error {
				t, err := s.todos().Resolve(args[0])
				if err != nil {
					return s.fail(err)
				}
				if err := s.todos().Remove(t.ID); err != nil {
					return s.fail(err)
				}
				return s.out.Success(RemoveResult{Removed: t.ID}, fmt.Sprintf("Removed %s  %s", t.ID, t.Text))
			})
		},
	}
}

// updateTodo resolves ref and applies op to the todo it names.
func (s *session) updateTodo(ref string, op func(id string) (*todo.Todo, error)) error {
	t, err := s.todos().Resolve(ref)
	if err != nil {
		return s.fail(err)
	}
	t, err = op(t.ID)
	if err != nil {
		return s.fail(err)
	}
	return s.out.Success(t, formatTodo(t))
}
