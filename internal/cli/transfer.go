package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// ExportResult is the JSON payload of export -o.
type ExportResult struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// ImportResult is the JSON payload of the import command.
type ImportResult struct {
	Imported int `json:"imported"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export todos as YAML",
		Long: `Export the todo list as YAML, to stdout or to a file.

Examples:
  todo export > todos.yaml
  todo export -o todos.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withSession(cmd, func(s *session) error {
				if output == "" {
					if err := s.app.ExportYAML(cmd.OutOrStdout()); err != nil {
						return WrapExitError(ExitCommandError, "failed to export", err)
					}
					return nil
				}

				f, err := os.Create(output)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to create export file", err)
				}
				if err := s.app.ExportYAML(f); err != nil {
					f.Close()
					return WrapExitError(ExitCommandError, "failed to export", err)
				}
				if err := f.Close(); err != nil {
					return WrapExitError(ExitCommandError, "failed to write export file", err)
				}

				n := s.todos().Stats().Total
				s.logger.Debug("todos exported", "path", output, "count", n)
				return s.out.Success(ExportResult{Path: output, Count: n},
					fmt.Sprintf("Exported %d todo(s) to %s", n, output))
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the todo list with an export",
		Long: `Replace the whole todo list with the todos of a YAML export.

Todos keep their ids, text, state and timestamps.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open import file", err)
			}
			defer f.Close()

			return rootOpts.withSession(cmd, func(s *session) error {
				n, err := s.app.ImportYAML(f)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to import", err)
				}
				return s.out.Success(ImportResult{Imported: n}, fmt.Sprintf("Imported %d todo(s)", n))
			})
		},
	}
}
