package app

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/roach88/todokit/internal/todo"
)

// exportVersion is written to every export and checked on import.
const exportVersion = 1

// Export is the on-disk shape of an exported todo list.
type Export struct {
	Version int          `yaml:"version"`
	Todos   []*todo.Todo `yaml:"todos"`
}

// ExportYAML writes the current todo list to w.
func (a *App) ExportYAML(w io.Writer) error {
	doc := Export{Version: exportVersion, Todos: a.Todos().List(todo.FilterAll, "")}
	if doc.Todos == nil {
		doc.Todos = []*todo.Todo{}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// ImportYAML replaces the todo list with the one read from r and returns
// the number of todos imported. Todos keep their ids; an id that appears
// twice gets a fresh one. Text and tags are normalized and validated like
// new todos.
func (a *App) ImportYAML(r io.Reader) (int, error) {
	var doc Export
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return 0, fmt.Errorf("import: %w", err)
	}
	if doc.Version != exportVersion {
		return 0, fmt.Errorf("import: unsupported export version %d (want %d)", doc.Version, exportVersion)
	}

	items, err := a.Todos().Import(doc.Todos)
	if err != nil {
		return 0, fmt.Errorf("import: %w", err)
	}
	return len(items), nil
}
