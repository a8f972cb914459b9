package cli

import (
	"fmt"
	"strings"

	"github.com/roach88/todokit/internal/todo"
)

// formatTodo renders one todo as a list line:
//
//	[x] 0192f3c4-...  Buy milk  #shopping
func formatTodo(t *todo.Todo) string {
	mark := " "
	if t.Completed {
		mark = "x"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s  %s", mark, t.ID, t.Text)
	for _, tag := range t.Tags {
		b.WriteString("  #")
		b.WriteString(tag)
	}
	return b.String()
}

func formatTodos(items []*todo.Todo) string {
	if len(items) == 0 {
		return "No todos."
	}
	lines := make([]string, len(items))
	for i, t := range items {
		lines[i] = formatTodo(t)
	}
	return strings.Join(lines, "\n")
}

func formatStats(s todo.Stats) string {
	return fmt.Sprintf("%d total, %d active, %d completed", s.Total, s.Active, s.Completed)
}
