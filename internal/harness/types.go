package harness

import "github.com/roach88/todokit/internal/todo"

// TraceEvent records one executed step.
type TraceEvent struct {
	// Step is the 1-based step number.
	Step int `json:"step"`

	Action string `json:"action"`

	// Ref is the ref as written in the scenario, or the alias given by add.
	Ref string `json:"ref,omitempty"`

	// Changed reports whether the step replaced the todo list.
	Changed bool `json:"changed"`

	// Total is the number of todos after the step.
	Total int `json:"total"`

	// Error is the error code the step failed with, if any.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Stats are the counters after the last step.
	Stats todo.Stats `json:"stats"`

	// Todos is the final list.
	Todos []*todo.Todo `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step event.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
