package harness

import (
	"fmt"
	"log/slog"

	"github.com/roach88/todokit/internal/store"
	"github.com/roach88/todokit/internal/testutil"
	"github.com/roach88/todokit/internal/todo"
)

// IDPrefix is the prefix of the deterministic todo ids ("todo-0001", ...).
const IDPrefix = "todo"

// Harness executes one scenario against a fresh store.
type Harness struct {
	store   *store.Store
	todos   *todo.Service
	view    *store.CollectionView[todo.Todo, *todo.Todo]
	aliases map[string]string
	logger  *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh in-memory store with sequential ids and
// a deterministic clock, so the trace is reproducible. Step failures and
// failed expectations are recorded in the result; the returned error is
// reserved for scenarios that cannot be set up at all.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, testutil.DiscardLogger())
}

// RunWithLogger is Run with store events logged to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	st := store.New(
		store.WithIDGenerator(store.NewSequenceGenerator(IDPrefix)),
		store.WithLogger(logger),
	)

	h := &Harness{
		store:   st,
		todos:   todo.NewService(st, todo.WithClock(testutil.NewDeterministicClock())),
		view:    store.View[todo.Todo](st, todo.Collection),
		aliases: make(map[string]string),
		logger:  logger,
	}

	if err := h.seed(scenario.Seed); err != nil {
		return nil, fmt.Errorf("failed to seed: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		h.executeStep(i+1, step, result)
	}

	items := h.view.GetItems()
	result.Todos = items
	result.Stats = todo.Count(items)

	if scenario.Expect != nil {
		for _, msg := range checkExpect(scenario.Expect, items, nil) {
			result.AddError("final: " + msg)
		}
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, h.lookup) {
		result.AddError(msg)
	}

	return result, nil
}

// seed creates the seed todos. Seeding is not traced.
func (h *Harness) seed(items []SeedItem) error {
	for i, item := range items {
		t, err := h.todos.Create(item.Text, item.Tags...)
		if err != nil {
			return fmt.Errorf("seed[%d]: %w", i, err)
		}
		if item.Completed {
			if _, err := h.todos.SetCompleted(t.ID, true); err != nil {
				return fmt.Errorf("seed[%d]: %w", i, err)
			}
		}
		if item.As != "" {
			h.aliases[item.As] = t.ID
		}
	}
	return nil
}

// executeStep applies one step and records its trace event.
func (h *Harness) executeStep(n int, step Step, result *Result) {
	before := h.view.GetItems()
	ref, err := h.apply(step)
	after := h.view.GetItems()

	ev := TraceEvent{
		Step:    n,
		Action:  step.Action,
		Ref:     ref,
		Changed: !store.Same(before, after),
		Total:   len(after),
	}
	if err != nil {
		ev.Error = errorCode(err)
	}
	result.AddTrace(ev)

	h.logger.Debug("scenario step",
		"step", n,
		"action", step.Action,
		"changed", ev.Changed,
		"total", ev.Total)

	switch {
	case step.Error == "" && err != nil:
		result.AddError(fmt.Sprintf("step %d (%s): unexpected error: %v", n, step.Action, err))
	case step.Error != "" && ev.Error != step.Error:
		actual := ev.Error
		if actual == "" {
			actual = "success"
		}
		result.AddError(fmt.Sprintf("step %d (%s): expected error %s, got %s", n, step.Action, step.Error, actual))
	}

	if step.Expect != nil {
		for _, msg := range checkExpect(step.Expect, after, &ev.Changed) {
			result.AddError(fmt.Sprintf("step %d (%s): %s", n, step.Action, msg))
		}
	}
}

// apply runs the step's action. It returns the ref recorded in the trace.
func (h *Harness) apply(step Step) (string, error) {
	switch step.Action {
	case ActionAdd:
		t, err := h.todos.Create(step.Text, step.Tags...)
		if err != nil {
			return step.As, err
		}
		if step.As != "" {
			h.aliases[step.As] = t.ID
		}
		return step.As, nil

	case ActionToggle:
		_, err := h.todos.Toggle(h.resolve(step.Ref))
		return step.Ref, err

	case ActionSet:
		_, err := h.todos.SetCompleted(h.resolve(step.Ref), *step.Completed)
		return step.Ref, err

	case ActionEdit:
		_, err := h.todos.Edit(h.resolve(step.Ref), step.Text)
		return step.Ref, err

	case ActionRetag:
		_, err := h.todos.Retag(h.resolve(step.Ref), step.Tags...)
		return step.Ref, err

	case ActionRemove:
		return step.Ref, h.todos.Remove(h.resolve(step.Ref))

	case ActionToggleAll:
		h.todos.ToggleAll()
		return "", nil

	case ActionClearCompleted:
		h.todos.ClearCompleted()
		return "", nil
	}

	return "", fmt.Errorf("unknown action %q", step.Action)
}

// resolve maps an alias to its todo id. Anything else is used as an id.
func (h *Harness) resolve(ref string) string {
	if id, ok := h.aliases[ref]; ok {
		return id
	}
	return ref
}

// lookup returns the todo a ref points at in the final list.
func (h *Harness) lookup(ref string) (*todo.Todo, bool) {
	id := h.resolve(ref)
	return h.view.FindItem(func(t *todo.Todo) bool { return t.ID == id })
}

func errorCode(err error) string {
	if code := todo.CodeOf(err); code != "" {
		return string(code)
	}
	return "INTERNAL"
}
