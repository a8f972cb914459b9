package harness

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/todokit/internal/todo"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s", ev.Step, ev.Action)
			if ev.Ref != "" {
				fmt.Fprintf(&buf, " %s", ev.Ref)
			}
			if ev.Error != "" {
				fmt.Fprintf(&buf, " error=%s", ev.Error)
			}
			fmt.Fprintf(&buf, " changed=%t total=%d\n", ev.Changed, ev.Total)
		}
	}

	return buf.String()
}

// LookupFunc resolves a scenario ref to a todo in the final list.
type LookupFunc func(ref string) (*todo.Todo, bool)

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, lookup LookupFunc) []string {
	var errs []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertFinalState:
			err = assertFinalState(lookup, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

// assertTraceContains checks that a successful step with the action ran,
// on the given ref if one is set.
func assertTraceContains(trace []TraceEvent, a Assertion) error {
	for _, ev := range trace {
		if ev.Action == a.Action && ev.Error == "" && (a.Ref == "" || ev.Ref == a.Ref) {
			return nil
		}
	}

	expected := "action " + a.Action
	if a.Ref != "" {
		expected += " on " + a.Ref
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the actions first appear in the given order.
// Intervening actions are allowed.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	positions := make(map[string]int, len(a.Actions))
	for _, ev := range trace {
		if _, seen := positions[ev.Action]; !seen {
			positions[ev.Action] = ev.Step
		}
	}

	var missing []string
	for _, action := range a.Actions {
		if _, ok := positions[action]; !ok {
			missing = append(missing, action)
		}
	}
	if len(missing) > 0 {
		return &AssertionError{
			Type:     AssertTraceOrder,
			Expected: "actions " + strings.Join(a.Actions, " -> "),
			Actual:   "missing " + strings.Join(missing, ", "),
			Trace:    trace,
		}
	}

	for i := 1; i < len(a.Actions); i++ {
		if positions[a.Actions[i-1]] > positions[a.Actions[i]] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: "actions " + strings.Join(a.Actions, " -> "),
				Actual:   "actual order " + strings.Join(actualOrder(positions, a.Actions), " -> "),
				Trace:    trace,
			}
		}
	}
	return nil
}

func actualOrder(positions map[string]int, actions []string) []string {
	order := append([]string(nil), actions...)
	sort.SliceStable(order, func(i, j int) bool {
		return positions[order[i]] < positions[order[j]]
	})
	return order
}

// assertTraceCount checks how many steps ran the action, failed ones
// included.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, ev := range trace {
		if ev.Action == a.Action {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d x %s", a.Count, a.Action),
			Actual:   fmt.Sprintf("%d x %s", count, a.Action),
			Trace:    trace,
		}
	}
	return nil
}

// assertFinalState checks the referenced todo in the final list.
func assertFinalState(lookup LookupFunc, a Assertion) error {
	t, ok := lookup(a.Ref)
	if a.Absent {
		if ok {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: a.Ref + " absent",
				Actual:   fmt.Sprintf("%s present (id=%s)", a.Ref, t.ID),
			}
		}
		return nil
	}
	if !ok {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: a.Ref + " present",
			Actual:   a.Ref + " absent",
		}
	}

	actual := map[string]any{
		"text":      t.Text,
		"completed": t.Completed,
		"tags":      t.Tags,
	}
	keys := make([]string, 0, len(a.Expect))
	for k := range a.Expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		got, known := actual[k]
		if !known {
			return fmt.Errorf("final_state %s: unknown field %q", a.Ref, k)
		}
		if !valuesEqual(a.Expect[k], got) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("%s.%s = %s", a.Ref, k, formatValue(a.Expect[k])),
				Actual:   fmt.Sprintf("%s.%s = %s", a.Ref, k, formatValue(got)),
			}
		}
	}
	return nil
}

// valuesEqual compares a YAML-decoded expected value with a todo field.
// Both sides are compared in their JSON form, so []any{"a"} equals
// []string{"a"} and an empty list equals nil tags.
func valuesEqual(expected, actual any) bool {
	return formatValue(expected) == formatValue(actual)
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "[]"
	case []string:
		if len(x) == 0 {
			return "[]"
		}
	case []any:
		if len(x) == 0 {
			return "[]"
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// checkExpect compares items against exp. changed is nil for the final
// check, where Changed does not apply.
func checkExpect(exp *Expect, items []*todo.Todo, changed *bool) []string {
	var msgs []string
	stats := todo.Count(items)

	check := func(name string, want *int, got int) {
		if want != nil && *want != got {
			msgs = append(msgs, fmt.Sprintf("expected %s %d, got %d", name, *want, got))
		}
	}
	check("total", exp.Total, stats.Total)
	check("active", exp.Active, stats.Active)
	check("completed", exp.Completed, stats.Completed)

	if exp.Texts != nil {
		texts := make([]string, len(items))
		for i, t := range items {
			texts[i] = t.Text
		}
		if formatValue(exp.Texts) != formatValue(texts) {
			msgs = append(msgs, fmt.Sprintf("expected texts %s, got %s", formatValue(exp.Texts), formatValue(texts)))
		}
	}

	if exp.Changed != nil && changed != nil && *exp.Changed != *changed {
		msgs = append(msgs, fmt.Sprintf("expected changed=%t, got %t", *exp.Changed, *changed))
	}
	return msgs
}
