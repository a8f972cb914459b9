package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Seed contains todos created before the steps. Seeding is not traced.
	Seed []SeedItem `yaml:"seed,omitempty"`

	// Steps are the traced user actions.
	Steps []Step `yaml:"steps"`

	// Expect checks the list after the last step.
	Expect *Expect `yaml:"expect,omitempty"`

	// Assertions validate the trace and the final todos.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// SeedItem is a todo created before the scenario steps.
type SeedItem struct {
	Text      string   `yaml:"text"`
	Completed bool     `yaml:"completed,omitempty"`
	Tags      []string `yaml:"tags,omitempty"`
	As        string   `yaml:"as,omitempty"`
}

// Step is one user action.
type Step struct {
	// Action is one of the Action* constants.
	Action string `yaml:"action"`

	// Text is the todo text for add and edit.
	Text string `yaml:"text,omitempty"`

	// Tags are the todo tags for add and retag.
	Tags []string `yaml:"tags,omitempty"`

	// As names the todo created by add, for later refs.
	As string `yaml:"as,omitempty"`

	// Ref selects the todo for toggle, set, edit, retag and remove.
	Ref string `yaml:"ref,omitempty"`

	// Completed is the target state for set.
	Completed *bool `yaml:"completed,omitempty"`

	// Error is the expected error code, e.g. NOT_FOUND. Empty means the
	// step must succeed.
	Error string `yaml:"error,omitempty"`

	// Expect checks the list right after this step.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect checks list counters and contents. Nil fields are not checked.
type Expect struct {
	Total     *int     `yaml:"total,omitempty"`
	Active    *int     `yaml:"active,omitempty"`
	Completed *int     `yaml:"completed,omitempty"`
	Texts     []string `yaml:"texts,omitempty"`

	// Changed checks whether the step replaced the list. Only valid on
	// steps.
	Changed *bool `yaml:"changed,omitempty"`
}

// Assertion validates the trace or the final todos.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Action is the action name (trace_contains, trace_count).
	Action string `yaml:"action,omitempty"`

	// Ref narrows trace_contains to one todo and selects the todo for
	// final_state.
	Ref string `yaml:"ref,omitempty"`

	// Count is the expected number of steps (trace_count).
	Count int `yaml:"count,omitempty"`

	// Actions is the expected order (trace_order).
	Actions []string `yaml:"actions,omitempty"`

	// Expect contains expected todo fields (final_state): text, completed,
	// tags. Subset match.
	Expect map[string]any `yaml:"expect,omitempty"`

	// Absent asserts that the todo no longer exists (final_state).
	Absent bool `yaml:"absent,omitempty"`
}

// Action names.
const (
	ActionAdd            = "add"
	ActionToggle         = "toggle"
	ActionSet            = "set"
	ActionEdit           = "edit"
	ActionRetag          = "retag"
	ActionRemove         = "remove"
	ActionToggleAll      = "toggle_all"
	ActionClearCompleted = "clear_completed"
)

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "step:" vs "steps:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	aliases := make(map[string]bool)
	for i, item := range s.Seed {
		if item.As == "" {
			continue
		}
		if aliases[item.As] {
			return fmt.Errorf("seed[%d]: alias %q already defined", i, item.As)
		}
		aliases[item.As] = true
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
		if step.As != "" {
			if aliases[step.As] {
				return fmt.Errorf("steps[%d]: alias %q already defined", i, step.As)
			}
			aliases[step.As] = true
		}
	}

	if s.Expect != nil && s.Expect.Changed != nil {
		return fmt.Errorf("expect: changed is only valid on steps")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, step *Step) error {
	switch step.Action {
	case "":
		return fmt.Errorf("steps[%d]: action is required", index)
	case ActionAdd:
		// Text may be empty to exercise validation errors.
	case ActionToggle, ActionRemove, ActionEdit, ActionRetag:
		if step.Ref == "" {
			return fmt.Errorf("steps[%d]: ref is required for %s", index, step.Action)
		}
	case ActionSet:
		if step.Ref == "" {
			return fmt.Errorf("steps[%d]: ref is required for set", index)
		}
		if step.Completed == nil {
			return fmt.Errorf("steps[%d]: completed is required for set", index)
		}
	case ActionToggleAll, ActionClearCompleted:
	default:
		return fmt.Errorf("steps[%d]: unknown action %q", index, step.Action)
	}

	if step.As != "" && step.Action != ActionAdd {
		return fmt.Errorf("steps[%d]: as is only valid on add", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.Ref == "" {
			return fmt.Errorf("assertions[%d]: ref is required for final_state", index)
		}
		if len(a.Expect) == 0 && !a.Absent {
			return fmt.Errorf("assertions[%d]: expect or absent is required for final_state", index)
		}
		if len(a.Expect) > 0 && a.Absent {
			return fmt.Errorf("assertions[%d]: expect and absent are mutually exclusive", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
