package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todokit/internal/testutil"
)

func mustParse(t *testing.T, yaml string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(yaml))
	require.NoError(t, err)
	return s
}

func TestRun_BasicCRUD(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/basic_crud.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)

	require.Len(t, result.Trace, 6)
	assert.Equal(t, TraceEvent{Step: 6, Action: ActionRemove, Ref: "milk", Total: 1, Error: "NOT_FOUND"}, result.Trace[5])

	require.Len(t, result.Todos, 1)
	assert.Equal(t, "todo-0002", result.Todos[0].ID)
	assert.Equal(t, []string{"work"}, result.Todos[0].Tags)
}

func TestRun_DeterministicTimestamps(t *testing.T) {
	s := mustParse(t, `
name: stamps
description: d
steps:
  - action: add
    text: a
  - action: add
    text: b
`)
	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	require.Len(t, first.Todos, 2)
	assert.Equal(t, testutil.Epoch, first.Todos[0].CreatedAt)
	assert.True(t, first.Todos[1].CreatedAt.After(first.Todos[0].CreatedAt))
	assert.Equal(t, first.Todos[1].CreatedAt, second.Todos[1].CreatedAt)
	assert.Equal(t, first.Todos[1].ID, second.Todos[1].ID)
}

func TestRun_UnexpectedError(t *testing.T) {
	s := mustParse(t, `
name: missing
description: d
steps:
  - action: toggle
    ref: nobody
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "step 1 (toggle): unexpected error")
	assert.Equal(t, "NOT_FOUND", result.Trace[0].Error)
}

func TestRun_ExpectedErrorNotRaised(t *testing.T) {
	s := mustParse(t, `
name: no_error
description: d
steps:
  - action: add
    text: fine
    error: INVALID_INPUT
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected error INVALID_INPUT, got success")
}

func TestRun_StepExpectFailures(t *testing.T) {
	s := mustParse(t, `
name: wrong
description: d
steps:
  - action: add
    text: a
    expect:
      total: 2
      active: 0
      changed: false
      texts: [b]
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, []string{
		"step 1 (add): expected total 2, got 1",
		"step 1 (add): expected active 0, got 1",
		`step 1 (add): expected texts ["b"], got ["a"]`,
		"step 1 (add): expected changed=false, got true",
	}, result.Errors)
}

func TestRun_FinalExpectFailure(t *testing.T) {
	s := mustParse(t, `
name: final
description: d
steps:
  - action: add
    text: a
expect:
  completed: 1
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.Equal(t, []string{"final: expected completed 1, got 0"}, result.Errors)
}

func TestRun_InvalidSeed(t *testing.T) {
	s := mustParse(t, `
name: bad_seed
description: d
seed:
  - text: ""
steps:
  - action: toggle_all
`)
	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to seed")
	assert.Contains(t, err.Error(), "INVALID_INPUT")
}

func TestRun_SeedIsNotTraced(t *testing.T) {
	s := mustParse(t, `
name: seeded
description: d
seed:
  - text: a
    completed: true
  - text: b
steps:
  - action: clear_completed
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 1)
	assert.Equal(t, TraceEvent{Step: 1, Action: ActionClearCompleted, Changed: true, Total: 1}, result.Trace[0])
}

func TestRunWithLogger(t *testing.T) {
	logger, buf := testutil.NewBufferLogger()
	s := mustParse(t, `
name: logged
description: d
steps:
  - action: add
    text: a
`)
	result, err := RunWithLogger(s, logger)
	require.NoError(t, err)
	assert.True(t, result.Pass)
	assert.Contains(t, buf.String(), "scenario step")
	assert.Contains(t, buf.String(), "collection updated")
}
