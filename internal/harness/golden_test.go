package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoldenScenarios(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		name := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario(f)
			require.NoError(t, err)
			assert.Equal(t, name, s.Name, "scenario name must match file name")

			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)

			require.NoError(t, AssertGolden(t, s.Name, result))
		})
	}
}

func TestRunWithGolden(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/empty_list.yaml")
	require.NoError(t, err)
	require.NoError(t, RunWithGolden(t, s))
}

func TestMarshalTrace(t *testing.T) {
	result := NewResult()
	result.AddTrace(TraceEvent{Step: 1, Action: ActionToggleAll, Total: 0})

	got, err := MarshalTrace("tiny", result)
	require.NoError(t, err)

	want := `{
  "scenario_name": "tiny",
  "trace": [
    {
      "step": 1,
      "action": "toggle_all",
      "changed": false,
      "total": 0
    }
  ],
  "stats": {
    "total": 0,
    "active": 0,
    "completed": 0
  }
}`
	assert.Equal(t, want, string(got))
}
