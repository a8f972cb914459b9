package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/todokit/internal/store"
	"github.com/roach88/todokit/internal/testutil"
)

// cliRunner runs commands against one database with deterministic ids and
// timestamps shared across invocations.
type cliRunner struct {
	t     *testing.T
	db    string
	ids   *store.SequenceGenerator
	clock *testutil.DeterministicClock
}

func newCLIRunner(t *testing.T) *cliRunner {
	t.Helper()
	return &cliRunner{
		t:     t,
		db:    filepath.Join(t.TempDir(), "todo.db"),
		ids:   store.NewSequenceGenerator("td"),
		clock: testutil.NewDeterministicClock(),
	}
}

// run executes the CLI and returns stdout, stderr and the exit code.
func (r *cliRunner) run(args ...string) (string, string, int) {
	return r.runContext(context.Background(), args...)
}

func (r *cliRunner) runContext(ctx context.Context, args ...string) (string, string, int) {
	r.t.Helper()
	var stdout, stderr bytes.Buffer
	opts := &RootOptions{IDGenerator: r.ids, Clock: r.clock}
	code := execute(ctx, newRootCommand(opts), append([]string{"--db", r.db}, args...), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

// mustRun runs the CLI and fails the test unless it exits 0.
func (r *cliRunner) mustRun(args ...string) string {
	r.t.Helper()
	stdout, stderr, code := r.run(args...)
	require.Equal(r.t, ExitSuccess, code, "stdout: %s\nstderr: %s", stdout, stderr)
	return stdout
}

// runJSON runs the CLI with --format json and decodes the envelope.
func (r *cliRunner) runJSON(args ...string) (CLIResponse, int) {
	r.t.Helper()
	stdout, _, code := r.run(append([]string{"--format", "json"}, args...)...)
	var resp CLIResponse
	require.NoError(r.t, json.Unmarshal([]byte(stdout), &resp), "stdout: %s", stdout)
	return resp, code
}
