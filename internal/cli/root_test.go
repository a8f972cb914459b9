package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "todo", cmd.Use)
	assert.Contains(t, cmd.Long, "unique id prefix")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{
		"add", "list", "toggle", "done", "undo", "edit", "rm",
		"toggle-all", "clear-completed", "stats", "export", "import", "serve", "test",
	}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("db"))
}

func TestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()

	tests := []struct {
		command string
		flag    string
		short   string
		def     string
	}{
		{"add", "tag", "t", "[]"},
		{"list", "filter", "", "all"},
		{"list", "tag", "", ""},
		{"export", "output", "o", ""},
		{"serve", "listen", "", ""},
		{"test", "update", "", "false"},
		{"test", "filter", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.command+"/"+tt.flag, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{tt.command})
			require.NoError(t, err)
			f := sub.Flags().Lookup(tt.flag)
			require.NotNil(t, f)
			assert.Equal(t, tt.short, f.Shorthand)
			assert.Equal(t, tt.def, f.DefValue)
		})
	}
}

func TestExecute_InvalidFormat(t *testing.T) {
	r := newCLIRunner(t)
	_, stderr, code := r.run("--format", "xml", "stats")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, `invalid format "xml"`)
}

func TestExecute_UnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), []string{"frobnicate"}, &stdout, &stderr)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr.String(), "unknown command")
}

func TestExecute_MissingArgs(t *testing.T) {
	r := newCLIRunner(t)
	_, stderr, code := r.run("toggle")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "accepts 1 arg(s)")
}

func TestExecute_VerboseReportsTodoList(t *testing.T) {
	r := newCLIRunner(t)
	r.mustRun("add", "first")

	_, stderr, code := r.run("--verbose", "stats")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stderr, "todo list "+r.db+": 1 todos")

	_, stderr, code = r.run("stats")
	require.Equal(t, ExitSuccess, code)
	assert.NotContains(t, stderr, "todo list ")
}
