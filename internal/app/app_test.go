package app

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todokit/internal/config"
	"github.com/roach88/todokit/internal/store"
	"github.com/roach88/todokit/internal/testutil"
	"github.com/roach88/todokit/internal/todo"
)

func openTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := Open(context.Background(), cfg,
		WithIDGenerator(store.NewSequenceGenerator("td")),
		WithClock(testutil.NewDeterministicClock()),
		WithLogger(testutil.TestLogger(t)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func dbConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Database = filepath.Join(t.TempDir(), "todos.db")
	return cfg
}

func texts(items []*todo.Todo) []string {
	out := make([]string, len(items))
	for i, t := range items {
		out[i] = t.Text
	}
	return out
}

func TestOpen_InMemory(t *testing.T) {
	a := openTestApp(t, nil)

	assert.False(t, a.Persistent())
	created, err := a.Todos().Create("hello")
	require.NoError(t, err)
	assert.Equal(t, "td-0001", created.ID)
	assert.Equal(t, []string{todo.Collection}, a.Store().Keys())
	assert.NoError(t, a.Close())
}

func TestOpen_PersistsAcrossRestarts(t *testing.T) {
	cfg := dbConfig(t)

	first := openTestApp(t, cfg)
	require.True(t, first.Persistent())
	svc := first.Todos()
	a, err := svc.Create("alpha", "Work")
	require.NoError(t, err)
	_, err = svc.Create("beta")
	require.NoError(t, err)
	c, err := svc.Create("gamma")
	require.NoError(t, err)
	_, err = svc.Toggle(a.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Remove(c.ID))
	want := svc.List(todo.FilterAll, "")
	require.NoError(t, first.Close())

	second := openTestApp(t, cfg)
	got := second.Todos().List(todo.FilterAll, "")
	require.Len(t, got, 2)
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Text, got[i].Text)
		assert.Equal(t, want[i].Completed, got[i].Completed)
		assert.Equal(t, want[i].Tags, got[i].Tags)
		assert.True(t, want[i].CreatedAt.Equal(got[i].CreatedAt))
	}
	require.NotNil(t, got[0].CompletedAt)
}

func TestOpen_SeedsOnlyEmptyList(t *testing.T) {
	cfg := dbConfig(t)
	cfg.Seed = []config.Seed{
		{Text: "Read the docs", Tags: []string{"learning"}},
		{Text: "Ship it", Completed: true},
	}

	first := openTestApp(t, cfg)
	items := first.Todos().List(todo.FilterAll, "")
	assert.Equal(t, []string{"Read the docs", "Ship it"}, texts(items))
	assert.Equal(t, todo.Stats{Total: 2, Active: 1, Completed: 1}, first.Todos().Stats())
	require.NoError(t, first.Close())

	second := openTestApp(t, cfg)
	assert.Len(t, second.Todos().List(todo.FilterAll, ""), 2, "seed must not be applied twice")
}

func TestOpen_InvalidSeed(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = []config.Seed{{Text: strings.Repeat("x", todo.MaxTextLength+1)}}

	_, err := Open(context.Background(), cfg, WithLogger(testutil.DiscardLogger()))
	require.Error(t, err)
	assert.True(t, todo.IsInvalid(err))
}

func TestOpen_BadDatabasePath(t *testing.T) {
	cfg := config.Default()
	cfg.Database = "/nonexistent/dir/todos.db"

	_, err := Open(context.Background(), cfg, WithLogger(testutil.DiscardLogger()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open app")
}

func TestAutosave_ErrorIsSurfaced(t *testing.T) {
	logger, logs := testutil.NewBufferLogger()
	a, err := Open(context.Background(), dbConfig(t), WithLogger(logger))
	require.NoError(t, err)

	_, err = a.Todos().Create("saved")
	require.NoError(t, err)
	require.NoError(t, a.Err())

	// Pull the database out from under the autosaver.
	require.NoError(t, a.db.Close())
	_, err = a.Todos().Create("lost")
	require.NoError(t, err, "store mutations never fail")

	assert.Error(t, a.Err())
	assert.Contains(t, logs.String(), "autosave failed")
	assert.Error(t, a.Close())
}

func TestAutosave_StopsAfterClose(t *testing.T) {
	cfg := dbConfig(t)
	a := openTestApp(t, cfg)
	svc := a.Todos()
	_, err := svc.Create("kept")
	require.NoError(t, err)
	require.NoError(t, a.Close())

	// The service still works in memory but nothing reaches the database.
	_, err = svc.Create("not saved")
	require.NoError(t, err)

	b := openTestApp(t, cfg)
	assert.Equal(t, []string{"kept"}, texts(b.Todos().List(todo.FilterAll, "")))
}

func TestMisuse_Panics(t *testing.T) {
	var zero App
	assertPanicContains(t, "not built by app.Open", func() { zero.Todos() })

	var nilApp *App
	assertPanicContains(t, "not built by app.Open", func() { nilApp.Store() })

	a := openTestApp(t, nil)
	require.NoError(t, a.Close())
	assertPanicContains(t, "called after Close", func() { a.Todos() })
	assert.NoError(t, a.Close(), "second Close is harmless")
}

func assertPanicContains(t *testing.T, want string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		assert.Contains(t, r, want)
	}()
	fn()
}

func TestExportImport_RoundTrip(t *testing.T) {
	src := openTestApp(t, nil)
	a, _ := src.Todos().Create("<b>first</b>", "x")
	_, _ = src.Todos().Create("second")
	_, _ = src.Todos().Toggle(a.ID)

	var buf bytes.Buffer
	require.NoError(t, src.ExportYAML(&buf))
	assert.Contains(t, buf.String(), "version: 1")
	assert.Contains(t, buf.String(), "<b>first</b>")

	dst := openTestApp(t, nil)
	_, _ = dst.Todos().Create("replaced")
	n, err := dst.ImportYAML(&buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	want := src.Todos().List(todo.FilterAll, "")
	got := dst.Todos().List(todo.FilterAll, "")
	require.Len(t, got, 2)
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Text, got[i].Text)
		assert.Equal(t, want[i].Completed, got[i].Completed)
		assert.Equal(t, want[i].Tags, got[i].Tags)
	}
}

func TestExport_Empty(t *testing.T) {
	a := openTestApp(t, nil)

	var buf bytes.Buffer
	require.NoError(t, a.ExportYAML(&buf))
	assert.Equal(t, "version: 1\ntodos: []\n", buf.String())
}

func TestImport_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"wrong version", "version: 2\ntodos: []\n", "unsupported export version 2"},
		{"unknown field", "version: 1\ntodos: []\nextra: true\n", "field extra not found"},
		{"missing text", "version: 1\ntodos:\n  - id: a\n", "todo 0: text must not be empty"},
		{"blank text", "version: 1\ntodos:\n  - text: ok\n  - text: \"   \"\n", "todo 1: text must not be empty"},
		{"null todo", "version: 1\ntodos:\n  - text: ok\n  - null\n", "todo 1: missing"},
		{"text too long", "version: 1\ntodos:\n  - text: " + strings.Repeat("x", todo.MaxTextLength+1) + "\n", "todo 0: text exceeds 500"},
		{"tag too long", "version: 1\ntodos:\n  - text: ok\n    tags: [" + strings.Repeat("t", todo.MaxTagLength+1) + "]\n", "exceeds 32"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := openTestApp(t, nil)
			_, _ = a.Todos().Create("untouched")

			_, err := a.ImportYAML(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, []string{"untouched"}, texts(a.Todos().List(todo.FilterAll, "")))
		})
	}
}

func TestImport_Normalizes(t *testing.T) {
	a := openTestApp(t, nil)
	doc := "version: 1\ntodos:\n  - id: a\n    text: \"  padded  \"\n    tags: [Work, work, \" Home \"]\n"

	n, err := a.ImportYAML(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := a.Todos().Get("a")
	require.NoError(t, err)
	assert.Equal(t, "padded", got.Text)
	assert.Equal(t, []string{"work", "home"}, got.Tags)
}

func TestOpen_FreshIDsSkipRestoredIDs(t *testing.T) {
	cfg := dbConfig(t)
	first := openTestApp(t, cfg)
	_, err := first.Todos().Create("one")
	require.NoError(t, err)
	_, err = first.Todos().Create("two")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// The second app starts its id sequence over at td-0001.
	second := openTestApp(t, cfg)
	created, err := second.Todos().Create("three")
	require.NoError(t, err)
	assert.Equal(t, "td-0003", created.ID)
	assert.Equal(t, []string{"one", "two", "three"}, texts(second.Todos().List(todo.FilterAll, "")))
}

func TestAutosave_EmptyListDeletesCollection(t *testing.T) {
	cfg := dbConfig(t)
	a := openTestApp(t, cfg)
	created, err := a.Todos().Create("short lived")
	require.NoError(t, err)

	keys, err := a.db.Collections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{todo.Collection}, keys)

	require.NoError(t, a.Todos().Remove(created.ID))
	require.NoError(t, a.Err())
	keys, err = a.db.Collections(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)
	require.NoError(t, a.Close())

	b := openTestApp(t, cfg)
	assert.Empty(t, b.Todos().List(todo.FilterAll, ""))
}

func TestOpen_LogsStoredCollections(t *testing.T) {
	cfg := dbConfig(t)
	first := openTestApp(t, cfg)
	_, err := first.Todos().Create("kept")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	logger, logs := testutil.NewBufferLogger()
	second, err := Open(context.Background(), cfg, WithLogger(logger))
	require.NoError(t, err)
	defer second.Close()
	assert.Contains(t, logs.String(), "stored collections")
	assert.Contains(t, logs.String(), todo.Collection)
}
