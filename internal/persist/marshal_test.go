package persist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRows(t *testing.T) {
	items := []*note{
		{ID: "n1", Text: "<b>bold</b> & co"},
		{ID: "n2", Text: "done", Done: true, Attrs: map[string]string{"z": "1", "a": "2"}},
	}

	rows, err := EncodeRows(items)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "n1", rows[0].ID)
	assert.Equal(t, `{"id":"n1","text":"<b>bold</b> & co"}`, rows[0].Body, "HTML must not be escaped")
	assert.Equal(t, `{"id":"n2","text":"done","done":true,"attrs":{"a":"2","z":"1"}}`, rows[1].Body)
}

func TestEncodeRows_Empty(t *testing.T) {
	rows, err := EncodeRows[note]([]*note{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDecodeRows_RowIDWins(t *testing.T) {
	rows := []Row{
		{ID: "n1", Body: `{"id":"stale","text":"hello"}`},
		{ID: "n2", Body: `{"text":"no id in body"}`},
	}

	items, err := DecodeRows[note](rows)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, &note{ID: "n1", Text: "hello"}, items[0])
	assert.Equal(t, &note{ID: "n2", Text: "no id in body"}, items[1])
}

func TestDecodeRows_BadBody(t *testing.T) {
	_, err := DecodeRows[note]([]Row{{ID: "n1", Body: "{not json"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `decode "n1"`)
}

func TestRoundTrip_ThroughDatabase(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	in := []*note{
		{ID: "b", Text: "second", Attrs: map[string]string{"k": "v"}},
		{ID: "a", Text: "first", Done: true},
	}
	rows, err := EncodeRows(in)
	require.NoError(t, err)
	require.NoError(t, s.SaveCollection(ctx, "notes", rows))

	loaded, err := s.LoadCollection(ctx, "notes")
	require.NoError(t, err)
	out, err := DecodeRows[note](loaded)
	require.NoError(t, err)

	assert.Equal(t, in, out)
}
