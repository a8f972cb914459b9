package persist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCollection_Unknown(t *testing.T) {
	s := createTestStore(t)

	rows, err := s.LoadCollection(context.Background(), "missing")
	require.NoError(t, err)
	assert.NotNil(t, rows, "empty result must be an empty slice")
	assert.Empty(t, rows)
}

func TestLoadCollection_OrderedByPosition(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Ids deliberately out of lexical order.
	require.NoError(t, s.SaveCollection(ctx, "todos", rowsOf("m", "b", "z", "a")))

	rows, err := s.LoadCollection(ctx, "todos")
	require.NoError(t, err)
	assert.Equal(t, []string{"m", "b", "z", "a"}, rowIDs(rows))
	assert.Equal(t, `{"id":"m"}`, rows[0].Body)
}

func TestCollections_Sorted(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	names, err := s.Collections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{}, names)

	require.NoError(t, s.SaveCollection(ctx, "todos", rowsOf("a")))
	require.NoError(t, s.SaveCollection(ctx, "archive", nil))

	names, err = s.Collections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"archive", "todos"}, names)
}
