package testutil

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferLogger_CapturesDebug(t *testing.T) {
	logger, buf := NewBufferLogger()
	logger.Debug("collection updated", "collection", "todos")

	assert.Contains(t, buf.String(), "collection updated")
	assert.Contains(t, buf.String(), "collection=todos")
}

func TestDiscardLogger_DropsEverything(t *testing.T) {
	logger := DiscardLogger()
	logger.Error("ignored")
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
}
