package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leengari/linkplanner/internal/config"
)

func TestSetupLoggerConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := SetupLogger(config.Logging{Level: "warn"}, &buf)
	require.NoError(t, err)
	defer cleanup()

	logger.Info("hidden")
	logger.Warn("shown", "run_id", "r1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "run_id=r1")
}

func TestSetupLoggerRejectsUnknownLevel(t *testing.T) {
	_, _, err := SetupLogger(config.Logging{Level: "chatty"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	}}

	assert.True(t, h.Enabled(context.Background(), slog.LevelDebug))

	logger := slog.New(h).With("component", "planner").WithGroup("plan")
	logger.Info("estimate", "cost", 3)
	logger.Error("failed")

	assert.Equal(t, 2, strings.Count(a.String(), "component=planner"))
	assert.Contains(t, a.String(), "plan.cost=3")
	assert.Equal(t, 1, strings.Count(b.String(), "component=planner"))
	assert.NotContains(t, b.String(), "estimate")
}
