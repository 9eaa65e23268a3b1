package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentWorker, Output: &buf})

	logger.Info("backup created", "count", 2)
	logger.WarnContext(context.Background(), "source missing")
	logger.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "component=worker")
	assert.Contains(t, out, "count=2")
	assert.Contains(t, out, "source missing")
	assert.NotContains(t, out, "hidden")
}

func TestWithKeepsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Component: ComponentApp, Output: &buf}).With("cmd", "add")

	logger.Debug("parsed flags")

	assert.Equal(t, ComponentApp, logger.Component())
	assert.Contains(t, buf.String(), "component=app")
	assert.Contains(t, buf.String(), "cmd=add")
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentApp, Output: &buf})
	ctx := WithLogger(context.Background(), logger)

	FromContext(ctx, ComponentBackup).Warn("missing source")
	assert.Contains(t, buf.String(), "component=backup")
	assert.Equal(t, ComponentApp, logger.Component())

	fallback := FromContext(context.Background(), ComponentBudget)
	assert.Equal(t, ComponentBudget, fallback.Component())
}

func TestLogFields(t *testing.T) {
	fields := NewFields().
		WithOperation(OpPublish).
		WithError(nil).
		With(FieldEventType, "budget.set")

	assert.Equal(t, OpPublish, fields[FieldOperation])
	assert.NotContains(t, fields, FieldError)
	assert.Len(t, fields.ToSlice(), 4)

	fields.WithError(errors.New("channel closed"))
	assert.Equal(t, "channel closed", fields[FieldError])
}
