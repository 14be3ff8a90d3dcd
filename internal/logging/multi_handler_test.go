package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiHandler_PerHandlerLevels(t *testing.T) {
	var console, file bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewTextHandler(&file, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	logger := slog.New(h)

	assert.True(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, h.Enabled(context.Background(), LevelTrace))

	logger.Debug("stored entry", "path", "prefs.js")
	logger.Warn("skipping unreadable file")

	assert.NotContains(t, console.String(), "stored entry")
	assert.Contains(t, console.String(), "skipping unreadable file")
	assert.Contains(t, file.String(), "stored entry")
	assert.Contains(t, file.String(), "skipping unreadable file")
}

func TestMultiHandler_AttrsAndGroups(t *testing.T) {
	var a, b bytes.Buffer
	logger := slog.New(NewMultiHandler(
		slog.NewTextHandler(&a, nil),
		slog.NewTextHandler(&b, nil),
	)).With("browser", "firefox").WithGroup("restore")

	logger.Info("restored", "files", 4)

	for _, out := range []string{a.String(), b.String()} {
		assert.Contains(t, out, "browser=firefox")
		assert.Contains(t, out, "restore.files=4")
	}
}

func TestNewMultiHandler_Flattens(t *testing.T) {
	inner := NewMultiHandler(slog.DiscardHandler, slog.DiscardHandler)
	outer := NewMultiHandler(inner, slog.DiscardHandler)
	require.Len(t, outer.handlers, 3)

	with, ok := outer.WithAttrs([]slog.Attr{slog.String("k", "v")}).(*MultiHandler)
	require.True(t, ok)
	assert.Len(t, with.handlers, 3)
}
