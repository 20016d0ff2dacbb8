package stack_error

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBase = errors.New("base")

func load() error {
	return TrackErrorStack(errBase).AddContext("file", "a.md")
}

func convert() error {
	if err := load(); err != nil {
		return TrackErrorStack(err).AddContext("file", "b.md").AddContext("format", "md")
	}
	return nil
}

func TestTrackErrorStack(t *testing.T) {
	err := convert()
	require.Error(t, err)
	assert.ErrorIs(t, err, errBase)
	assert.Equal(t, "base", err.Error())

	var te *TrackerError
	require.True(t, errors.As(err, &te))
	assert.Len(t, te.ErrStack, 2)
	assert.Contains(t, te.ErrStack[0].Value.String(), "error_test.go")
	assert.Equal(t, map[string]any{"file": "a.md", "format": "md"}, te.Context)

	assert.Nil(t, TrackErrorStack(nil))
}

func TestTrackWrapped(t *testing.T) {
	inner := TrackErrorStack(errBase)
	outer := TrackErrorStack(fmt.Errorf("outer: %w", inner))
	assert.Same(t, inner, outer)
	assert.Len(t, outer.ErrStack, 2)
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	LogError(log, "Convert file", convert(), "workers", 2)

	out := buf.String()
	assert.Contains(t, out, "trace:")
	assert.Contains(t, out, "msg=\"Convert file\"")
	assert.Contains(t, out, "file=a.md")
	assert.Contains(t, out, "format=md")
	assert.Contains(t, out, "workers=2")
	assert.Contains(t, out, "err=base")
}
