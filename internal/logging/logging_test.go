package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l, err := New(Options{Writer: &buf, Level: "warn", Format: "json"})
	require.NoError(t, err)

	l.Info("clean: hidden")
	l.Warn("clean: rows dropped", "rows", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec), "exactly one JSON line expected: %s", buf.String())
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "clean: rows dropped", rec["msg"])
	assert.Equal(t, 3.0, rec["rows"])
}

func TestNew_TintWithoutTerminalHasNoColor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l, err := New(Options{Writer: &buf, Level: "debug"})
	require.NoError(t, err)

	l.Debug("load: batch", "n", 1, Err(errors.New("boom")))
	out := buf.String()
	assert.Contains(t, out, "load: batch")
	assert.Contains(t, out, "n=1")
	assert.Contains(t, out, "boom")
	assert.NotContains(t, out, "\x1b[", "no ANSI escapes when not a terminal")
}

func TestNew_Text(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l, err := New(Options{Writer: &buf, Format: "TEXT"})
	require.NoError(t, err)
	l.Info("describe: shape", "rows", 2)
	assert.Contains(t, buf.String(), `msg="describe: shape" rows=2`)
}

func TestNew_Invalid(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
	_, err = New(Options{Format: "xml"})
	assert.Error(t, err)
}
