package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseEntries(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e LogEntry
		require.NoError(t, json.Unmarshal([]byte(line), &e), "line: %s", line)
		entries = append(entries, e)
	}
	return entries
}

func TestJSONLogger_WritesStructuredEntries(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf, InfoLevel)

	log.Info("run complete", Iterations(5), Count(120))

	entries := parseEntries(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "INFO", entries[0].Level)
	assert.Equal(t, "run complete", entries[0].Message)
	assert.EqualValues(t, 5, entries[0].Fields["iterations"])
	assert.EqualValues(t, 120, entries[0].Fields["count"])
}

func TestJSONLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf, WarnLevel)

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")
	log.Error("shown")

	assert.Len(t, parseEntries(t, &buf), 2)
}

func TestJSONLogger_WithPreservesFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf, InfoLevel).With(Component("engine"))

	log.Info("pass done", Iterations(3))

	entries := parseEntries(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "engine", entries[0].Fields["component"])
	assert.EqualValues(t, 3, entries[0].Fields["iterations"])
}

func TestJSONLogger_CallSiteFieldOverridesPreset(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf, InfoLevel).With(Component("outer"))

	log.Info("msg", Component("inner"))

	entries := parseEntries(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "inner", entries[0].Fields["component"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, WarnLevel, ParseLevel("WARNING"))
	assert.Equal(t, ErrorLevel, ParseLevel("ERROR"))
	assert.Equal(t, InfoLevel, ParseLevel("bogus"))
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	// Must be safe to call every method
	log.Debug("x")
	log.Info("x")
	log.Warn("x")
	log.Error("x")
	log.With(Component("x")).Info("x")
	log.SetLevel(DebugLevel)
}

func TestTimedOperation(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf, InfoLevel)

	StartTimer(log, "indexing", Count(10)).End()

	entries := parseEntries(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "indexing", entries[0].Message)
	assert.Contains(t, entries[0].Fields, "latency")
	assert.EqualValues(t, 10, entries[0].Fields["count"])
}
