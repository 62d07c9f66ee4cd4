package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestNewWithWriterLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := NewWithWriter(&bytes.Buffer{}, tt.level, false)
			assert.Equal(t, tt.expected, l.Level())
		})
	}
}

func TestLoggerWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "debug", false)

	l.Debug().
		Str("query_id", "q-1").
		Int("rows", 3).
		Int64("params", 2).
		Bool("raw", true).
		Dur("duration", 1500*time.Millisecond).
		Interface("args", []any{1, "x"}).
		Err(errors.New("boom")).
		Msg("select fetched")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "debug", e["level"])
	assert.Equal(t, "select fetched", e["message"])
	assert.Equal(t, "q-1", e["query_id"])
	assert.InDelta(t, 3, e["rows"], 0)
	assert.InDelta(t, 2, e["params"], 0)
	assert.Equal(t, true, e["raw"])
	assert.InDelta(t, 1500, e["duration"], 0)
	assert.Equal(t, []any{float64(1), "x"}, e["args"])
	assert.Equal(t, "boom", e["error"])
	assert.Contains(t, e, "time")
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn", false)

	l.Debug().Msg("hidden")
	l.Info().Msg("hidden")
	l.Warn().Msgf("slow %s", "query")
	l.Error().Msg("failed")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "slow query", entries[0]["message"])
	assert.Equal(t, "error", entries[1]["level"])
}

func TestLoggerMasksSensitiveFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info", false)

	l.Info().
		Str("password", "hunter2").
		Interface("dsn", "user:pw@tcp(db)/app").
		Msg("connecting")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, DefaultMaskValue, entries[0]["password"])
	assert.Equal(t, DefaultMaskValue, entries[0]["dsn"])
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info", false).WithFields(map[string]any{
		"component": "cli",
		"token":     "abc",
	})

	l.Info().Msg("started")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "cli", entries[0]["component"])
	assert.Equal(t, DefaultMaskValue, entries[0]["token"])
}

func TestPrettyOutput(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, "info", true).Info().Str("vendor", "sqlite").Msg("Opened SQLite database")

	out := buf.String()
	assert.Contains(t, out, "Opened SQLite database")
	assert.Contains(t, out, "vendor=")
	assert.False(t, json.Valid([]byte(strings.TrimSpace(out))))
}

func TestNopDiscards(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() {
		l.Debug().Str("password", "x").Int("n", 1).Msg("nothing")
		l.WithFields(map[string]any{"a": 1}).Info().Msg("nothing")
	})
}
