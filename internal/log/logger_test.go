package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal(line, &m))
		out = append(out, m)
	}
	return out
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Format: "json", Component: ComponentStore, Output: &buf})

	l.Info("dispatched", FieldAction, "ADD_CATEGORY")
	l.WithComponent(ComponentPersist).Warn("write failed")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "store", lines[0][FieldComponent])
	assert.Equal(t, "ADD_CATEGORY", lines[0][FieldAction])
	assert.Equal(t, "persist", lines[1][FieldComponent])
	assert.Equal(t, "WARN", lines[1]["level"])
}

func TestLoggerLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Format: "json", Output: &buf})

	l.Debug("hidden")
	l.Info("hidden")
	l.Error("shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["msg"])
	assert.Equal(t, ComponentApp, lines[0][FieldComponent])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, "unknown", FromContext(context.Background()).Component())

	l := Discard().WithComponent(ComponentHTTP)
	ctx := WithLogger(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
}

func TestMiddlewareChain(t *testing.T) {
	var got *Logger
	h := Middleware(Discard())(ComponentMiddleware(ComponentHTTP)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, got)
	assert.Equal(t, ComponentHTTP, got.Component())
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithOperation(OpDelete).
		WithError(errors.New("boom")).
		WithError(nil).
		WithBudget("b1", "Food", "100.00")

	assert.Equal(t, OpDelete, f[FieldOperation])
	assert.Equal(t, "boom", f[FieldError])
	assert.Equal(t, "Food", f[FieldCategory])
	assert.Len(t, f.ToSlice(), len(f)*2)
}
