package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestLoggerWritesServiceAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Level: InfoLevel, Format: "json", Service: "notifier", Output: &buf})

	log.WithFields(StringField("queue", "DiningQueue")).Info("drain started", IntField("batch_size", 1))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "drain started", lines[0]["msg"])
	assert.Equal(t, "notifier", lines[0]["service"])
	assert.Equal(t, "DiningQueue", lines[0]["queue"])
	assert.Equal(t, "1", lines[0]["batch_size"])
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Level: WarnLevel, Output: &buf})

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")
	log.Error("shown too")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "warning", lines[0]["level"])
	assert.Equal(t, "error", lines[1]["level"])
}

func TestWithFieldsIsImmutable(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(Config{Output: &buf})
	_ = base.WithFields(StringField("k", "v"))

	base.Info("plain")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	_, ok := lines[0]["k"]
	assert.False(t, ok)
}

func TestFieldHelpers(t *testing.T) {
	assert.Equal(t, LogField{Key: "error", Value: "boom"}, ErrorField(errors.New("boom")))
	assert.Equal(t, LogField{Key: "error", Value: "<nil>"}, ErrorField(nil))
	assert.Equal(t, "true", BoolField("b", true).Value)
	assert.Equal(t, "1.5s", DurationField("d", 1500*time.Millisecond).Value)
	assert.Equal(t, "[a b]", Field("slice", []string{"a", "b"}).Value)
}

func TestEnsureCorrelationID(t *testing.T) {
	t.Run("keeps existing id", func(t *testing.T) {
		ctx := WithCorrelationIDContext(context.Background(), "existing")
		ctx, id := EnsureCorrelationID(ctx, "candidate")
		assert.Equal(t, "existing", id)
		assert.Equal(t, "existing", GetCorrelationIDFromContext(ctx))
	})

	t.Run("uses candidate", func(t *testing.T) {
		ctx, id := EnsureCorrelationID(context.Background(), "req-123")
		assert.Equal(t, "req-123", id)
		assert.Equal(t, "req-123", GetCorrelationIDFromContext(ctx))
	})

	t.Run("generates uuid when empty", func(t *testing.T) {
		_, id := EnsureCorrelationID(context.Background(), "")
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	})
}

func TestGetLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(Config{Output: &buf})
	ctx := WithCorrelationIDContext(context.Background(), "abc")

	GetLoggerFromContext(ctx, base).Info("hello")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "abc", lines[0][CorrelationIDFieldKey])
}

func TestHTTPMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Output: &buf})

	var seen string
	handler := log.HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetCorrelationIDFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("tea"))
	}))

	existing := uuid.New().String()
	req := httptest.NewRequest(http.MethodPost, "/relay", nil)
	req.Header.Set(CorrelationIDHeader, existing)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, existing, seen)
	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "HTTP response sent", lines[1]["msg"])
	assert.Equal(t, "418", lines[1]["http_status"])
	assert.Equal(t, "3", lines[1]["response_bytes"])
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		in   string
		want Level
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{" Warn ", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"info", InfoLevel},
		{"verbose", InfoLevel},
		{"", InfoLevel},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseLevel(tc.in))
		})
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "warn", WarnLevel.String())
	assert.Equal(t, "info", Level(42).String())
}
