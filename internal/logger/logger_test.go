package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewHandler_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, "info", "json", false))
	log.Debug("hidden")
	log.Info("shown", "component", "test")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "test", entry["component"])
}

func TestNewHandler_TextWithoutColor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, "debug", "text", false))
	log.Debug("hello", "chat_id", 555)

	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "chat_id=555")
	assert.NotContains(t, out, "\x1b[")
}

func TestMiddleware_CallsNext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	called := false
	h := Middleware(log)(func(context.Context, *bot.Bot, *models.Update) { called = true })
	h(context.Background(), nil, &models.Update{
		ID: 7,
		Message: &models.Message{
			ID:    1,
			Chat:  models.Chat{ID: 555, Type: models.ChatTypeGroup},
			Photo: []models.PhotoSize{{FileID: "a"}},
		},
	})

	assert.True(t, called)
	assert.Contains(t, buf.String(), `"chat_id":555`)
	assert.Contains(t, buf.String(), `"photo_sizes":1`)
}

func TestHTTPMiddleware(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	h := middleware.RequestID(HTTPMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/groups", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "/api/groups", entry["path"])
	assert.EqualValues(t, http.StatusTeapot, entry["status"])
	assert.NotEmpty(t, entry["request_id"])
}

func TestGocronLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	NewGocronLogger(log).Info("job scheduled", "name", "sql_maintenance", "dangling")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "gocron", entry["component"])
	assert.Equal(t, "sql_maintenance", entry["name"])
	assert.Equal(t, "dangling", entry["extra"])
}
