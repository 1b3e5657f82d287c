package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/einfachManu/marine-snow-tutor/internal/conform"
	"github.com/einfachManu/marine-snow-tutor/internal/generator"
	"github.com/einfachManu/marine-snow-tutor/internal/intent"
	"github.com/einfachManu/marine-snow-tutor/internal/knowledge"
	"github.com/einfachManu/marine-snow-tutor/internal/models"
	"github.com/einfachManu/marine-snow-tutor/internal/oracle"
	"github.com/einfachManu/marine-snow-tutor/internal/pipeline"
	"github.com/einfachManu/marine-snow-tutor/internal/selector"
	"github.com/einfachManu/marine-snow-tutor/internal/session"
	"github.com/einfachManu/marine-snow-tutor/internal/spell"
	"github.com/einfachManu/marine-snow-tutor/internal/style"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestServer builds a Server over a pipeline whose classifier always
// answers with the given intent label.
func newTestServer(t *testing.T, intentLabel, authToken string) (*Server, *session.Registry) {
	t.Helper()
	kb := knowledge.Default()
	logger := testLogger()

	eng := pipeline.New(pipeline.Params{
		KB:        kb,
		Generator: &generator.Scripted{Responses: []string{strings.Repeat("Meeresschnee besteht aus Aggregaten. ", 25)}},
		Spell:     spell.New(&generator.Scripted{Err: errors.New("offline")}, logger),
		Intents:   intent.NewLLMClassifier(&generator.Scripted{Responses: []string{intentLabel}}, logger),
		Topics:    intent.NewTopicClassifier(logger),
		Selector:  selector.New(kb),
		Conformer: conform.New(&generator.Scripted{}, 1, 10000, 5, logger),
		Styler:    style.New(&generator.Scripted{Err: errors.New("offline")}, kb, logger),
		Oracle:    oracle.New(kb, 800, 1000),
		Logger:    logger,
	})

	reg := session.NewRegistry()
	return NewServer(reg, eng, kb, logger, authToken, models.LevelNeutral), reg
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, "core_topic", "")
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateSessionPerLevel(t *testing.T) {
	srv, _ := newTestServer(t, "core_topic", "")
	kb := knowledge.Default()

	for _, level := range []int{0, 1, 2} {
		rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/sessions", map[string]int{"level": level}, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp createSessionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.SessionID)
		assert.Equal(t, level, resp.Level)
		assert.Equal(t, kb.Greeting(models.StyleLevel(level)), resp.Greeting)
		assert.Equal(t, kb.Avatar(models.StyleLevel(level)), resp.Avatar)
		assert.Equal(t, kb.SpinnerText(models.StyleLevel(level)), resp.SpinnerText)
	}
}

func TestCreateSessionRejectsBadLevel(t *testing.T) {
	srv, _ := newTestServer(t, "core_topic", "")
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/sessions", map[string]int{"level": 7}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatRoundTrip(t *testing.T) {
	srv, reg := newTestServer(t, "core_topic", "")
	sess := reg.Create(models.LevelNeutral)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/chat",
		map[string]string{"session_id": sess.ID, "message": "Wie entsteht Meeresschnee?"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Reply)
	assert.Equal(t, models.IntentCoreTopic, resp.Intent)
	assert.Equal(t, models.TopicFormation, resp.Topic)
}

func TestChatUnknownSession(t *testing.T) {
	srv, _ := newTestServer(t, "core_topic", "")
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/chat",
		map[string]string{"session_id": "missing", "message": "Hallo"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatValidation(t *testing.T) {
	srv, reg := newTestServer(t, "core_topic", "")
	sess := reg.Create(models.LevelNeutral)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/chat", map[string]string{"message": "Hallo"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "missing session_id")

	rec = doJSON(t, srv.Handler(), http.MethodPost, "/v1/chat", map[string]string{"session_id": sess.ID, "message": "  "}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "blank message")
}

func TestTopicsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, "core_topic", "")
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/v1/topics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp topicsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Topics, 6)
}

func TestDeleteSession(t *testing.T) {
	srv, reg := newTestServer(t, "core_topic", "")
	sess := reg.Create(models.LevelNeutral)

	rec := doJSON(t, srv.Handler(), http.MethodDelete, "/v1/sessions/"+sess.ID, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, reg.Len())

	rec = doJSON(t, srv.Handler(), http.MethodDelete, "/v1/sessions/"+sess.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t, "core_topic", "secret-token")
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodGet, "/v1/topics", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "missing token")

	rec = doJSON(t, h, http.MethodGet, "/v1/topics", nil, "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "wrong token")

	rec = doJSON(t, h, http.MethodGet, "/v1/topics", nil, "secret-token")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code, "healthz bypasses auth")
}
