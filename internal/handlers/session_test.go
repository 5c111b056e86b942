package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glitchtale/engine/internal/services"
	"github.com/glitchtale/engine/pkg/chat"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func newTestHandler() (*SessionHandler, *services.MockLLMService, *services.MockStorage) {
	llm := services.NewMockLLMService()
	storage := services.NewMockStorage()
	manager := NewManager(llm, storage, testLogger())
	return NewSessionHandler(manager, testLogger()), llm, storage
}

func createSession(t *testing.T, h *SessionHandler, body string) SessionView {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	var view SessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	return view
}

func TestCreateSession(t *testing.T) {
	h, llm, _ := newTestHandler()
	view := createSession(t, h, `{"genre":"fantasy"}`)

	assert.Equal(t, "fantasy", view.Genre)
	assert.NotEmpty(t, view.Stats)
	require.Len(t, view.History, 1)
	assert.Equal(t, chat.RoleAI, view.History[0].Role)
	assert.NotEmpty(t, view.Choices)
	// The opening comes from the canned table, never the model.
	assert.Equal(t, 0, llm.CallCount())
}

func TestCreateSessionRPGGenre(t *testing.T) {
	h, _, _ := newTestHandler()
	view := createSession(t, h, `{"genre":"station"}`)

	require.NotNil(t, view.Room)
	assert.NotEmpty(t, view.Room.ID)
	assert.NotEmpty(t, view.Room.Exits)
}

func TestCreateSessionValidation(t *testing.T) {
	h, _, _ := newTestHandler()

	cases := []struct {
		name string
		body string
	}{
		{"missing genre", `{}`},
		{"unknown genre", `{"genre":"telenovela"}`},
		{"bad json", `{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewBufferString(tc.body))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestGetSession(t *testing.T) {
	h, _, _ := newTestHandler()
	created := createSession(t, h, `{"genre":"fantasy"}`)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+created.ID.String(), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var view SessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, created.ID, view.ID)
}

func TestGetUnknownSession(t *testing.T) {
	h, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/1b671a64-40d5-491e-99b0-da01ff1f3341", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/sessions/not-a-uuid", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitAction(t *testing.T) {
	h, llm, _ := newTestHandler()
	llm.GenerateResponseFunc = func(_ context.Context, _ []chat.PromptMessage) (string, error) {
		return `{"narrative":"The gate creaks open.","outcome":"SUCCESS","stat_updates":{"health":-2}}`, nil
	}
	created := createSession(t, h, `{"genre":"fantasy"}`)
	before := created.Stats["health"]

	body := bytes.NewBufferString(`{"action":"push the gate"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+created.ID.String()+"/action", body)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var view SessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, before-2, view.Stats["health"])
	last := view.History[len(view.History)-1]
	assert.Equal(t, chat.RoleAI, last.Role)
	assert.Equal(t, "The gate creaks open.", last.Content)
}

func TestSubmitBlankAction(t *testing.T) {
	h, _, _ := newTestHandler()
	created := createSession(t, h, `{"genre":"fantasy"}`)

	body := bytes.NewBufferString(`{"action":"  "}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+created.ID.String()+"/action", body)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveExportImport(t *testing.T) {
	h, _, _ := newTestHandler()
	created := createSession(t, h, `{"genre":"station"}`)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+created.ID.String()+"/save", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	exported := w.Body.Bytes()

	req = httptest.NewRequest(http.MethodPost, "/v1/sessions/"+created.ID.String()+"/save", bytes.NewBuffer(exported))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var view SessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.NotNil(t, view.Room)
	last := view.History[len(view.History)-1]
	assert.Equal(t, chat.RoleSystem, last.Role)
	assert.Equal(t, "/summary", last.Action)
}

func TestSaveImportRejectsInvalid(t *testing.T) {
	h, _, _ := newTestHandler()
	created := createSession(t, h, `{"genre":"fantasy"}`)

	body := bytes.NewBufferString(`{"genre":"fantasy","stats":{"health":50}}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+created.ID.String()+"/save", body)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDeleteSession(t *testing.T) {
	h, _, storage := newTestHandler()
	created := createSession(t, h, `{"genre":"fantasy"}`)
	waitForSessions(t, storage, 1)

	req := httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+created.ID.String(), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/sessions/"+created.ID.String(), nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAutosaveWrittenOnMutation(t *testing.T) {
	h, _, storage := newTestHandler()
	created := createSession(t, h, `{"genre":"fantasy"}`)

	waitForSessions(t, storage, 1)
	doc, err := storage.LoadSession(context.Background(), created.ID.String())
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "fantasy", doc.Genre)
}

func TestSessionRestoredFromStorage(t *testing.T) {
	h, llm, storage := newTestHandler()
	created := createSession(t, h, `{"genre":"station"}`)
	waitForSessions(t, storage, 1)

	// A new manager with the same storage, as after a restart.
	manager := NewManager(llm, storage, testLogger())
	fresh := NewSessionHandler(manager, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+created.ID.String(), nil)
	w := httptest.NewRecorder()
	fresh.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var view SessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "station", view.Genre)
	require.NotNil(t, view.Room)
}

func waitForSessions(t *testing.T, storage *services.MockStorage, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if storage.SessionCount() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("storage never reached %d sessions", want)
}
