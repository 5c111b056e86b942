package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/glitchtale/engine/pkg/chat"
	"github.com/glitchtale/engine/pkg/engine"
	"github.com/glitchtale/engine/pkg/narrative"
	"github.com/glitchtale/engine/pkg/state"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type CreateSessionRequest struct {
	Genre     string          `json:"genre"`
	Character json.RawMessage `json:"character,omitempty"`
}

type ActionRequest struct {
	Action string `json:"action"`
}

// SessionView is the wire shape of one session returned by the API.
type SessionView struct {
	ID        uuid.UUID          `json:"id"`
	Genre     string             `json:"genre"`
	Stats     state.Stats        `json:"stats"`
	Inventory state.Inventory    `json:"inventory"`
	Quest     string             `json:"quest,omitempty"`
	Summary   string             `json:"summary,omitempty"`
	GameOver  bool               `json:"game_over"`
	History   []chat.Message     `json:"history"`
	Choices   []narrative.Choice `json:"choices"`
	Room      *RoomView          `json:"room,omitempty"`
}

// RoomView is the current dungeon position, RPG sessions only.
type RoomView struct {
	ID    string            `json:"id"`
	Name  string            `json:"name"`
	Exits map[string]string `json:"exits,omitempty"`
}

// SessionHandler serves the session API.
//
// Routes:
// POST   /v1/sessions              - Create a session
// GET    /v1/sessions/{id}         - Read a session
// DELETE /v1/sessions/{id}         - Delete a session
// POST   /v1/sessions/{id}/action  - Submit a player action
// GET    /v1/sessions/{id}/save    - Export a save document
// POST   /v1/sessions/{id}/save    - Import a save document
type SessionHandler struct {
	manager *Manager
	logger  *slog.Logger
}

func NewSessionHandler(manager *Manager, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{manager: manager, logger: logger}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")
	if path == "" {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.create(w, r)
		return
	}

	parts := strings.SplitN(path, "/", 2)
	id, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		writeError(w, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	sub := ""
	if len(parts) == 2 {
		sub = parts[1]
	}

	session, err := h.manager.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load session", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load session")
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	switch sub {
	case "":
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, h.logger, http.StatusOK, h.view(session))
		case http.MethodDelete:
			if err := h.manager.Delete(r.Context(), id); err != nil {
				h.logger.Error("Failed to delete session", "session_id", id, "error", err)
				writeError(w, http.StatusInternalServerError, "Failed to delete session")
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	case "action":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.action(w, r, session)
	case "save":
		switch r.Method {
		case http.MethodGet:
			h.exportSave(w, session)
		case http.MethodPost:
			h.importSave(w, r, session)
		default:
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	default:
		writeError(w, http.StatusNotFound, "Unknown resource")
	}
}

func (h *SessionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Genre) == "" {
		writeError(w, http.StatusBadRequest, "Genre is required")
		return
	}

	session, err := h.manager.Create(r.Context(), strings.ToLower(req.Genre), string(req.Character))
	if err != nil {
		h.logger.Warn("Session creation failed", "genre", req.Genre, "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, h.view(session))
}

func (h *SessionHandler) action(w http.ResponseWriter, r *http.Request, session *Session) {
	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := session.Engine.Submit(r.Context(), req.Action); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, engine.ErrBusy) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, h.logger, http.StatusOK, h.view(session))
}

func (h *SessionHandler) exportSave(w http.ResponseWriter, session *Session) {
	raw, err := session.Engine.ExportSave().Encode()
	if err != nil {
		h.logger.Error("Save export failed", "session_id", session.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to export save")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (h *SessionHandler) importSave(w http.ResponseWriter, r *http.Request, session *Session) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	if err := session.Engine.ImportSave(raw); err != nil {
		h.logger.Warn("Save import rejected", "session_id", session.ID, "error", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, h.logger, http.StatusOK, h.view(session))
}

func (h *SessionHandler) view(session *Session) SessionView {
	gs := session.Engine.Store().Snapshot()
	view := SessionView{
		ID:        session.ID,
		Genre:     gs.Genre,
		Stats:     gs.Stats,
		Inventory: gs.Inventory,
		Quest:     gs.Quest,
		Summary:   gs.Summary,
		GameOver:  gs.GameOver,
		History:   gs.History,
		Choices:   session.Engine.Choices(),
	}
	if d := session.Engine.Dungeon(); d != nil {
		if room := d.Current(); room != nil {
			view.Room = &RoomView{ID: room.ID, Name: room.Name, Exits: room.Exits}
		}
	}
	return view
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding response", "error", err)
	}
}
