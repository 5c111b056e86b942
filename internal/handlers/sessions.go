package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/glitchtale/engine/internal/services"
	"github.com/glitchtale/engine/pkg/engine"
	"github.com/glitchtale/engine/pkg/narrative"
	"github.com/glitchtale/engine/pkg/state"
)

const autosaveTimeout = 5 * time.Second

// Session is one live narrative session.
type Session struct {
	ID     uuid.UUID
	Engine *engine.Engine
}

// Manager owns the live sessions: creation, lookup with a storage
// fallback, and the autosave wiring that writes a save document after
// every state change.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	llm      services.LLMService
	storage  services.Storage
	logger   *slog.Logger
}

func NewManager(llm services.LLMService, storage services.Storage, logger *slog.Logger) *Manager {
	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
		llm:      llm,
		storage:  storage,
		logger:   logger,
	}
}

// Create starts a session in the given genre, running the opening
// locally. The optional character blob is the init sentinel's JSON
// payload.
func (m *Manager) Create(ctx context.Context, genre, character string) (*Session, error) {
	store := state.NewStore(genre)
	eng := engine.New(store, m.llm, m.logger)

	sentinel := narrative.InitPrefix + genre
	if character != "" {
		sentinel += ":" + character
	}
	if err := eng.Submit(ctx, sentinel); err != nil {
		return nil, fmt.Errorf("initialize session: %w", err)
	}

	session := &Session{
		ID:     store.Snapshot().ID,
		Engine: eng,
	}
	m.wireAutosave(session)

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	m.logger.Info("Session created", "session_id", session.ID, "genre", genre)
	return session, nil
}

// Get returns a live session, falling back to the autosave blob for
// sessions that dropped out of memory.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	session, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return session, nil
	}

	doc, err := m.storage.LoadSession(ctx, id.String())
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	raw, err := doc.Encode()
	if err != nil {
		return nil, err
	}
	store := state.NewStore(doc.Genre)
	eng := engine.New(store, m.llm, m.logger)
	if err := eng.ImportSave(raw); err != nil {
		return nil, fmt.Errorf("restore session %s: %w", id, err)
	}

	session = &Session{ID: id, Engine: eng}
	m.wireAutosave(session)

	m.mu.Lock()
	m.sessions[id] = session
	m.mu.Unlock()

	m.logger.Info("Session restored from storage", "session_id", id)
	return session, nil
}

// Delete drops a session from memory and storage.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return m.storage.DeleteSession(ctx, id.String())
}

// wireAutosave subscribes the session's store so every mutation writes
// the autosave blob.
func (m *Manager) wireAutosave(session *Session) {
	session.Engine.Store().Subscribe(func() {
		go m.autosave(session)
	})
}

func (m *Manager) autosave(session *Session) {
	ctx, cancel := context.WithTimeout(context.Background(), autosaveTimeout)
	defer cancel()

	doc := session.Engine.ExportSave()
	if err := m.storage.SaveSession(ctx, session.ID.String(), doc); err != nil {
		m.logger.Error("Autosave failed", "session_id", session.ID, "error", err)
	}
}
