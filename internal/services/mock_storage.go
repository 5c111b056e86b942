package services

import (
	"context"
	"sync"

	"github.com/glitchtale/engine/pkg/save"
)

// MockStorage is an in-memory Storage implementation for testing.
type MockStorage struct {
	mu       sync.Mutex
	sessions map[string]*save.Document

	PingErr error
	SaveErr error
}

var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions: make(map[string]*save.Document),
	}
}

func (m *MockStorage) Ping(ctx context.Context) error { return m.PingErr }
func (m *MockStorage) Close() error                   { return nil }

func (m *MockStorage) SaveSession(ctx context.Context, id string, doc *save.Document) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = doc
	return nil
}

func (m *MockStorage) LoadSession(ctx context.Context, id string) (*save.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id], nil
}

func (m *MockStorage) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// SessionCount reports how many sessions are stored.
func (m *MockStorage) SessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
