package services

import (
	"context"
	"sync"

	"github.com/glitchtale/engine/pkg/chat"
)

// MockLLMService is a mock implementation of LLMService for testing
// and for running the stack without credentials.
type MockLLMService struct {
	InitModelFunc        func(ctx context.Context, modelName string) error
	GenerateResponseFunc func(ctx context.Context, messages []chat.PromptMessage) (string, error)

	// Track calls for testing
	InitModelCalls        []string
	GenerateResponseCalls [][]chat.PromptMessage

	mu sync.Mutex // protects all fields above
}

var _ LLMService = (*MockLLMService)(nil)

func NewMockLLMService() *MockLLMService {
	return &MockLLMService{}
}

func (m *MockLLMService) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelCalls = append(m.InitModelCalls, modelName)
	if m.InitModelFunc != nil {
		return m.InitModelFunc(ctx, modelName)
	}
	return nil
}

func (m *MockLLMService) GenerateResponse(ctx context.Context, messages []chat.PromptMessage) (string, error) {
	m.mu.Lock()
	m.GenerateResponseCalls = append(m.GenerateResponseCalls, messages)
	fn := m.GenerateResponseFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, messages)
	}
	// Default: an inert but valid narrative reply.
	return `{"narrative": "The scene holds still, waiting.", "outcome": "NEUTRAL"}`, nil
}

// CallCount returns how many replies were requested.
func (m *MockLLMService) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.GenerateResponseCalls)
}
