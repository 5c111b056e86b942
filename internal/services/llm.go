package services

import (
	"context"

	"github.com/glitchtale/engine/pkg/chat"
)

// LLMService defines the interface for interacting with a generative
// backend. Implementations return the raw reply text; parsing and
// validation happen in pkg/narrative.
type LLMService interface {
	// InitModel initializes the model on startup.
	InitModel(ctx context.Context, modelName string) error

	// GenerateResponse generates one reply for a prompt.
	GenerateResponse(ctx context.Context, messages []chat.PromptMessage) (string, error)
}
