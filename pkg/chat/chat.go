package chat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser   = "user"   // the player
	RoleAI     = "ai"     // the narrator (generative backend)
	RoleSystem = "system" // engine notices: errors, restore messages, blocked actions
)

// Message is a single entry in the session history. History is
// append-only during play; it is truncated only at save-export time.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Action and ActionLabel turn a system message into a tappable
	// shortcut (e.g. "view summary" after a restore).
	Action      string `json:"action,omitempty"`
	ActionLabel string `json:"action_label,omitempty"`

	// VisualEffect is an opaque descriptor forwarded to the
	// presentation layer. The engine never interprets it.
	VisualEffect string `json:"visual_effect,omitempty"`
}

// NewMessage creates a history message with a fresh ID and timestamp.
func NewMessage(role, content string) Message {
	return Message{
		ID:        uuid.New(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// Validate checks that a message is well-formed for appending.
func (m Message) Validate() error {
	switch m.Role {
	case RoleUser, RoleAI, RoleSystem:
	default:
		return fmt.Errorf("invalid message role: %q", m.Role)
	}
	if m.Content == "" {
		return fmt.Errorf("message content cannot be empty")
	}
	return nil
}

const (
	PromptRoleUser      = "user"
	PromptRoleAssistant = "assistant"
	PromptRoleSystem    = "system"
)

// PromptMessage is the wire-level message shape sent to the generative
// backend. Chat-completion APIs share this structure.
type PromptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToPrompt converts a history message to the backend wire format.
// The "ai" role maps to "assistant".
func (m Message) ToPrompt() PromptMessage {
	role := m.Role
	if role == RoleAI {
		role = PromptRoleAssistant
	}
	return PromptMessage{Role: role, Content: m.Content}
}
