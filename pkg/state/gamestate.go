package state

import (
	"time"

	"github.com/google/uuid"

	"github.com/glitchtale/engine/pkg/chat"
)

// GameState is the canonical snapshot of one narrative session.
type GameState struct {
	ID             uuid.UUID      `json:"id"`
	Genre          string         `json:"genre,omitempty"`
	Stats          Stats          `json:"stats"`
	Inventory      Inventory      `json:"inventory"`
	Quest          string         `json:"quest,omitempty"`
	Summary        string         `json:"summary,omitempty"`
	EnvironmentTag string         `json:"environment_tag,omitempty"`
	GameOver       bool           `json:"game_over"`
	History        []chat.Message `json:"history,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// NewGameState creates an empty session for the given genre.
func NewGameState(genre string) *GameState {
	now := time.Now()
	return &GameState{
		ID:        uuid.New(),
		Genre:     genre,
		Stats:     make(Stats),
		Inventory: make(Inventory, 0),
		History:   make([]chat.Message, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy safe to hand across goroutines.
func (gs *GameState) Clone() *GameState {
	out := *gs
	out.Stats = gs.Stats.Clone()
	out.Inventory = gs.Inventory.Clone()
	out.History = append([]chat.Message(nil), gs.History...)
	return &out
}
