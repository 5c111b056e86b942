// Package save defines the versioned save document and its
// export/import round-trip. Import is all-or-nothing: a document that
// fails validation changes no state at all.
package save

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/glitchtale/engine/pkg/actor"
	"github.com/glitchtale/engine/pkg/chat"
	"github.com/glitchtale/engine/pkg/dungeon"
	"github.com/glitchtale/engine/pkg/state"
)

// Version is written into every exported document. It is checked on
// import and drives the migration step for older layouts.
const Version = "1.0"

// HistoryExportLimit caps how many trailing messages an export keeps.
// Older messages are presumed folded into the summary.
const HistoryExportLimit = 40

// Document is the transportable snapshot of one session.
type Document struct {
	Version        string               `json:"version"`
	Timestamp      time.Time            `json:"timestamp"`
	Genre          string               `json:"genre"`
	Stats          state.Stats          `json:"stats"`
	Inventory      state.Inventory      `json:"inventory"`
	Quest          string               `json:"quest,omitempty"`
	Summary        string               `json:"summary,omitempty"`
	EnvironmentTag string               `json:"environment_tag,omitempty"`
	GameOver       bool                 `json:"game_over"`
	History        []chat.Message       `json:"history"`
	Character      *actor.CharacterSpec `json:"character,omitempty"`
	RPGState       *dungeon.Snapshot    `json:"rpg_state,omitempty"`
}

// Export builds a document from a state snapshot. Pure: the snapshot
// is not modified, history is truncated only in the copy.
func Export(gs *state.GameState, rpg *dungeon.Snapshot, character *actor.CharacterSpec) *Document {
	history := gs.History
	if len(history) > HistoryExportLimit {
		history = history[len(history)-HistoryExportLimit:]
	}
	out := make([]chat.Message, len(history))
	copy(out, history)

	return &Document{
		Version:        Version,
		Timestamp:      time.Now().UTC(),
		Genre:          gs.Genre,
		Stats:          gs.Stats.Clone(),
		Inventory:      gs.Inventory.Clone(),
		Quest:          gs.Quest,
		Summary:        gs.Summary,
		EnvironmentTag: gs.EnvironmentTag,
		GameOver:       gs.GameOver,
		History:        out,
		Character:      character.Clone(),
		RPGState:       rpg,
	}
}

// Encode serializes a document for file transport.
func (d *Document) Encode() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Decode parses, migrates and validates a document. Any failure means
// the document must not be applied.
func Decode(raw []byte) (*Document, error) {
	// Presence of stats and inventory is the minimum bar; an empty map
	// or list passes, a missing key does not.
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("save document is not valid JSON: %w", err)
	}
	if _, ok := probe["stats"]; !ok {
		return nil, fmt.Errorf("save document missing stats")
	}
	if _, ok := probe["inventory"]; !ok {
		return nil, fmt.Errorf("save document missing inventory")
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("save document malformed: %w", err)
	}
	if err := migrate(&doc); err != nil {
		return nil, err
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// migrate lifts older document layouts to the current one. Versioning
// used to be display-only; now unknown majors are refused outright
// instead of patched ad hoc.
func migrate(doc *Document) error {
	switch {
	case doc.Version == "" || strings.HasPrefix(doc.Version, "0."):
		// Pre-versioned saves carried no environment tag or RPG state
		// and sometimes unclamped stats.
		doc.Stats = doc.Stats.Clamped()
		doc.Inventory = doc.Inventory.Normalize()
		doc.Version = Version
	case strings.HasPrefix(doc.Version, "1."), doc.Version == "1":
		doc.Version = Version
	default:
		return fmt.Errorf("unsupported save version %q", doc.Version)
	}
	return nil
}

func (d *Document) validate() error {
	if d.Genre == "" {
		return fmt.Errorf("save document missing genre")
	}
	for _, item := range d.Inventory {
		if item.Name == "" || item.Count < 1 {
			return fmt.Errorf("save document has invalid inventory record %+v", item)
		}
	}
	for name, v := range d.Stats {
		if v < state.StatMin || v > state.StatMax {
			return fmt.Errorf("save document stat %q out of range: %d", name, v)
		}
	}
	if d.Character != nil && strings.TrimSpace(d.Character.Name) == "" {
		return fmt.Errorf("save document character missing name")
	}
	if d.RPGState != nil {
		if len(d.RPGState.Rooms) == 0 || d.RPGState.CurrentRoomID == "" {
			return fmt.Errorf("save document has empty rpg state")
		}
	}
	return nil
}

// GameState materializes the document into a fresh game state,
// suitable for an atomic store restore.
func (d *Document) GameState() *state.GameState {
	gs := state.NewGameState(d.Genre)
	gs.Stats = d.Stats.Clone()
	gs.Inventory = d.Inventory.Clone()
	gs.Quest = d.Quest
	gs.Summary = d.Summary
	gs.EnvironmentTag = d.EnvironmentTag
	gs.GameOver = d.GameOver
	gs.History = make([]chat.Message, len(d.History))
	copy(gs.History, d.History)
	if !d.Timestamp.IsZero() {
		gs.CreatedAt = d.Timestamp
	}
	return gs
}

// RestoreMessage is the system message appended after a successful
// import, carrying the view-summary shortcut.
func RestoreMessage() chat.Message {
	msg := chat.NewMessage(chat.RoleSystem, "Game restored from a previous session.")
	msg.Action = "/summary"
	msg.ActionLabel = "View summary"
	return msg
}
