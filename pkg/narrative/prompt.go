package narrative

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/glitchtale/engine/pkg/chat"
	"github.com/glitchtale/engine/pkg/state"
)

// HistoryPromptLimit bounds how many recent history messages ride
// along with each backend call. Older context is presumed folded into
// the rolling summary.
const HistoryPromptLimit = 12

const systemInstructions = `You are the narrator of an interactive fiction game. ` +
	`Respond to the player's action with a single JSON object and nothing else. ` +
	`Recognized fields: narrative (required), outcome (SUCCESS|FAILURE|NEUTRAL), ` +
	`stats_set, stat_updates, inventory_set, inventory_updates {add, remove}, ` +
	`quest_update, summary_update, game_over, choices [{label, action, type}], ` +
	`interactables, room_id, map_data, environment_tags, visual_effect. ` +
	`Stats are integers from 0 to 100. Use stat_updates with signed deltas for ` +
	`incremental change; reserve stats_set for full resets. Keep the narrative ` +
	`under 180 words.`

// promptState is the compact world snapshot embedded in the system
// prompt. It deliberately excludes history, which rides as messages.
type promptState struct {
	Genre          string          `json:"genre"`
	Stats          state.Stats     `json:"stats"`
	Inventory      state.Inventory `json:"inventory"`
	Quest          string          `json:"quest,omitempty"`
	Summary        string          `json:"summary,omitempty"`
	EnvironmentTag string          `json:"environment_tag,omitempty"`
}

// BuildActionPrompt assembles the message sequence for one player
// action: system instructions + state snapshot, recent history, then
// the action itself. The extra string carries mode-specific context
// (e.g. the current room) and may be empty.
func BuildActionPrompt(gs *state.GameState, action, extra string) []chat.PromptMessage {
	snapshot, _ := json.Marshal(promptState{
		Genre:          gs.Genre,
		Stats:          gs.Stats,
		Inventory:      gs.Inventory,
		Quest:          gs.Quest,
		Summary:        gs.Summary,
		EnvironmentTag: gs.EnvironmentTag,
	})

	var sys strings.Builder
	sys.WriteString(systemInstructions)
	sys.WriteString("\n\nCurrent game state:\n```json\n")
	sys.Write(snapshot)
	sys.WriteString("\n```")
	if extra != "" {
		sys.WriteString("\n\n")
		sys.WriteString(extra)
	}

	messages := []chat.PromptMessage{
		{Role: chat.PromptRoleSystem, Content: sys.String()},
	}

	history := gs.History
	if len(history) > HistoryPromptLimit {
		history = history[len(history)-HistoryPromptLimit:]
	}
	for _, msg := range history {
		if msg.Role == chat.RoleSystem {
			continue
		}
		messages = append(messages, msg.ToPrompt())
	}

	messages = append(messages, chat.PromptMessage{
		Role:    chat.PromptRoleUser,
		Content: action,
	})
	return messages
}

// BuildSectorPrompt assembles the request for one map sector: 5-8
// connected rooms entered from the given direction. The entry room id
// the backend proposes is remapped by the generator afterwards, so the
// prompt only needs internal consistency.
func BuildSectorPrompt(gs *state.GameState, fromRoom, direction string, sectorX, sectorY int) []chat.PromptMessage {
	sys := systemInstructions + "\n\n" + fmt.Sprintf(
		`Generate the next map sector for a %s game. The player is leaving `+
			`room %q heading %s into unexplored sector (%d,%d). Respond with `+
			`map_data containing 5 to 8 connected rooms. Give each room an id, `+
			`name, description, exits (direction to room id) and coordinates `+
			`{x,y} with x and y between 0 and 7. Set entry_room_id to the room `+
			`the player arrives in; its %s-opposite exit must lead back toward `+
			`%q. Include 2 or 3 interactables across the sector (types LOOT, `+
			`TERMINAL, EXAMINE or ENEMY) and at most one exit_condition locked `+
			`behind an item that can be found in this sector or an earlier one. `+
			`One room at the sector edge should have an exit pointing to a room `+
			`id that is not in this sector. The narrative field should describe `+
			`crossing into the new area.`,
		gs.Genre, fromRoom, direction, sectorX, sectorY, direction, fromRoom)

	return []chat.PromptMessage{
		{Role: chat.PromptRoleSystem, Content: sys},
		{Role: chat.PromptRoleUser, Content: fmt.Sprintf("Continue %s into the next sector.", direction)},
	}
}
