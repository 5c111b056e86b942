package narrative

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/glitchtale/engine/pkg/state"
)

// Outcome is the backend-declared result tag for one action. It drives
// transient visual feedback and is decoupled from stat changes.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailure Outcome = "FAILURE"
	OutcomeNeutral Outcome = "NEUTRAL"
)

// normalize maps arbitrary backend casing onto the closed enum,
// defaulting to NEUTRAL.
func (o Outcome) normalize() Outcome {
	switch Outcome(strings.ToUpper(string(o))) {
	case OutcomeSuccess:
		return OutcomeSuccess
	case OutcomeFailure:
		return OutcomeFailure
	default:
		return OutcomeNeutral
	}
}

// Choice is one selectable follow-up action offered to the player.
type Choice struct {
	Label  string            `json:"label"`
	Action string            `json:"action"`
	Type   string            `json:"type,omitempty"`
	Meta   map[string]string `json:"meta,omitempty"`
}

// StatDelta is a map of signed stat deltas. The backend occasionally
// emits fractional numbers; they are rounded rather than rejected so a
// sloppy reply does not cost the whole response.
type StatDelta map[string]int

func (d *StatDelta) UnmarshalJSON(data []byte) error {
	var raw map[string]json.Number
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(map[string]int, len(raw))
	for k, n := range raw {
		if i, err := n.Int64(); err == nil {
			out[k] = int(i)
			continue
		}
		f, err := n.Float64()
		if err != nil {
			return fmt.Errorf("stat %q is not a number: %w", k, err)
		}
		out[k] = int(math.Round(f))
	}
	*d = out
	return nil
}

// InventoryUpdates is the incremental inventory delta: items to merge
// in by name and item names to decrement by one.
type InventoryUpdates struct {
	Add    []state.Item `json:"add,omitempty"`
	Remove []string     `json:"remove,omitempty"`
}

// GridPos is a room position on a sector's local 8x8 sub-grid.
type GridPos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ResultData is the payload applied when an interactable resolves.
type ResultData struct {
	Narrative   string       `json:"narrative,omitempty"`
	Items       []state.Item `json:"items,omitempty"`
	StatUpdates StatDelta    `json:"stat_updates,omitempty"`
	RemoveAfter bool         `json:"remove_after,omitempty"`
}

// InteractableData is the wire shape of a room-local object.
type InteractableData struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Type     string      `json:"type,omitempty"`
	Requires string      `json:"requires,omitempty"`
	Result   *ResultData `json:"result,omitempty"`
}

// ExitConditionData gates one exit direction behind a required item.
type ExitConditionData struct {
	Direction string `json:"direction"`
	Requires  string `json:"requires"`
	Solved    bool   `json:"solved,omitempty"`
}

// RoomData is the wire shape of a generated room. The dungeon package
// validates and converts it into its own domain type before anything
// touches the registry.
type RoomData struct {
	ID            string             `json:"id"`
	Name          string             `json:"name,omitempty"`
	Description   string             `json:"description,omitempty"`
	Exits         map[string]string  `json:"exits,omitempty"`
	Interactables []InteractableData `json:"interactables,omitempty"`
	Coordinates   *GridPos           `json:"coordinates,omitempty"`
	ExitCondition *ExitConditionData `json:"exit_condition,omitempty"`
}

// MapData is one generated sector: 5-8 connected rooms sharing a
// single backend call.
type MapData struct {
	EntryRoomID string     `json:"entry_room_id,omitempty"`
	Rooms       []RoomData `json:"rooms"`
}

// Response is the validated, typed form of one backend reply. Every
// field except Narrative is optional on the wire.
type Response struct {
	Narrative        string            `json:"narrative"`
	Outcome          Outcome           `json:"outcome,omitempty"`
	StatsSet         state.Stats       `json:"stats_set,omitempty"`
	StatUpdates      StatDelta         `json:"stat_updates,omitempty"`
	InventorySet     []state.Item      `json:"inventory_set,omitempty"`
	InventoryUpdates *InventoryUpdates `json:"inventory_updates,omitempty"`
	QuestUpdate      string            `json:"quest_update,omitempty"`
	SummaryUpdate    string            `json:"summary_update,omitempty"`
	GameOver         bool              `json:"game_over,omitempty"`
	Choices          []Choice          `json:"choices,omitempty"`
	Interactables    []InteractableData `json:"interactables,omitempty"`
	RoomID           string            `json:"room_id,omitempty"`
	MapData          *MapData          `json:"map_data,omitempty"`
	EnvironmentTags  []string          `json:"environment_tags,omitempty"`
	VisualEffect     string            `json:"visual_effect,omitempty"`
	AllowCombo       bool              `json:"allow_combo,omitempty"`
}

// EnvironmentTag returns the effective ambient tag: the first one
// wins.
func (r *Response) EnvironmentTag() string {
	if len(r.EnvironmentTags) == 0 {
		return ""
	}
	return r.EnvironmentTags[0]
}
