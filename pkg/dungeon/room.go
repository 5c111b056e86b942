package dungeon

import (
	"fmt"
	"strings"

	"github.com/glitchtale/engine/pkg/narrative"
	"github.com/glitchtale/engine/pkg/state"
)

// Coord is an integer grid position. It addresses sectors on the
// global sector grid, rooms on a sector's local 8x8 sub-grid, and
// render positions in pixels.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

const (
	// SectorGridSize is the side length of a sector's local room grid.
	SectorGridSize = 8

	// NodeSpacing is the render distance between adjacent room nodes.
	// A sector therefore spans SectorGridSize*NodeSpacing render units.
	NodeSpacing = 96

	// MinSectorRooms and MaxSectorRooms bound one generation request.
	MinSectorRooms = 5
	MaxSectorRooms = 8
)

// Interactable types with engine-level meaning. Other type strings
// pass through untouched.
const (
	InteractableLoot     = "LOOT"
	InteractableTerminal = "TERMINAL"
	InteractableExamine  = "EXAMINE"
	InteractableEnemy    = "ENEMY"
)

// Result is the payload applied when an interactable resolves.
type Result struct {
	Narrative   string         `json:"narrative,omitempty"`
	Items       []state.Item   `json:"items,omitempty"`
	StatUpdates map[string]int `json:"stat_updates,omitempty"`
	RemoveAfter bool           `json:"remove_after,omitempty"`
}

// Interactable is a room-local object offering one resolvable action.
type Interactable struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Requires string `json:"requires,omitempty"`
	Result   Result `json:"result"`
}

// ExitCondition gates one exit direction behind a required item,
// matched by case-insensitive substring against inventory item names.
// Once solved it stays solved.
type ExitCondition struct {
	Direction string `json:"direction"`
	Requires  string `json:"requires"`
	Solved    bool   `json:"solved"`
}

// Room is one explorable node. Exits map lowercase directions to
// target room ids; a target that is not (yet) in the registry marks a
// sector boundary.
type Room struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	Exits         map[string]string `json:"exits,omitempty"`
	Interactables []Interactable    `json:"interactables,omitempty"`
	Coordinates   Coord             `json:"coordinates"`
	Position      Coord             `json:"position"`
	Sector        Coord             `json:"sector"`
	ExitCondition *ExitCondition    `json:"exit_condition,omitempty"`
}

// LockedDirection reports whether moving in the given direction is
// currently gated, returning the required item fragment.
func (r *Room) LockedDirection(direction string) (string, bool) {
	if r.ExitCondition == nil || r.ExitCondition.Solved {
		return "", false
	}
	if !strings.EqualFold(r.ExitCondition.Direction, direction) {
		return "", false
	}
	return r.ExitCondition.Requires, true
}

// Clone returns a deep copy. Rooms handed out of the registry must be
// copies, because interact and unlock mutate the originals in place
// under the registry lock.
func (r *Room) Clone() *Room {
	out := *r
	if r.Exits != nil {
		out.Exits = make(map[string]string, len(r.Exits))
		for dir, target := range r.Exits {
			out.Exits[dir] = target
		}
	}
	if r.Interactables != nil {
		out.Interactables = make([]Interactable, len(r.Interactables))
		for i := range r.Interactables {
			out.Interactables[i] = r.Interactables[i].clone()
		}
	}
	if r.ExitCondition != nil {
		cond := *r.ExitCondition
		out.ExitCondition = &cond
	}
	return &out
}

func (obj Interactable) clone() Interactable {
	out := obj
	if obj.Result.Items != nil {
		out.Result.Items = []state.Item(state.Inventory(obj.Result.Items).Clone())
	}
	if obj.Result.StatUpdates != nil {
		out.Result.StatUpdates = make(map[string]int, len(obj.Result.StatUpdates))
		for k, v := range obj.Result.StatUpdates {
			out.Result.StatUpdates[k] = v
		}
	}
	return out
}

// findInteractable returns the index of the interactable with the
// given id, or -1.
func (r *Room) findInteractable(id string) int {
	for i := range r.Interactables {
		if r.Interactables[i].ID == id {
			return i
		}
	}
	return -1
}

// delta maps a direction to its sector-grid offset. Screen-style
// coordinates: y grows southward.
func delta(direction string) (Coord, bool) {
	switch strings.ToLower(direction) {
	case "north":
		return Coord{0, -1}, true
	case "south":
		return Coord{0, 1}, true
	case "east":
		return Coord{1, 0}, true
	case "west":
		return Coord{-1, 0}, true
	}
	return Coord{}, false
}

// convertRoom validates one wire room and builds the domain type.
func convertRoom(data narrative.RoomData, sector Coord) (*Room, error) {
	id := strings.TrimSpace(data.ID)
	if id == "" {
		return nil, fmt.Errorf("room missing id")
	}

	room := &Room{
		ID:          id,
		Name:        data.Name,
		Description: data.Description,
		Sector:      sector,
		Exits:       make(map[string]string, len(data.Exits)),
	}
	if room.Name == "" {
		room.Name = id
	}
	for dir, target := range data.Exits {
		dir = strings.ToLower(strings.TrimSpace(dir))
		target = strings.TrimSpace(target)
		if dir == "" || target == "" {
			continue
		}
		room.Exits[dir] = target
	}
	if data.Coordinates != nil {
		room.Coordinates = clampToGrid(Coord{data.Coordinates.X, data.Coordinates.Y})
	}
	if data.ExitCondition != nil && data.ExitCondition.Requires != "" {
		room.ExitCondition = &ExitCondition{
			Direction: strings.ToLower(data.ExitCondition.Direction),
			Requires:  data.ExitCondition.Requires,
			Solved:    data.ExitCondition.Solved,
		}
	}
	for _, i := range data.Interactables {
		if strings.TrimSpace(i.ID) == "" || strings.TrimSpace(i.Name) == "" {
			continue
		}
		conv := Interactable{
			ID:       i.ID,
			Name:     i.Name,
			Type:     strings.ToUpper(i.Type),
			Requires: i.Requires,
		}
		if i.Result != nil {
			conv.Result = Result{
				Narrative:   i.Result.Narrative,
				Items:       i.Result.Items,
				StatUpdates: i.Result.StatUpdates,
				RemoveAfter: i.Result.RemoveAfter,
			}
		}
		room.Interactables = append(room.Interactables, conv)
	}
	return room, nil
}

func clampToGrid(c Coord) Coord {
	clamp := func(v int) int {
		if v < 0 {
			return 0
		}
		if v >= SectorGridSize {
			return SectorGridSize - 1
		}
		return v
	}
	return Coord{clamp(c.X), clamp(c.Y)}
}

// ApplyGridCoordinates maps each room's local sub-grid coordinates to
// global render coordinates: the sector origin shifts the whole block
// by SectorGridSize nodes per sector step.
func ApplyGridCoordinates(sectorOrigin Coord, rooms []*Room) {
	offsetX := sectorOrigin.X * SectorGridSize * NodeSpacing
	offsetY := sectorOrigin.Y * SectorGridSize * NodeSpacing
	for _, r := range rooms {
		r.Position = Coord{
			X: offsetX + r.Coordinates.X*NodeSpacing,
			Y: offsetY + r.Coordinates.Y*NodeSpacing,
		}
	}
}
