package narrative

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/glitchtale/engine/pkg/state"
)

// InitPrefix marks a reserved initialization action: "begin a new game
// in genre X". Initialization is answered from the local opening table
// and never reaches the generative backend, so startup is fast,
// token-free and reproducible.
const InitPrefix = "__INIT__:"

// IsInit reports whether an action string is the reserved
// initialization sentinel.
func IsInit(action string) bool {
	return strings.HasPrefix(strings.TrimSpace(action), InitPrefix)
}

// ParseInit splits an init sentinel into its genre key and the
// optional character JSON blob: "__INIT__:<genre>[:<character json>]".
func ParseInit(action string) (genre, character string, ok bool) {
	trimmed := strings.TrimSpace(action)
	if !strings.HasPrefix(trimmed, InitPrefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(trimmed, InitPrefix)
	genre, character, _ = strings.Cut(rest, ":")
	genre = strings.ToLower(strings.TrimSpace(genre))
	if genre == "" {
		return "", "", false
	}
	return genre, strings.TrimSpace(character), true
}

//go:embed openings.yaml
var openingsYAML []byte

// The YAML-side shapes are kept separate from the wire types so the
// embedded table can use readable keys and still pass through the same
// validation as backend data.
type openingDoc struct {
	Genres map[string]openingEntry `yaml:"genres"`
}

type openingEntry struct {
	Title     string              `yaml:"title"`
	Narrative string              `yaml:"narrative"`
	Quest     string              `yaml:"quest"`
	Stats     map[string]int      `yaml:"stats"`
	Inventory []openingItem       `yaml:"inventory"`
	Choices   []openingChoice     `yaml:"choices"`
	EnvTag    string              `yaml:"env_tag"`
	RPG       bool                `yaml:"rpg"`
	Map       *openingMap         `yaml:"map"`
}

type openingItem struct {
	Name     string   `yaml:"name"`
	Count    int      `yaml:"count"`
	Tags     []string `yaml:"tags"`
	Type     string   `yaml:"type"`
	Icon     string   `yaml:"icon"`
	Value    *float64 `yaml:"value"`
	MaxValue *float64 `yaml:"max_value"`
}

type openingChoice struct {
	Label  string `yaml:"label"`
	Action string `yaml:"action"`
	Type   string `yaml:"type"`
}

type openingMap struct {
	EntryRoomID string        `yaml:"entry_room_id"`
	Rooms       []openingRoom `yaml:"rooms"`
}

type openingRoom struct {
	ID            string                   `yaml:"id"`
	Name          string                   `yaml:"name"`
	Description   string                   `yaml:"description"`
	Exits         map[string]string        `yaml:"exits"`
	Coordinates   *GridPos                 `yaml:"coordinates"`
	Interactables []openingInteractable    `yaml:"interactables"`
	ExitCondition *openingExitCondition    `yaml:"exit_condition"`
}

type openingInteractable struct {
	ID       string         `yaml:"id"`
	Name     string         `yaml:"name"`
	Type     string         `yaml:"type"`
	Requires string         `yaml:"requires"`
	Result   *openingResult `yaml:"result"`
}

type openingResult struct {
	Narrative   string         `yaml:"narrative"`
	Items       []openingItem  `yaml:"items"`
	StatUpdates map[string]int `yaml:"stat_updates"`
	RemoveAfter bool           `yaml:"remove_after"`
}

type openingExitCondition struct {
	Direction string `yaml:"direction"`
	Requires  string `yaml:"requires"`
}

var openings map[string]openingEntry

func init() {
	var doc openingDoc
	if err := yaml.Unmarshal(openingsYAML, &doc); err != nil {
		panic(fmt.Sprintf("narrative: embedded openings table is invalid: %v", err))
	}
	openings = doc.Genres
}

// Genres lists the available genre keys in stable order.
func Genres() []string {
	keys := make([]string, 0, len(openings))
	for k := range openings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GenreTitle returns the display title for a genre key.
func GenreTitle(genre string) (string, bool) {
	entry, ok := openings[strings.ToLower(genre)]
	if !ok {
		return "", false
	}
	return entry.Title, true
}

// IsRPGGenre reports whether a genre runs in dungeon (sector map) mode.
func IsRPGGenre(genre string) bool {
	entry, ok := openings[strings.ToLower(genre)]
	return ok && entry.RPG
}

// Opening returns the deterministic canned response that begins a
// session in the given genre.
func Opening(genre string) (*Response, error) {
	entry, ok := openings[strings.ToLower(genre)]
	if !ok {
		return nil, fmt.Errorf("unknown genre: %q", genre)
	}

	resp := &Response{
		Narrative:     entry.Narrative,
		Outcome:       OutcomeNeutral,
		StatsSet:      state.Stats(entry.Stats).Clamped(),
		InventorySet:  convertItems(entry.Inventory),
		QuestUpdate:   entry.Quest,
		SummaryUpdate: entry.Title + ": " + entry.Quest,
	}
	if entry.EnvTag != "" {
		resp.EnvironmentTags = []string{entry.EnvTag}
	}
	for _, c := range entry.Choices {
		resp.Choices = append(resp.Choices, Choice{Label: c.Label, Action: c.Action, Type: c.Type})
	}
	if entry.Map != nil {
		resp.MapData = convertMap(entry.Map)
		resp.RoomID = entry.Map.EntryRoomID
	}
	return resp, nil
}

func convertItems(in []openingItem) []state.Item {
	if len(in) == 0 {
		return nil
	}
	out := make([]state.Item, 0, len(in))
	for _, it := range in {
		count := it.Count
		if count < 1 {
			count = 1
		}
		out = append(out, state.Item{
			Name:     it.Name,
			Count:    count,
			Tags:     it.Tags,
			Type:     it.Type,
			Icon:     it.Icon,
			Value:    it.Value,
			MaxValue: it.MaxValue,
		})
	}
	return out
}

func convertMap(in *openingMap) *MapData {
	out := &MapData{EntryRoomID: in.EntryRoomID}
	for _, r := range in.Rooms {
		room := RoomData{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			Exits:       r.Exits,
			Coordinates: r.Coordinates,
		}
		if r.ExitCondition != nil {
			room.ExitCondition = &ExitConditionData{
				Direction: r.ExitCondition.Direction,
				Requires:  r.ExitCondition.Requires,
			}
		}
		for _, i := range r.Interactables {
			data := InteractableData{
				ID:       i.ID,
				Name:     i.Name,
				Type:     i.Type,
				Requires: i.Requires,
			}
			if i.Result != nil {
				data.Result = &ResultData{
					Narrative:   i.Result.Narrative,
					Items:       convertItems(i.Result.Items),
					StatUpdates: StatDelta(i.Result.StatUpdates),
					RemoveAfter: i.Result.RemoveAfter,
				}
			}
			room.Interactables = append(room.Interactables, data)
		}
		out.Rooms = append(out.Rooms, room)
	}
	return out
}
