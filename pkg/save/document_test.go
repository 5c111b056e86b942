package save

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/glitchtale/engine/pkg/actor"
	"github.com/glitchtale/engine/pkg/chat"
	"github.com/glitchtale/engine/pkg/dungeon"
	"github.com/glitchtale/engine/pkg/state"
)

func sampleState() *state.GameState {
	gs := state.NewGameState("station")
	gs.Stats = state.Stats{"health": 70, "sanity": 40}
	gs.Inventory = state.Inventory{
		{Name: "Stimpack", Count: 2, Tags: []string{"consumable"}},
		{Name: "Plasma Cutter", Count: 1, Type: "weapon"},
	}
	gs.Quest = "Reach the reactor"
	gs.Summary = "Derelict Station K-7: Reach the reactor"
	gs.GameOver = false
	for i := 0; i < 5; i++ {
		gs.History = append(gs.History, chat.NewMessage(chat.RoleUser, fmt.Sprintf("action %d", i)))
	}
	return gs
}

func TestExportImportRoundTrip(t *testing.T) {
	gs := sampleState()
	doc := Export(gs, nil, nil)

	raw, err := doc.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	restored := decoded.GameState()
	if restored.Genre != gs.Genre {
		t.Errorf("genre = %q", restored.Genre)
	}
	if restored.Stats["health"] != 70 || restored.Stats["sanity"] != 40 {
		t.Errorf("stats = %v", restored.Stats)
	}
	if len(restored.Inventory) != 2 || restored.Inventory[0].Name != "Stimpack" || restored.Inventory[0].Count != 2 {
		t.Errorf("inventory = %v", restored.Inventory)
	}
	if restored.Quest != gs.Quest || restored.Summary != gs.Summary {
		t.Error("quest or summary lost")
	}
	if restored.GameOver != gs.GameOver {
		t.Error("game over flag lost")
	}
	if len(restored.History) != len(gs.History) {
		t.Errorf("history length = %d, want %d", len(restored.History), len(gs.History))
	}
	for i := range gs.History {
		if restored.History[i].Content != gs.History[i].Content {
			t.Errorf("history[%d] = %q", i, restored.History[i].Content)
		}
	}
}

func TestExportTruncatesHistory(t *testing.T) {
	gs := sampleState()
	gs.History = nil
	for i := 0; i < HistoryExportLimit+10; i++ {
		gs.History = append(gs.History, chat.NewMessage(chat.RoleUser, fmt.Sprintf("m%d", i)))
	}

	doc := Export(gs, nil, nil)
	if len(doc.History) != HistoryExportLimit {
		t.Fatalf("exported history = %d, want %d", len(doc.History), HistoryExportLimit)
	}
	if doc.History[0].Content != "m10" {
		t.Errorf("truncation kept the wrong end: first = %q", doc.History[0].Content)
	}
	// The source snapshot is untouched.
	if len(gs.History) != HistoryExportLimit+10 {
		t.Error("export mutated the snapshot")
	}
}

func TestExportCarriesRPGState(t *testing.T) {
	snap := &dungeon.Snapshot{
		CurrentRoomID: "k7_airlock",
		Rooms: []*dungeon.Room{
			{ID: "k7_airlock", Name: "Airlock", Exits: map[string]string{"east": "k7_corridor"}},
			{ID: "k7_corridor", Name: "Corridor"},
		},
		Visited: []string{"k7_airlock"},
		Sector:  dungeon.Coord{X: 0, Y: 0},
	}
	doc := Export(sampleState(), snap, nil)
	raw, err := doc.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.RPGState == nil || decoded.RPGState.CurrentRoomID != "k7_airlock" {
		t.Fatalf("rpg state lost: %+v", decoded.RPGState)
	}
	if len(decoded.RPGState.Rooms) != 2 {
		t.Errorf("rooms = %d", len(decoded.RPGState.Rooms))
	}
}

func TestExportCarriesCharacter(t *testing.T) {
	spec := &actor.CharacterSpec{
		Name:       "Vexa Reyes",
		Class:      "Salvage Tech",
		Attributes: map[string]int{"strength": 16},
	}
	doc := Export(sampleState(), nil, spec)
	// The document holds its own copy.
	spec.Attributes["strength"] = 3
	raw, err := doc.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Character == nil || decoded.Character.Name != "Vexa Reyes" {
		t.Fatalf("character lost: %+v", decoded.Character)
	}
	if decoded.Character.Attributes["strength"] != 16 {
		t.Errorf("strength = %d, want 16", decoded.Character.Attributes["strength"])
	}
}

func TestDecodeRejectsNamelessCharacter(t *testing.T) {
	raw := []byte(`{
		"version":"1.0","genre":"station",
		"stats":{"health":50},
		"inventory":[],
		"character":{"class":"Rogue"}
	}`)
	if _, err := Decode(raw); err == nil {
		t.Fatal("character without a name should fail validation")
	}
}

func TestDecodeRejectsMissingStats(t *testing.T) {
	raw := []byte(`{"version":"1.0","genre":"station","inventory":[]}`)
	if _, err := Decode(raw); err == nil || !strings.Contains(err.Error(), "stats") {
		t.Fatalf("err = %v, want missing stats", err)
	}
}

func TestDecodeRejectsMissingInventory(t *testing.T) {
	raw := []byte(`{"version":"1.0","genre":"station","stats":{"health":50}}`)
	if _, err := Decode(raw); err == nil || !strings.Contains(err.Error(), "inventory") {
		t.Fatalf("err = %v, want missing inventory", err)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "not json", `[]`, `{"stats":"nope","inventory":[]}`} {
		if _, err := Decode([]byte(raw)); err == nil {
			t.Errorf("Decode(%q) should fail", raw)
		}
	}
}

func TestDecodeRejectsInvalidRecords(t *testing.T) {
	raw := []byte(`{
		"version":"1.0","genre":"station",
		"stats":{"health":50},
		"inventory":[{"name":"","count":1}]
	}`)
	if _, err := Decode(raw); err == nil {
		t.Fatal("nameless inventory record should fail validation")
	}

	raw = []byte(`{
		"version":"1.0","genre":"station",
		"stats":{"health":500},
		"inventory":[]
	}`)
	if _, err := Decode(raw); err == nil {
		t.Fatal("out-of-range stat should fail validation")
	}
}

func TestDecodeMigratesLegacyDocument(t *testing.T) {
	// Pre-versioned saves could carry unclamped stats and duplicate
	// item records.
	raw := []byte(`{
		"genre":"fantasy",
		"stats":{"health":120},
		"inventory":[
			{"name":"Torch","count":1},
			{"name":"Torch","count":2}
		]
	}`)
	doc, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if doc.Version != Version {
		t.Errorf("version = %q, want %q", doc.Version, Version)
	}
	if doc.Stats["health"] != 100 {
		t.Errorf("legacy stat not clamped: %d", doc.Stats["health"])
	}
	if len(doc.Inventory) != 1 || doc.Inventory[0].Count != 3 {
		t.Errorf("legacy inventory not merged: %+v", doc.Inventory)
	}
}

func TestDecodeRejectsFutureVersion(t *testing.T) {
	raw := []byte(`{"version":"2.0","genre":"station","stats":{},"inventory":[]}`)
	if _, err := Decode(raw); err == nil {
		t.Fatal("unknown major version should be refused")
	}
}

func TestRestoreMessageShortcut(t *testing.T) {
	msg := RestoreMessage()
	if msg.Role != chat.RoleSystem {
		t.Errorf("role = %q", msg.Role)
	}
	if msg.Action != "/summary" || msg.ActionLabel == "" {
		t.Errorf("shortcut missing: %+v", msg)
	}
}

func TestDocumentJSONKeys(t *testing.T) {
	raw, err := Export(sampleState(), nil, nil).Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, want := range []string{"version", "timestamp", "genre", "stats", "inventory", "game_over", "history"} {
		if _, ok := keys[want]; !ok {
			t.Errorf("exported document missing key %q", want)
		}
	}
}
