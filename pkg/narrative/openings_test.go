package narrative

import "testing"

func TestParseInit(t *testing.T) {
	tests := []struct {
		name      string
		action    string
		genre     string
		character string
		ok        bool
	}{
		{"plain genre", "__INIT__:fantasy", "fantasy", "", true},
		{"uppercase genre", "__INIT__:Horror", "horror", "", true},
		{"leading whitespace", "  __INIT__:station", "station", "", true},
		{"character payload with colons", `__INIT__:fantasy:{"name":"Vexa"}`, "fantasy", `{"name":"Vexa"}`, true},
		{"missing genre", "__INIT__:", "", "", false},
		{"not a sentinel", "go north", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			genre, character, ok := ParseInit(tt.action)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if genre != tt.genre || character != tt.character {
				t.Errorf("got (%q, %q), want (%q, %q)", genre, character, tt.genre, tt.character)
			}
		})
	}

	if !IsInit("__INIT__:fantasy") || IsInit("look around") {
		t.Error("IsInit misclassified an action")
	}
}

func TestGenres(t *testing.T) {
	genres := Genres()
	if len(genres) == 0 {
		t.Fatal("no genres in the openings table")
	}

	for _, g := range []string{"fantasy", "horror", "station"} {
		found := false
		for _, have := range genres {
			if have == g {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("genre %q missing from %v", g, genres)
		}
	}

	if title, ok := GenreTitle("FANTASY"); !ok || title == "" {
		t.Error("GenreTitle should be case-insensitive and non-empty")
	}
}

func TestOpeningFantasy(t *testing.T) {
	resp, err := Opening("fantasy")
	if err != nil {
		t.Fatalf("Opening() error = %v", err)
	}

	if resp.Narrative == "" {
		t.Error("opening narrative is empty")
	}
	if resp.Outcome != OutcomeNeutral {
		t.Errorf("Outcome = %q, want NEUTRAL", resp.Outcome)
	}
	if resp.StatsSet["health"] != 100 {
		t.Errorf("health = %d, want 100", resp.StatsSet["health"])
	}
	if len(resp.InventorySet) == 0 {
		t.Error("opening inventory is empty")
	}
	if resp.QuestUpdate == "" || resp.SummaryUpdate == "" {
		t.Error("opening must seed quest and summary")
	}
	if len(resp.Choices) == 0 {
		t.Error("opening must offer choices")
	}
	if resp.MapData != nil {
		t.Error("fantasy is not an RPG genre and must not carry a map")
	}
}

func TestOpeningStationMap(t *testing.T) {
	if !IsRPGGenre("station") {
		t.Fatal("station should run in dungeon mode")
	}
	if IsRPGGenre("fantasy") {
		t.Error("fantasy should not run in dungeon mode")
	}

	resp, err := Opening("station")
	if err != nil {
		t.Fatalf("Opening() error = %v", err)
	}
	if resp.MapData == nil {
		t.Fatal("station opening must carry map data")
	}
	if resp.MapData.EntryRoomID == "" {
		t.Error("map data missing entry room")
	}
	if n := len(resp.MapData.Rooms); n < 5 || n > 8 {
		t.Errorf("opening sector has %d rooms, want 5-8", n)
	}

	// Every exit that stays inside the sector must reference a room
	// that exists; exactly the dangling ones grow the map later.
	ids := make(map[string]bool, len(resp.MapData.Rooms))
	for _, r := range resp.MapData.Rooms {
		ids[r.ID] = true
	}
	if !ids[resp.MapData.EntryRoomID] {
		t.Errorf("entry room %q not among rooms", resp.MapData.EntryRoomID)
	}

	dangling := 0
	for _, r := range resp.MapData.Rooms {
		for _, target := range r.Exits {
			if !ids[target] {
				dangling++
			}
		}
	}
	if dangling == 0 {
		t.Error("opening sector needs at least one dangling exit to expand through")
	}
}

func TestOpeningUnknownGenre(t *testing.T) {
	if _, err := Opening("soap-opera"); err == nil {
		t.Error("unknown genre must fail")
	}
}
