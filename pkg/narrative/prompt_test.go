package narrative

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glitchtale/engine/pkg/chat"
	"github.com/glitchtale/engine/pkg/state"
)

func TestBuildActionPrompt(t *testing.T) {
	gs := state.NewGameState("fantasy")
	gs.Stats = state.Stats{"health": 80}
	gs.Quest = "Reach the tower"
	gs.History = []chat.Message{
		{Role: chat.RoleUser, Content: "look around"},
		{Role: chat.RoleAI, Content: "Trees everywhere."},
		{Role: chat.RoleSystem, Content: "The narrator is unreachable."},
	}

	msgs := BuildActionPrompt(gs, "go north", "The player is controlling: Vexa")

	if len(msgs) != 4 {
		t.Fatalf("got %d messages, want 4 (system msgs excluded from history)", len(msgs))
	}
	if msgs[0].Role != chat.PromptRoleSystem {
		t.Errorf("first message role = %q, want system", msgs[0].Role)
	}
	if !strings.Contains(msgs[0].Content, `"health":80`) {
		t.Error("system prompt missing state snapshot")
	}
	if !strings.Contains(msgs[0].Content, "Vexa") {
		t.Error("system prompt missing the extra context line")
	}
	if msgs[2].Role != chat.PromptRoleAssistant {
		t.Errorf("AI history role = %q, want assistant", msgs[2].Role)
	}
	last := msgs[len(msgs)-1]
	if last.Role != chat.PromptRoleUser || last.Content != "go north" {
		t.Errorf("last message = %+v, want the action", last)
	}
}

func TestBuildActionPromptTruncatesHistory(t *testing.T) {
	gs := state.NewGameState("fantasy")
	for i := 0; i < HistoryPromptLimit*2; i++ {
		gs.History = append(gs.History, chat.Message{Role: chat.RoleUser, Content: fmt.Sprintf("m%d", i)})
	}

	msgs := BuildActionPrompt(gs, "next", "")

	// system + capped history + action
	if len(msgs) != HistoryPromptLimit+2 {
		t.Fatalf("got %d messages, want %d", len(msgs), HistoryPromptLimit+2)
	}
	// The kept window is the most recent tail.
	if msgs[1].Content != fmt.Sprintf("m%d", HistoryPromptLimit) {
		t.Errorf("first history message = %q, want the tail window", msgs[1].Content)
	}
}

func TestBuildSectorPrompt(t *testing.T) {
	gs := state.NewGameState("station")

	msgs := BuildSectorPrompt(gs, "Engineering Anteroom", "east", 1, 0)

	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	sys := msgs[0].Content
	for _, want := range []string{"Engineering Anteroom", "east", "(1,0)", "entry_room_id", "5 to 8"} {
		if !strings.Contains(sys, want) {
			t.Errorf("sector prompt missing %q", want)
		}
	}
}
