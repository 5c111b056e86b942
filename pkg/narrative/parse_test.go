package narrative

import (
	"testing"
)

func TestInterpretValidReply(t *testing.T) {
	raw := `{
		"narrative": "The door creaks open.",
		"outcome": "SUCCESS",
		"stat_updates": {"health": -5},
		"choices": [{"label": "Step inside", "action": "walk through the door"}]
	}`

	resp, err := Interpret(raw)
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if resp.Narrative != "The door creaks open." {
		t.Errorf("Narrative = %q", resp.Narrative)
	}
	if resp.Outcome != OutcomeSuccess {
		t.Errorf("Outcome = %q, want SUCCESS", resp.Outcome)
	}
	if resp.StatUpdates["health"] != -5 {
		t.Errorf("StatUpdates = %v", resp.StatUpdates)
	}
	if len(resp.Choices) != 1 || resp.Choices[0].Action != "walk through the door" {
		t.Errorf("Choices = %v", resp.Choices)
	}
}

func TestInterpretFencedReply(t *testing.T) {
	raw := "```json\n{\"narrative\": \"It rains.\"}\n```"

	resp, err := Interpret(raw)
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if resp.Narrative != "It rains." {
		t.Errorf("Narrative = %q", resp.Narrative)
	}
}

func TestInterpretProseWrappedReply(t *testing.T) {
	raw := `Here is the response you asked for: {"narrative": "A wolf howls.", "outcome": "failure"} Hope that helps!`

	resp, err := Interpret(raw)
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if resp.Narrative != "A wolf howls." {
		t.Errorf("Narrative = %q", resp.Narrative)
	}
	if resp.Outcome != OutcomeFailure {
		t.Errorf("Outcome = %q, want FAILURE (normalized)", resp.Outcome)
	}
}

func TestInterpretGarbageFallsBack(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"prose only", "The model had a bad day."},
		{"broken json", `{"narrative": "unterminated`},
		{"missing narrative", `{"outcome": "SUCCESS", "stat_updates": {"health": -90}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := Interpret(tt.raw)
			if err == nil {
				t.Fatal("expected a parse error for logging")
			}
			if resp == nil || resp.Narrative != FallbackNarrative {
				t.Errorf("want fallback narrative, got %+v", resp)
			}
			if resp.Outcome != OutcomeNeutral {
				t.Errorf("fallback outcome = %q, want NEUTRAL", resp.Outcome)
			}
			// A garbled reply must never carry state changes out.
			if resp.StatsSet != nil || resp.StatUpdates != nil || resp.GameOver {
				t.Errorf("fallback leaked state effects: %+v", resp)
			}
		})
	}
}

func TestInterpretSanitizesChoices(t *testing.T) {
	raw := `{
		"narrative": "Pick one.",
		"choices": [
			{"label": "  ", "action": "ignored"},
			{"label": "Run", "action": ""}
		]
	}`

	resp, err := Interpret(raw)
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if len(resp.Choices) != 1 {
		t.Fatalf("Choices = %v, want the blank label dropped", resp.Choices)
	}
	if resp.Choices[0].Action != "Run" {
		t.Errorf("empty action should default to the label, got %q", resp.Choices[0].Action)
	}
}

func TestInterpretRoundsFractionalDeltas(t *testing.T) {
	raw := `{"narrative": "Ouch.", "stat_updates": {"health": -2.6, "stamina": 1.2}}`

	resp, err := Interpret(raw)
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if resp.StatUpdates["health"] != -3 {
		t.Errorf("health delta = %d, want -3", resp.StatUpdates["health"])
	}
	if resp.StatUpdates["stamina"] != 1 {
		t.Errorf("stamina delta = %d, want 1", resp.StatUpdates["stamina"])
	}
}

func TestInterpretClampsStatsSet(t *testing.T) {
	raw := `{"narrative": "Renewed.", "stats_set": {"health": 400, "sanity": -10}}`

	resp, err := Interpret(raw)
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if resp.StatsSet["health"] != 100 || resp.StatsSet["sanity"] != 0 {
		t.Errorf("StatsSet = %v, want clamped into [0,100]", resp.StatsSet)
	}
}

func TestOutcomeNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want Outcome
	}{
		{"SUCCESS", OutcomeSuccess},
		{"success", OutcomeSuccess},
		{"Failure", OutcomeFailure},
		{"NEUTRAL", OutcomeNeutral},
		{"", OutcomeNeutral},
		{"triumph", OutcomeNeutral},
	}
	for _, tt := range tests {
		if got := Outcome(tt.in).normalize(); got != tt.want {
			t.Errorf("normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
