package actor

import (
	"strings"
	"testing"
)

func TestParseSpec(t *testing.T) {
	tests := []struct {
		name    string
		blob    string
		want    string
		wantNil bool
		wantErr bool
	}{
		{"empty blob", "", "", true, false},
		{"whitespace blob", "   ", "", true, false},
		{"valid", `{"name":"Vexa Reyes","class":"Salvage Tech"}`, "Vexa Reyes", false, false},
		{"missing name", `{"class":"Rogue"}`, "", false, true},
		{"broken json", `{"name":`, "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := ParseSpec(tt.blob)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSpec() error = %v", err)
			}
			if tt.wantNil {
				if spec != nil {
					t.Fatalf("want nil spec, got %+v", spec)
				}
				return
			}
			if spec.Name != tt.want {
				t.Errorf("Name = %q, want %q", spec.Name, tt.want)
			}
		})
	}
}

func TestNewCharacterDefaults(t *testing.T) {
	c, err := NewCharacter(&CharacterSpec{Name: "Bram"})
	if err != nil {
		t.Fatalf("NewCharacter() error = %v", err)
	}
	if c.Spec.MaxHP != defaultMaxHP {
		t.Errorf("MaxHP = %d, want default %d", c.Spec.MaxHP, defaultMaxHP)
	}
	if c.Spec.AC != defaultAC {
		t.Errorf("AC = %d, want default %d", c.Spec.AC, defaultAC)
	}

	if _, err := NewCharacter(nil); err == nil {
		t.Error("nil spec must fail")
	}
}

func TestAttackBonus(t *testing.T) {
	tests := []struct {
		name     string
		strength int
		want     int
	}{
		{"strong", 16, 3},
		{"average", 10, 0},
		{"weak", 7, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCharacter(&CharacterSpec{
				Name:       "Test",
				Attributes: map[string]int{"strength": tt.strength},
			})
			if err != nil {
				t.Fatalf("NewCharacter() error = %v", err)
			}
			if got := c.AttackBonus(); got != tt.want {
				t.Errorf("AttackBonus() = %d, want %d", got, tt.want)
			}
		})
	}

	var nothing *Character
	if nothing.AttackBonus() != 0 {
		t.Error("nil character must have zero bonus")
	}

	plain, err := NewCharacter(&CharacterSpec{Name: "Plain"})
	if err != nil {
		t.Fatalf("NewCharacter() error = %v", err)
	}
	if plain.AttackBonus() != 0 {
		t.Error("character without strength must have zero bonus")
	}
}

func TestBuildPrompt(t *testing.T) {
	c, err := NewCharacter(&CharacterSpec{
		Name:        "Vexa Reyes",
		Pronouns:    "she/her",
		Class:       "Salvage Tech",
		Description: "Ex-corporate diver with a grudge.",
	})
	if err != nil {
		t.Fatalf("NewCharacter() error = %v", err)
	}

	line := BuildPrompt(c)
	for _, want := range []string{"Vexa Reyes", "(she/her)", "Salvage Tech", "grudge"} {
		if !strings.Contains(line, want) {
			t.Errorf("prompt line missing %q: %s", want, line)
		}
	}

	if BuildPrompt(nil) != "" {
		t.Error("nil character must render an empty line")
	}
}
