package actor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jwebster45206/d20"
)

// CharacterSpec is the serializable player character. The init
// sentinel may carry one as its optional JSON payload; every field is
// optional and defaulted.
type CharacterSpec struct {
	Name        string         `json:"name"`
	Class       string         `json:"class,omitempty"`
	Pronouns    string         `json:"pronouns,omitempty"`
	Description string         `json:"description,omitempty"`
	HP          int            `json:"hp,omitempty"`
	MaxHP       int            `json:"max_hp,omitempty"`
	AC          int            `json:"ac,omitempty"`
	Attributes  map[string]int `json:"attributes,omitempty"`
}

const (
	defaultMaxHP = 20
	defaultAC    = 10
)

// Clone returns a deep copy. NewCharacter writes defaults back into
// its spec, so a spec held elsewhere must be copied first.
func (s *CharacterSpec) Clone() *CharacterSpec {
	if s == nil {
		return nil
	}
	out := *s
	if s.Attributes != nil {
		out.Attributes = make(map[string]int, len(s.Attributes))
		for k, v := range s.Attributes {
			out.Attributes[k] = v
		}
	}
	return &out
}

// Character is the runtime player character.
type Character struct {
	Spec  *CharacterSpec
	Actor *d20.Actor
}

// ParseSpec decodes the character JSON blob from an init sentinel.
// An empty blob yields (nil, nil): the session simply runs without a
// named character.
func ParseSpec(blob string) (*CharacterSpec, error) {
	blob = strings.TrimSpace(blob)
	if blob == "" {
		return nil, nil
	}
	var spec CharacterSpec
	if err := json.Unmarshal([]byte(blob), &spec); err != nil {
		return nil, fmt.Errorf("invalid character payload: %w", err)
	}
	if spec.Name == "" {
		return nil, fmt.Errorf("character payload missing name")
	}
	return &spec, nil
}

// NewCharacter builds the runtime character, constructing its d20
// actor from the spec.
func NewCharacter(spec *CharacterSpec) (*Character, error) {
	if spec == nil {
		return nil, fmt.Errorf("spec cannot be nil")
	}
	if spec.MaxHP <= 0 {
		spec.MaxHP = defaultMaxHP
	}
	if spec.AC <= 0 {
		spec.AC = defaultAC
	}

	a, err := d20.NewActor(spec.Name).
		WithHP(spec.MaxHP).
		WithAC(spec.AC).
		WithAttributes(spec.Attributes).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}
	if spec.HP > 0 && spec.HP != spec.MaxHP {
		if err := a.SetHP(spec.HP); err != nil {
			return nil, fmt.Errorf("failed to set HP: %w", err)
		}
	}

	return &Character{Spec: spec, Actor: a}, nil
}

// AttackBonus is the flat bonus a character adds to dungeon combat
// damage, derived from the "strength" attribute when present.
func (c *Character) AttackBonus() int {
	if c == nil || c.Actor == nil {
		return 0
	}
	if str, ok := c.Actor.Attribute("strength"); ok {
		return (str - 10) / 2
	}
	return 0
}

// BuildPrompt renders the character line for the system prompt, or an
// empty string for a nil character.
//
// Example: "The player is controlling: Vexa Reyes (she/her), Salvage
// Tech. Ex-corporate diver with a grudge."
func BuildPrompt(c *Character) string {
	if c == nil || c.Spec == nil {
		return ""
	}
	sb := strings.Builder{}
	sb.WriteString("The player is controlling: ")
	sb.WriteString(c.Spec.Name)
	if c.Spec.Pronouns != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", c.Spec.Pronouns))
	}
	if c.Spec.Class != "" {
		sb.WriteString(", " + c.Spec.Class)
	}
	if c.Spec.Description != "" {
		sb.WriteString(". " + c.Spec.Description)
	}
	return sb.String()
}
