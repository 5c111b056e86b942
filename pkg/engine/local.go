package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/glitchtale/engine/pkg/chat"
	"github.com/glitchtale/engine/pkg/dungeon"
	"github.com/glitchtale/engine/pkg/narrative"
)

// localAction resolves dungeon commands without a backend round trip:
// movement, interactables and combat are registry operations. Returns
// false for free-form text, which still goes to the model.
func (e *Engine) localAction(ctx context.Context, d *dungeon.Generator, action string) bool {
	verb, arg := splitAction(action)

	switch verb {
	case "go", "move", "walk":
		if _, ok := directions[arg]; !ok {
			return false
		}
		e.moveLocal(ctx, d, arg)
		return true
	case "north", "south", "east", "west":
		e.moveLocal(ctx, d, verb)
		return true
	case "interact":
		e.interactLocal(d, arg)
		return true
	case "attack":
		e.attackLocal(d)
		return true
	case "flee":
		e.fleeLocal(d)
		return true
	}

	// "open the supply locker" style free text that names a known
	// object resolves locally too.
	if id, ok := d.InteractableByName(action); ok {
		e.interactLocal(d, id)
		return true
	}
	return false
}

var directions = map[string]struct{}{
	"north": {}, "south": {}, "east": {}, "west": {},
}

func splitAction(action string) (string, string) {
	fields := strings.Fields(strings.ToLower(action))
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

func (e *Engine) moveLocal(ctx context.Context, d *dungeon.Generator, direction string) {
	e.setPhase(PhaseApplying)
	res, err := d.Move(ctx, direction)
	if err != nil {
		e.logger.Error("Move failed", "direction", direction, "error", err)
		e.store.Append(chat.NewMessage(chat.RoleSystem, "Something blocks the way. Try a different route."))
		return
	}
	if res.Message != "" {
		e.store.Append(chat.NewMessage(chat.RoleSystem, res.Message))
	}
	if res.Blocked {
		return
	}
	if res.Unlocked {
		e.flashOutcome(narrative.OutcomeSuccess)
	}

	var sb strings.Builder
	if res.Narrative != "" {
		sb.WriteString(res.Narrative)
		sb.WriteString("\n\n")
	}
	sb.WriteString("*" + res.Room.Name + "*")
	if res.Room.Description != "" {
		sb.WriteString("\n\n" + res.Room.Description)
	}
	e.store.Append(chat.NewMessage(chat.RoleAI, sb.String()))
}

func (e *Engine) interactLocal(d *dungeon.Generator, id string) {
	e.setPhase(PhaseApplying)
	res, err := d.Interact(id)
	if err != nil {
		e.store.Append(chat.NewMessage(chat.RoleSystem, "There is nothing like that here."))
		return
	}
	if res.Blocked {
		e.store.Append(chat.NewMessage(chat.RoleSystem, res.Message))
		return
	}
	if res.Combat {
		e.flashOutcome(narrative.OutcomeFailure)
		if res.Narrative != "" {
			e.store.Append(chat.NewMessage(chat.RoleAI, e.norm.CleanNarrative(res.Narrative)))
		}
		e.store.Append(chat.NewMessage(chat.RoleSystem, res.Message))
		return
	}
	e.flashOutcome(narrative.OutcomeSuccess)
	if res.Narrative != "" {
		e.store.Append(chat.NewMessage(chat.RoleAI, e.norm.CleanNarrative(res.Narrative)))
	}
}

func (e *Engine) attackLocal(d *dungeon.Generator) {
	e.setPhase(PhaseApplying)
	bonus := e.Character().AttackBonus()
	res, err := d.Attack(bonus)
	if err != nil {
		e.store.Append(chat.NewMessage(chat.RoleSystem, "There is nothing to fight."))
		return
	}
	if res.Victory {
		e.flashOutcome(narrative.OutcomeSuccess)
	} else {
		e.flashOutcome(narrative.OutcomeFailure)
	}
	e.store.Append(chat.NewMessage(chat.RoleAI, res.Narrative))
}

func (e *Engine) fleeLocal(d *dungeon.Generator) {
	e.setPhase(PhaseApplying)
	res, err := d.Flee()
	if err != nil {
		e.store.Append(chat.NewMessage(chat.RoleSystem, "There is nothing to flee from."))
		return
	}
	e.store.Append(chat.NewMessage(chat.RoleAI, res.Narrative))
}

// GenerateSector satisfies dungeon.SectorSource: the next sector is
// one backend call validated through the response contract.
func (e *Engine) GenerateSector(ctx context.Context, from *dungeon.Room, direction string, sector dungeon.Coord) (*narrative.MapData, string, error) {
	name := ""
	if from != nil {
		name = from.Name
	}
	prompt := narrative.BuildSectorPrompt(e.store.Snapshot(), name, direction, sector.X, sector.Y)
	raw, err := e.backend.GenerateResponse(ctx, prompt)
	if err != nil {
		return nil, "", err
	}
	resp, err := narrative.Interpret(raw)
	if err != nil {
		return nil, "", err
	}
	if resp.MapData == nil || len(resp.MapData.Rooms) == 0 {
		return nil, "", fmt.Errorf("reply carried no map data")
	}
	return resp.MapData, e.norm.CleanNarrative(resp.Narrative), nil
}
