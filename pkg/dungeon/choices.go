package dungeon

import (
	"fmt"
	"sort"
	"strings"

	"github.com/glitchtale/engine/pkg/narrative"
	"github.com/glitchtale/engine/pkg/textfilter"
)

// Choice action types surfaced to the UI.
const (
	ChoiceMove     = "move"
	ChoiceInteract = "interact"
	ChoiceCombat   = "combat"
	ChoiceInspect  = "inspect"
)

// Choices derives the action list for the current room. Combat takes
// over the whole list; otherwise interactables come first, then exits
// (the most recently unlocked direction keeps an Open label until it
// is walked through again), then a constant look-around entry.
func (g *Generator) Choices() []narrative.Choice {
	g.mu.Lock()
	combat := g.combat
	id := g.currentID
	unlockedRoom, unlockedDir := g.unlockedRoomID, g.unlockedDir
	g.mu.Unlock()

	if combat != nil {
		return []narrative.Choice{
			{Label: "Attack the " + combat.EnemyName, Action: "attack", Type: ChoiceCombat},
			{Label: "Flee", Action: "flee", Type: ChoiceCombat},
		}
	}

	room, ok := g.reg.Get(id)
	if !ok {
		return nil
	}

	var out []narrative.Choice
	for _, obj := range room.Interactables {
		out = append(out, narrative.Choice{
			Label:  labelFor(obj),
			Action: "interact " + obj.ID,
			Type:   ChoiceInteract,
			Meta:   map[string]string{"id": obj.ID},
		})
	}

	dirs := make([]string, 0, len(room.Exits))
	for dir := range room.Exits {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	for _, dir := range dirs {
		label := "Go " + textfilter.Label(dir)
		if room.ExitCondition != nil && room.ExitCondition.Solved &&
			strings.EqualFold(room.ExitCondition.Direction, dir) &&
			room.ID == unlockedRoom && strings.EqualFold(dir, unlockedDir) {
			label = "Open " + textfilter.Label(dir)
		}
		out = append(out, narrative.Choice{
			Label:  label,
			Action: "go " + dir,
			Type:   ChoiceMove,
			Meta:   map[string]string{"direction": dir},
		})
	}

	out = append(out, narrative.Choice{
		Label:  "Look around",
		Action: "look around",
		Type:   ChoiceInspect,
	})
	return out
}

func labelFor(obj Interactable) string {
	name := textfilter.Label(obj.Name)
	switch obj.Type {
	case InteractableLoot:
		return "Take " + name
	case InteractableTerminal:
		return "Access " + name
	case InteractableEnemy:
		return "Engage " + name
	case InteractableExamine:
		return "Examine " + name
	}
	return fmt.Sprintf("Use %s", name)
}
