package dungeon

import (
	"fmt"
	"strings"
)

// InteractResult reports one interactable resolution.
type InteractResult struct {
	Narrative string
	Blocked   bool
	Message   string
	Removed   bool
	Combat    bool // an enemy engaged instead of resolving
}

// Interact resolves an interactable in the current room by id. A
// requires field gates resolution behind inventory; consumable
// requirements burn one unit on use. The object is removed from the
// room once it grants items, is flagged remove-on-use, or is loot.
// Enemy interactables open combat instead.
func (g *Generator) Interact(id string) (*InteractResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.combat != nil {
		return nil, fmt.Errorf("cannot interact during combat")
	}
	room, ok := g.reg.Get(g.currentID)
	if !ok {
		return nil, fmt.Errorf("no current room")
	}
	idx := room.findInteractable(id)
	if idx < 0 {
		return nil, fmt.Errorf("no interactable %q here", id)
	}
	obj := room.Interactables[idx]

	if obj.Requires != "" && !g.store.HasItemMatching(obj.Requires) {
		return &InteractResult{
			Blocked: true,
			Message: fmt.Sprintf("The %s needs: %s.", obj.Name, obj.Requires),
		}, nil
	}

	if obj.Type == InteractableEnemy {
		g.combat = newCombat(room.ID, obj)
		g.logger.Debug("Combat started", "enemy", obj.Name, "room", room.ID)
		return &InteractResult{
			Combat:    true,
			Narrative: obj.Result.Narrative,
			Message:   fmt.Sprintf("The %s attacks!", obj.Name),
		}, nil
	}

	if obj.Requires != "" {
		if item, ok := g.store.MatchingItem(obj.Requires); ok && item.Consumable() {
			g.store.RemoveItems([]string{item.Name})
		}
	}

	res := &InteractResult{Narrative: obj.Result.Narrative}
	if len(obj.Result.Items) > 0 {
		g.store.AddItems(obj.Result.Items)
	}
	if len(obj.Result.StatUpdates) > 0 {
		g.store.UpdateStats(obj.Result.StatUpdates)
	}

	if obj.Result.RemoveAfter || len(obj.Result.Items) > 0 || obj.Type == InteractableLoot {
		g.reg.update(room.ID, func(r *Room) {
			if i := r.findInteractable(id); i >= 0 {
				r.Interactables = append(r.Interactables[:i], r.Interactables[i+1:]...)
			}
		})
		res.Removed = true
	}
	return res, nil
}

// InteractableByName finds an interactable in the current room whose
// name contains the given text, case-insensitively. Lets free-typed
// actions like "open the supply locker" land on the object.
func (g *Generator) InteractableByName(text string) (string, bool) {
	room := g.Current()
	if room == nil {
		return "", false
	}
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return "", false
	}
	for _, obj := range room.Interactables {
		if strings.Contains(needle, strings.ToLower(obj.Name)) ||
			strings.Contains(strings.ToLower(obj.Name), needle) {
			return obj.ID, true
		}
	}
	return "", false
}
