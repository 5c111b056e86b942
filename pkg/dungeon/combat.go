package dungeon

import (
	"fmt"
	"strings"
)

const (
	defaultEnemyHP     = 12
	defaultEnemyDamage = 8
	baseAttackDamage   = 4
	weaponAttackDamage = 8
)

// Combat is one engagement against a room enemy. Enemy health is a
// plain counter; the player's side lives in the stats map.
type Combat struct {
	RoomID     string `json:"room_id"`
	EnemyID    string `json:"enemy_id"`
	EnemyName  string `json:"enemy_name"`
	EnemyHP    int    `json:"enemy_hp"`
	EnemyMaxHP int    `json:"enemy_max_hp"`
	Damage     int    `json:"damage"`
}

func newCombat(roomID string, obj Interactable) *Combat {
	return &Combat{
		RoomID:     roomID,
		EnemyID:    obj.ID,
		EnemyName:  obj.Name,
		EnemyHP:    defaultEnemyHP,
		EnemyMaxHP: defaultEnemyHP,
		Damage:     defaultEnemyDamage,
	}
}

// CombatResult reports one combat round or a flee.
type CombatResult struct {
	Narrative   string
	PlayerDealt int
	EnemyDealt  int
	Victory     bool
	Fled        bool
}

// InCombat reports whether an engagement is active.
func (g *Generator) InCombat() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.combat != nil
}

// ActiveCombat returns a copy of the current engagement, if any.
func (g *Generator) ActiveCombat() (Combat, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.combat == nil {
		return Combat{}, false
	}
	return *g.combat, true
}

// Attack runs one combat round: the player strikes with the given
// bonus, then a surviving enemy counterattacks through the stats map.
// On victory the enemy's loot resolves and the interactable is
// removed from its room.
func (g *Generator) Attack(bonus int) (*CombatResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c := g.combat
	if c == nil {
		return nil, fmt.Errorf("no active combat")
	}

	dealt := baseAttackDamage + bonus
	for _, item := range g.store.Snapshot().Inventory {
		if item.HasTag("weapon") || strings.EqualFold(item.Type, "weapon") {
			dealt = weaponAttackDamage + bonus
			break
		}
	}
	if dealt < 1 {
		dealt = 1
	}
	c.EnemyHP -= dealt

	res := &CombatResult{PlayerDealt: dealt}
	if c.EnemyHP <= 0 {
		res.Victory = true
		res.Narrative = fmt.Sprintf("The %s collapses.", c.EnemyName)
		g.finishCombatLocked(c)
		return res, nil
	}

	res.EnemyDealt = c.Damage
	res.Narrative = fmt.Sprintf("You hit the %s for %d. It strikes back for %d.", c.EnemyName, dealt, c.Damage)
	g.store.UpdateStats(map[string]int{"health": -c.Damage})
	return res, nil
}

// Flee abandons the engagement. The enemy stays in the room.
func (g *Generator) Flee() (*CombatResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.combat == nil {
		return nil, fmt.Errorf("no active combat")
	}
	name := g.combat.EnemyName
	g.combat = nil
	return &CombatResult{
		Fled:      true,
		Narrative: fmt.Sprintf("You back away from the %s.", name),
	}, nil
}

// finishCombatLocked applies the defeated enemy's result payload and
// strips it from the room.
func (g *Generator) finishCombatLocked(c *Combat) {
	g.combat = nil
	g.reg.update(c.RoomID, func(r *Room) {
		if i := r.findInteractable(c.EnemyID); i >= 0 {
			obj := r.Interactables[i]
			if len(obj.Result.Items) > 0 {
				g.store.AddItems(obj.Result.Items)
			}
			if len(obj.Result.StatUpdates) > 0 {
				g.store.UpdateStats(obj.Result.StatUpdates)
			}
			r.Interactables = append(r.Interactables[:i], r.Interactables[i+1:]...)
		}
	})
	g.logger.Debug("Combat won", "enemy", c.EnemyName)
}
