package dungeon

import "fmt"

// Snapshot is the persistable dungeon state: every known room with
// its in-place mutations (solved exits, resolved interactables), the
// visited set, the player's position and the sector address. The
// prefetch cache is deliberately not carried; a restored session
// re-warms it on the next move.
type Snapshot struct {
	Rooms         []*Room  `json:"rooms"`
	Visited       []string `json:"visited"`
	CurrentRoomID string   `json:"current_room_id"`
	Sector        Coord    `json:"sector"`
	Combat        *Combat  `json:"combat,omitempty"`
}

// Snapshot captures the current dungeon state.
func (g *Generator) Snapshot() *Snapshot {
	g.mu.Lock()
	snap := &Snapshot{
		CurrentRoomID: g.currentID,
		Sector:        g.sector,
	}
	if g.combat != nil {
		c := *g.combat
		snap.Combat = &c
	}
	g.mu.Unlock()

	snap.Rooms = g.reg.Rooms()
	snap.Visited = g.reg.VisitedIDs()
	return snap
}

// Restore replaces all dungeon state with a snapshot's. The registry
// is rebuilt from scratch; nothing is merged.
func (g *Generator) Restore(snap *Snapshot) error {
	if snap == nil || len(snap.Rooms) == 0 {
		return fmt.Errorf("empty dungeon snapshot")
	}
	reg := NewRegistry()
	for _, room := range snap.Rooms {
		if room == nil || room.ID == "" {
			return fmt.Errorf("snapshot contains invalid room")
		}
		reg.Put(room)
	}
	if _, ok := reg.Get(snap.CurrentRoomID); !ok {
		return fmt.Errorf("current room %q not in snapshot", snap.CurrentRoomID)
	}
	for _, id := range snap.Visited {
		reg.MarkVisited(id)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.reg = reg
	g.currentID = snap.CurrentRoomID
	g.sector = snap.Sector
	g.unlockedRoomID, g.unlockedDir = "", ""
	g.prefetching = false
	g.prefetched = nil
	if snap.Combat != nil {
		c := *snap.Combat
		g.combat = &c
	} else {
		g.combat = nil
	}
	return nil
}
