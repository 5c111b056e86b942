package dungeon

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/glitchtale/engine/pkg/narrative"
	"github.com/glitchtale/engine/pkg/state"
)

// prefetchUnvisitedMax is the unvisited-room count at or below which
// the next sector is generated speculatively in the background.
const prefetchUnvisitedMax = 3

// prefetchTimeout bounds one background generation request.
const prefetchTimeout = 90 * time.Second

// SectorSource produces the next sector's map when the player crosses
// a boundary. The backing implementation asks the model; tests plug a
// canned source.
type SectorSource interface {
	GenerateSector(ctx context.Context, fromRoom *Room, direction string, sector Coord) (*narrative.MapData, string, error)
}

// prefetchedSector is one cached speculative generation result.
type prefetchedSector struct {
	targetID  string
	direction string
	sector    Coord
	data      *narrative.MapData
	narrative string
}

// MoveResult reports the outcome of one movement attempt.
type MoveResult struct {
	Room      *Room  // room entered, nil when blocked
	Narrative string // sector arrival narrative, if a sector was generated
	Blocked   bool
	Message   string // blocked reason or unlock notice
	Unlocked  bool   // a gated exit was solved during this move
	Generated bool   // crossing required (or consumed) a generated sector
}

// Generator owns the explored map: the room registry, the current
// position, sector addressing, and speculative pre-generation of the
// next sector.
type Generator struct {
	mu     sync.Mutex
	reg    *Registry
	source SectorSource
	store  *state.Store
	logger *slog.Logger

	currentID string
	sector    Coord

	// Most recently unlocked exit, shown with an Open label until the
	// player walks through it again.
	unlockedRoomID string
	unlockedDir    string

	prefetching bool
	prefetched  *prefetchedSector

	combat *Combat
}

func NewGenerator(source SectorSource, store *state.Store, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		reg:    NewRegistry(),
		source: source,
		store:  store,
		logger: logger,
	}
}

// Registry exposes the room registry for rendering and persistence.
func (g *Generator) Registry() *Registry { return g.reg }

// Current returns a copy of the occupied room, or nil before Start.
func (g *Generator) Current() *Room {
	g.mu.Lock()
	id := g.currentID
	g.mu.Unlock()
	if id == "" {
		return nil
	}
	room, ok := g.reg.Get(id)
	if !ok {
		return nil
	}
	return room.Clone()
}

// Sector returns the current sector address.
func (g *Generator) Sector() Coord {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sector
}

// Start ingests the opening sector at the grid origin and places the
// player in its entry room.
func (g *Generator) Start(data *narrative.MapData) error {
	if data == nil || len(data.Rooms) == 0 {
		return fmt.Errorf("empty opening map")
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	entry, err := g.ingestLocked(data, "", Coord{})
	if err != nil {
		return err
	}
	g.sector = Coord{}
	g.currentID = entry
	g.reg.MarkVisited(entry)
	return nil
}

// ingestLocked converts, validates and stores one sector's rooms.
// When targetID is non-empty the sector's declared entry-room id, and
// every internal exit reference to it, is rewritten to targetID so the
// dangling exit that triggered generation resolves into the new
// sector. Returns the (possibly rewritten) entry room id.
func (g *Generator) ingestLocked(data *narrative.MapData, targetID string, sector Coord) (string, error) {
	declared := strings.TrimSpace(data.EntryRoomID)
	if declared == "" && len(data.Rooms) > 0 {
		declared = data.Rooms[0].ID
	}
	if declared == "" {
		return "", fmt.Errorf("sector has no entry room")
	}

	entry := declared
	if targetID != "" {
		entry = targetID
	}

	rooms := make([]*Room, 0, len(data.Rooms))
	for _, rd := range data.Rooms {
		room, err := convertRoom(rd, sector)
		if err != nil {
			g.logger.Warn("Dropping invalid room", "error", err)
			continue
		}
		if room.ID == declared {
			room.ID = entry
		}
		for dir, tgt := range room.Exits {
			if tgt == declared {
				room.Exits[dir] = entry
			}
		}
		rooms = append(rooms, room)
	}
	if len(rooms) == 0 {
		return "", fmt.Errorf("sector has no valid rooms")
	}
	found := false
	for _, r := range rooms {
		if r.ID == entry {
			found = true
			break
		}
	}
	if !found {
		return "", fmt.Errorf("entry room %q not present in sector", entry)
	}

	ApplyGridCoordinates(sector, rooms)
	added := 0
	for _, r := range rooms {
		if g.reg.Put(r) {
			added++
		}
	}
	g.logger.Debug("Sector ingested",
		"entry", entry,
		"rooms", added,
		"sector_x", sector.X,
		"sector_y", sector.Y)
	return entry, nil
}

// Move attempts to walk one direction from the current room. Locked
// exits block until the required item is held; the first successful
// pass marks the condition solved for good. A target id unknown to the
// registry is a sector boundary: the cached prefetch result is used
// when it matches, otherwise generation happens inline.
func (g *Generator) Move(ctx context.Context, direction string) (*MoveResult, error) {
	direction = strings.ToLower(strings.TrimSpace(direction))
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.combat != nil {
		return nil, fmt.Errorf("cannot move during combat")
	}
	room, ok := g.reg.Get(g.currentID)
	if !ok {
		return nil, fmt.Errorf("no current room")
	}
	target, ok := room.Exits[direction]
	if !ok {
		return &MoveResult{Blocked: true, Message: "There is no way " + direction + " from here."}, nil
	}

	res := &MoveResult{}
	if requires, locked := room.LockedDirection(direction); locked {
		if !g.store.HasItemMatching(requires) {
			res.Blocked = true
			res.Message = fmt.Sprintf("The way %s is sealed. It needs: %s.", direction, requires)
			return res, nil
		}
		g.reg.update(room.ID, func(r *Room) {
			if r.ExitCondition != nil {
				r.ExitCondition.Solved = true
			}
		})
		res.Unlocked = true
		res.Message = fmt.Sprintf("Using the %s, the way %s opens.", requires, direction)
	}

	if res.Unlocked {
		g.unlockedRoomID, g.unlockedDir = room.ID, direction
	} else if room.ID == g.unlockedRoomID && direction == g.unlockedDir {
		g.unlockedRoomID, g.unlockedDir = "", ""
	}

	if next, ok := g.reg.Get(target); ok {
		g.currentID = next.ID
		g.reg.MarkVisited(next.ID)
		res.Room = next
		g.maybePrefetchLocked(ctx)
		return res, nil
	}

	// Boundary crossing.
	offset, ok := delta(direction)
	if !ok {
		return nil, fmt.Errorf("unknown direction %q", direction)
	}
	nextSector := Coord{g.sector.X + offset.X, g.sector.Y + offset.Y}

	var data *narrative.MapData
	var arrival string
	if pre := g.prefetched; pre != nil && pre.targetID == target {
		data, arrival = pre.data, pre.narrative
		g.prefetched = nil
		g.logger.Debug("Using prefetched sector", "target", target)
	} else {
		// A cached sector for a different boundary stays cached; the
		// player may still cross there later.
		var err error
		data, arrival, err = g.source.GenerateSector(ctx, room, direction, nextSector)
		if err != nil {
			return nil, fmt.Errorf("generate sector: %w", err)
		}
	}

	entry, err := g.ingestLocked(data, target, nextSector)
	if err != nil {
		return nil, fmt.Errorf("ingest sector: %w", err)
	}
	g.sector = nextSector
	g.currentID = entry
	g.reg.MarkVisited(entry)

	next, _ := g.reg.Get(entry)
	res.Room = next
	res.Narrative = arrival
	res.Generated = true
	return res, nil
}

// maybePrefetchLocked fires one speculative generation for the nearest
// dangling exit once the unexplored frontier runs low. A single
// in-flight latch plus the cached-result latch keep it to one request.
func (g *Generator) maybePrefetchLocked(ctx context.Context) {
	if g.prefetching {
		return
	}
	if pre := g.prefetched; pre != nil {
		// An inline generation can create the cached target before the
		// cache is consumed; drop the stale result so the latch frees.
		if _, known := g.reg.Get(pre.targetID); !known {
			return
		}
		g.prefetched = nil
	}
	if g.reg.Unvisited() > prefetchUnvisitedMax {
		return
	}
	from, direction, target := g.danglingExitLocked()
	if target == "" {
		return
	}
	offset, ok := delta(direction)
	if !ok {
		return
	}
	nextSector := Coord{g.sector.X + offset.X, g.sector.Y + offset.Y}

	g.prefetching = true
	g.logger.Debug("Prefetching next sector", "target", target, "direction", direction)

	go func() {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), prefetchTimeout)
		defer cancel()
		data, arrival, err := g.source.GenerateSector(pctx, from, direction, nextSector)

		g.mu.Lock()
		defer g.mu.Unlock()
		g.prefetching = false
		if err != nil {
			g.logger.Warn("Sector prefetch failed", "target", target, "error", err)
			return
		}
		g.prefetched = &prefetchedSector{
			targetID:  target,
			direction: direction,
			sector:    nextSector,
			data:      data,
			narrative: arrival,
		}
	}()
}

// danglingExitLocked finds an exit whose target room is unknown,
// preferring the current room's own exits.
func (g *Generator) danglingExitLocked() (*Room, string, string) {
	if room, ok := g.reg.Get(g.currentID); ok {
		if dir, tgt := firstDangling(g.reg, room); tgt != "" {
			return room, dir, tgt
		}
	}
	for _, room := range g.reg.Rooms() {
		if dir, tgt := firstDangling(g.reg, room); tgt != "" {
			return room, dir, tgt
		}
	}
	return nil, "", ""
}

func firstDangling(reg *Registry, room *Room) (string, string) {
	for _, dir := range []string{"north", "east", "south", "west"} {
		tgt, ok := room.Exits[dir]
		if !ok {
			continue
		}
		if _, known := reg.Get(tgt); !known {
			return dir, tgt
		}
	}
	return "", ""
}
