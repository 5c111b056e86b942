package dungeon

import (
	"sort"
	"sync"
)

// Registry is the append-only union of every room received so far.
// Rooms are never removed; interactable resolution and exit unlocks
// mutate rooms in place under the registry lock.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[string]*Room
	visited map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:   make(map[string]*Room),
		visited: make(map[string]bool),
	}
}

// Get returns the room with the given id.
func (r *Registry) Get(id string) (*Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[id]
	return room, ok
}

// Put stores a room. An existing room with the same id is kept; the
// registry is a union, not a replace.
func (r *Registry) Put(room *Room) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[room.ID]; ok {
		return false
	}
	r.rooms[room.ID] = room
	return true
}

// MarkVisited flags a room as entered at least once.
func (r *Registry) MarkVisited(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[id]; ok {
		r.visited[id] = true
	}
}

func (r *Registry) Visited(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.visited[id]
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Unvisited counts known rooms not yet entered. The prefetch trigger
// watches this number.
func (r *Registry) Unvisited() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms) - len(r.visited)
}

// Rooms returns a deep copy of every known room, id-sorted for stable
// iteration. Copies keep callers (the autosave marshaller in
// particular) from racing in-place room mutations.
func (r *Registry) Rooms() []*Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// VisitedIDs returns the sorted ids of entered rooms.
func (r *Registry) VisitedIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.visited))
	for id := range r.visited {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// update runs fn against a room under the write lock.
func (r *Registry) update(id string, fn func(*Room)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return false
	}
	fn(room)
	return true
}
