package state

import (
	"strings"
	"sync"
	"time"

	"github.com/glitchtale/engine/pkg/chat"
)

// Store owns a GameState and serializes all mutations behind one
// mutex. The generator's background fetch and the foreground action
// cycle can both want to merge into the same state, so every write
// goes through here.
//
// Listeners registered via Subscribe fire after each committed
// mutation; the persistence layer uses this for autosave and a UI can
// use it to re-render.
type Store struct {
	mu        sync.Mutex
	gs        *GameState
	listeners []func()
}

// NewStore wraps a fresh GameState for the given genre.
func NewStore(genre string) *Store {
	return &Store{gs: NewGameState(genre)}
}

// Subscribe registers a change listener. Listeners are invoked
// synchronously after each mutation, outside the store lock.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.Lock()
	fns := append([]func(){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// mutate runs fn under the lock, stamps UpdatedAt and enforces the
// terminal-health rule, then notifies listeners.
func (s *Store) mutate(fn func(gs *GameState)) {
	s.mu.Lock()
	fn(s.gs)
	if s.gs.Stats.Depleted(HealthStat) {
		s.gs.GameOver = true
	}
	s.gs.UpdatedAt = time.Now()
	s.mu.Unlock()
	s.notify()
}

// SetStats replaces the stat map wholesale (SET semantics). Values are
// clamped into [StatMin, StatMax].
func (s *Store) SetStats(stats Stats) {
	s.mutate(func(gs *GameState) {
		gs.Stats = stats.Clamped()
	})
}

// UpdateStats applies signed deltas (UPDATE semantics). Unknown keys
// become new stat entries; every result is clamped.
func (s *Store) UpdateStats(deltas map[string]int) {
	if len(deltas) == 0 {
		return
	}
	s.mutate(func(gs *GameState) {
		if gs.Stats == nil {
			gs.Stats = make(Stats)
		}
		gs.Stats.ApplyDelta(deltas)
	})
}

// SetInventory replaces the inventory wholesale (SET semantics).
func (s *Store) SetInventory(items Inventory) {
	s.mutate(func(gs *GameState) {
		gs.Inventory = items.Normalize()
	})
}

// AddItems merges items into the inventory by name.
func (s *Store) AddItems(items []Item) {
	if len(items) == 0 {
		return
	}
	s.mutate(func(gs *GameState) {
		for _, it := range items {
			gs.Inventory = gs.Inventory.Add(it)
		}
	})
}

// RemoveItems decrements one unit per named item. Absent names are
// no-ops.
func (s *Store) RemoveItems(names []string) {
	if len(names) == 0 {
		return
	}
	s.mutate(func(gs *GameState) {
		for _, name := range names {
			gs.Inventory = gs.Inventory.Remove(name)
		}
	})
}

// SetQuest overwrites the current objective wholesale.
func (s *Store) SetQuest(quest string) {
	s.mutate(func(gs *GameState) {
		gs.Quest = quest
	})
}

// AppendSummary appends narrative summary text unless an equivalent
// fragment is already present (substring containment in either
// direction).
func (s *Store) AppendSummary(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	s.mutate(func(gs *GameState) {
		if strings.Contains(gs.Summary, text) || (gs.Summary != "" && strings.Contains(text, gs.Summary)) {
			gs.Summary = longer(gs.Summary, text)
			return
		}
		if gs.Summary == "" {
			gs.Summary = text
			return
		}
		gs.Summary = gs.Summary + " " + text
	})
}

func longer(a, b string) string {
	if len(b) > len(a) {
		return b
	}
	return a
}

// SetEnvironmentTag records the ambient environment descriptor.
func (s *Store) SetEnvironmentTag(tag string) {
	if tag == "" {
		return
	}
	s.mutate(func(gs *GameState) {
		gs.EnvironmentTag = tag
	})
}

// SetGameOver marks the session terminal. There is no way to unset it
// short of Reset.
func (s *Store) SetGameOver() {
	s.mutate(func(gs *GameState) {
		gs.GameOver = true
	})
}

// Append adds a message to the history. History is append-only.
func (s *Store) Append(msg chat.Message) {
	s.mutate(func(gs *GameState) {
		gs.History = append(gs.History, msg)
	})
}

// Reset discards the session and starts over in the given genre. The
// session keeps its ID so persistence keys stay stable.
func (s *Store) Reset(genre string) {
	s.mutate(func(gs *GameState) {
		fresh := NewGameState(genre)
		fresh.ID = gs.ID
		fresh.CreatedAt = gs.CreatedAt
		*gs = *fresh
	})
}

// Restore replaces the whole state from a validated save. The caller
// is responsible for having validated doc fields; Restore itself is
// atomic.
func (s *Store) Restore(gs *GameState) {
	s.mutate(func(cur *GameState) {
		*cur = *gs.Clone()
	})
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() *GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gs.Clone()
}

// GameOver reports whether the session has ended.
func (s *Store) GameOver() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gs.GameOver
}

// Genre returns the active genre key.
func (s *Store) Genre() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gs.Genre
}

// HasItemMatching reports whether any inventory item name contains the
// fragment, case-insensitive.
func (s *Store) HasItemMatching(fragment string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gs.Inventory.FindMatching(fragment) >= 0
}

// MatchingItem returns a copy of the first inventory item whose name
// contains the fragment, case-insensitive.
func (s *Store) MatchingItem(fragment string) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.gs.Inventory.FindMatching(fragment)
	if i < 0 {
		return Item{}, false
	}
	return s.gs.Inventory[i], true
}
