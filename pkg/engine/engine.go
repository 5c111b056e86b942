// Package engine orchestrates one action→response→state-update cycle:
// it routes player input to the canned opening table, the local
// dungeon, or the generative backend, and applies the validated
// result to the state store in a fixed order.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/glitchtale/engine/pkg/actor"
	"github.com/glitchtale/engine/pkg/chat"
	"github.com/glitchtale/engine/pkg/dungeon"
	"github.com/glitchtale/engine/pkg/narrative"
	"github.com/glitchtale/engine/pkg/state"
	"github.com/glitchtale/engine/pkg/textfilter"
)

// Phase is the action cycle state. Exactly one cycle runs at a time;
// a second submission while off Idle is rejected, not queued.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseAwaiting   Phase = "awaiting_response"
	PhaseApplying   Phase = "applying"
)

// Submission rejections. These are entry no-ops, not failures.
var (
	ErrBlankAction = errors.New("action is blank")
	ErrBusy        = errors.New("an action is already in flight")
	ErrGameOver    = errors.New("the game is over")
)

// DefaultRequestTimeout bounds one backend call. The backend itself
// has no cancellation primitive, so the cycle must not wait forever.
const DefaultRequestTimeout = 60 * time.Second

// flashDuration is how long an outcome flash stays lit.
const flashDuration = time.Second

// Backend generates one raw model reply for a prompt. Implementations
// live in internal/services; tests plug a canned one.
type Backend interface {
	GenerateResponse(ctx context.Context, messages []chat.PromptMessage) (string, error)
}

// BackendError is a failed generation request carrying a display
// category (invalid key, quota exceeded, server error, ...).
type BackendError interface {
	error
	Category() string
}

// Engine runs the per-session action cycle against one state store.
type Engine struct {
	store   *state.Store
	backend Backend
	logger  *slog.Logger
	norm    *textfilter.Normalizer
	timeout time.Duration

	mu        sync.Mutex
	phase     Phase
	choices   []narrative.Choice
	flash     narrative.Outcome
	flashTmr  *time.Timer
	dungeon   *dungeon.Generator
	character *actor.Character

	onPhase func(Phase)
	onFlash func(narrative.Outcome)
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout overrides the backend request timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithPhaseListener registers a callback fired on phase transitions.
func WithPhaseListener(fn func(Phase)) Option {
	return func(e *Engine) { e.onPhase = fn }
}

// WithFlashListener registers a callback fired when the outcome flash
// lights or clears (empty outcome means cleared).
func WithFlashListener(fn func(narrative.Outcome)) Option {
	return func(e *Engine) { e.onFlash = fn }
}

func New(store *state.Store, backend Backend, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		store:   store,
		backend: backend,
		logger:  logger,
		norm:    textfilter.NewNormalizer(),
		timeout: DefaultRequestTimeout,
		phase:   PhaseIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store exposes the session's state store.
func (e *Engine) Store() *state.Store { return e.store }

// Phase returns the current cycle phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Busy reports whether an action cycle is in flight.
func (e *Engine) Busy() bool { return e.Phase() != PhaseIdle }

// Flash returns the currently lit outcome flash, if any.
func (e *Engine) Flash() narrative.Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.flash
}

// Character returns the player character, if one was supplied at
// initialization.
func (e *Engine) Character() *actor.Character {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.character
}

// Dungeon returns the dungeon generator, or nil outside RPG mode.
func (e *Engine) Dungeon() *dungeon.Generator {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dungeon
}

// Choices returns the current action list. In RPG mode the list is
// derived from the dungeon on every call; otherwise it is whatever the
// last response carried.
func (e *Engine) Choices() []narrative.Choice {
	e.mu.Lock()
	d := e.dungeon
	stored := e.choices
	e.mu.Unlock()

	if d != nil {
		return d.Choices()
	}
	out := make([]narrative.Choice, len(stored))
	copy(out, stored)
	return out
}

func (e *Engine) setPhase(p Phase) {
	e.mu.Lock()
	e.phase = p
	fn := e.onPhase
	e.mu.Unlock()
	if fn != nil {
		fn(p)
	}
}

// flashOutcome lights the outcome flash and schedules its auto-clear.
func (e *Engine) flashOutcome(o narrative.Outcome) {
	e.mu.Lock()
	e.flash = o
	if e.flashTmr != nil {
		e.flashTmr.Stop()
	}
	e.flashTmr = time.AfterFunc(flashDuration, func() {
		e.mu.Lock()
		e.flash = ""
		fn := e.onFlash
		e.mu.Unlock()
		if fn != nil {
			fn("")
		}
	})
	fn := e.onFlash
	e.mu.Unlock()
	if fn != nil {
		fn(o)
	}
}
