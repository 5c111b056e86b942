package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/glitchtale/engine/pkg/actor"
	"github.com/glitchtale/engine/pkg/chat"
	"github.com/glitchtale/engine/pkg/dungeon"
	"github.com/glitchtale/engine/pkg/narrative"
)

// Submit runs one full action cycle. It mutates the store and history
// as side effects; the returned error only covers entry rejections and
// initialization failures. Backend failures are converted into
// system-role messages and leave the game playable.
func (e *Engine) Submit(ctx context.Context, input string) error {
	action := strings.TrimSpace(input)
	if action == "" {
		return ErrBlankAction
	}

	e.mu.Lock()
	if e.phase != PhaseIdle {
		e.mu.Unlock()
		return ErrBusy
	}
	e.phase = PhaseSubmitting
	e.mu.Unlock()
	defer e.setPhase(PhaseIdle)

	// Initialization restarts the session and is the one action still
	// allowed after game over.
	if narrative.IsInit(action) {
		return e.initialize(action)
	}
	if e.store.GameOver() {
		return ErrGameOver
	}

	// The player sees their literal input even when a slash command
	// substitutes what is actually sent.
	e.store.Append(chat.NewMessage(chat.RoleUser, action))

	e.mu.Lock()
	d := e.dungeon
	e.mu.Unlock()
	if d != nil {
		if handled := e.localAction(ctx, d, action); handled {
			return nil
		}
	}

	return e.roundTrip(ctx, action)
}

// roundTrip sends one action to the backend and applies the reply.
func (e *Engine) roundTrip(ctx context.Context, action string) error {
	sent := ExpandCommand(action)

	e.setPhase(PhaseAwaiting)
	rctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	prompt := narrative.BuildActionPrompt(e.store.Snapshot(), sent, e.promptExtra())
	raw, err := e.backend.GenerateResponse(rctx, prompt)
	if err != nil {
		e.reportFailure(err)
		return nil
	}

	e.setPhase(PhaseApplying)
	resp, perr := narrative.Interpret(raw)
	if perr != nil {
		e.logger.Warn("Recovered from malformed reply", "error", perr)
	}
	e.apply(resp)
	return nil
}

// initialize answers the init sentinel from the canned opening table.
// No backend call, no user-visible echo of the sentinel.
func (e *Engine) initialize(action string) error {
	genre, charBlob, ok := narrative.ParseInit(action)
	if !ok {
		return fmt.Errorf("malformed initialization action")
	}
	resp, err := narrative.Opening(genre)
	if err != nil {
		return err
	}

	var character *actor.Character
	if spec, err := actor.ParseSpec(charBlob); err != nil {
		return err
	} else if spec != nil {
		character, err = actor.NewCharacter(spec)
		if err != nil {
			return err
		}
	}

	e.store.Reset(genre)

	e.mu.Lock()
	e.character = character
	e.dungeon = nil
	if narrative.IsRPGGenre(genre) && resp.MapData != nil {
		e.dungeon = dungeon.NewGenerator(e, e.store, e.logger)
	}
	d := e.dungeon
	e.mu.Unlock()

	if d != nil {
		if err := d.Start(resp.MapData); err != nil {
			return fmt.Errorf("start opening sector: %w", err)
		}
	}

	e.setPhase(PhaseApplying)
	e.apply(resp)
	e.logger.Info("Session initialized", "genre", genre, "rpg", d != nil)
	return nil
}

// apply commits one validated response to the store, in order: flash,
// state mutations, the AI message, then the choice list.
func (e *Engine) apply(resp *narrative.Response) {
	e.flashOutcome(resp.Outcome)
	narrative.NewWorker(e.store, resp, e.logger).Apply()

	if text := e.norm.CleanNarrative(resp.Narrative); text != "" {
		msg := chat.NewMessage(chat.RoleAI, text)
		msg.VisualEffect = resp.VisualEffect
		e.store.Append(msg)
	}

	e.mu.Lock()
	e.choices = resp.Choices
	e.mu.Unlock()
}

// promptExtra assembles session extras for the system prompt: the
// character line and, in RPG mode, the current room.
func (e *Engine) promptExtra() string {
	e.mu.Lock()
	character := e.character
	d := e.dungeon
	e.mu.Unlock()

	var parts []string
	if line := actor.BuildPrompt(character); line != "" {
		parts = append(parts, line)
	}
	if d != nil {
		if room := d.Current(); room != nil {
			parts = append(parts, "The player is in: "+room.Name+". "+room.Description)
		}
	}
	return strings.Join(parts, "\n")
}

// reportFailure turns a backend error into a system-role message. The
// cycle ends, the game stays playable.
func (e *Engine) reportFailure(err error) {
	category := "network error"
	var be BackendError
	switch {
	case errors.As(err, &be):
		category = be.Category()
	case errors.Is(err, context.DeadlineExceeded):
		category = "timed out"
	}
	e.logger.Error("Backend request failed", "category", category, "error", err)
	e.store.Append(chat.NewMessage(chat.RoleSystem,
		"The narrator is unreachable ("+category+"). Your action was not processed."))
}
