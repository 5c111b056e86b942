package engine

import (
	"github.com/glitchtale/engine/pkg/actor"
	"github.com/glitchtale/engine/pkg/dungeon"
	"github.com/glitchtale/engine/pkg/save"
)

// ExportSave captures the session as a versioned document. Pure and
// synchronous; safe to call mid-session.
func (e *Engine) ExportSave() *save.Document {
	var snap *dungeon.Snapshot
	if d := e.Dungeon(); d != nil {
		snap = d.Snapshot()
	}
	var spec *actor.CharacterSpec
	if c := e.Character(); c != nil {
		spec = c.Spec
	}
	return save.Export(e.store.Snapshot(), snap, spec)
}

// ImportSave replaces the whole session with a decoded document.
// Validation happens before any mutation; a bad document leaves the
// session exactly as it was.
func (e *Engine) ImportSave(raw []byte) error {
	e.mu.Lock()
	if e.phase != PhaseIdle {
		e.mu.Unlock()
		return ErrBusy
	}
	e.mu.Unlock()

	doc, err := save.Decode(raw)
	if err != nil {
		return err
	}

	var character *actor.Character
	if doc.Character != nil {
		character, err = actor.NewCharacter(doc.Character.Clone())
		if err != nil {
			return err
		}
	}

	var d *dungeon.Generator
	if doc.RPGState != nil {
		d = dungeon.NewGenerator(e, e.store, e.logger)
		if err := d.Restore(doc.RPGState); err != nil {
			return err
		}
	}

	e.store.Restore(doc.GameState())
	e.mu.Lock()
	e.dungeon = d
	e.character = character
	e.choices = nil
	e.mu.Unlock()

	e.store.Append(save.RestoreMessage())
	e.logger.Info("Session restored from save", "genre", doc.Genre, "rpg", d != nil)
	return nil
}
