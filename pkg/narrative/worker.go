package narrative

import (
	"log/slog"

	"github.com/glitchtale/engine/pkg/state"
)

// Worker applies one validated Response to the state store in the
// contract-defined order: stats, inventory, quest, summary,
// environment tag, terminal flag. History and choice-list effects stay
// with the action processor.
type Worker struct {
	store  *state.Store
	resp   *Response
	logger *slog.Logger
}

// NewWorker creates a worker for one response application.
func NewWorker(store *state.Store, resp *Response, logger *slog.Logger) *Worker {
	return &Worker{
		store:  store,
		resp:   resp,
		logger: logger,
	}
}

// Apply commits the response's state effects. SET fields take
// precedence over their UPDATE counterparts when both are present.
func (w *Worker) Apply() {
	if w.resp == nil {
		return
	}

	switch {
	case w.resp.StatsSet != nil:
		w.store.SetStats(w.resp.StatsSet)
	case len(w.resp.StatUpdates) > 0:
		w.store.UpdateStats(w.resp.StatUpdates)
	}

	switch {
	case w.resp.InventorySet != nil:
		w.store.SetInventory(state.Inventory(w.resp.InventorySet))
	case w.resp.InventoryUpdates != nil:
		if len(w.resp.InventoryUpdates.Add) > 0 {
			w.store.AddItems(w.resp.InventoryUpdates.Add)
		}
		if len(w.resp.InventoryUpdates.Remove) > 0 {
			w.store.RemoveItems(w.resp.InventoryUpdates.Remove)
		}
	}

	if w.resp.QuestUpdate != "" {
		w.store.SetQuest(w.resp.QuestUpdate)
	}
	if w.resp.SummaryUpdate != "" {
		w.store.AppendSummary(w.resp.SummaryUpdate)
	}
	if tag := w.resp.EnvironmentTag(); tag != "" {
		w.store.SetEnvironmentTag(tag)
	}
	if w.resp.GameOver {
		w.logger.Info("Backend declared game over")
		w.store.SetGameOver()
	}
}
