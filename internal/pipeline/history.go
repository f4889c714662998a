package pipeline

import (
	"context"

	"dirmerge/internal/logger"
	"dirmerge/internal/model"

	"go.uber.org/zap"
)

// HistoryStore persists file outcomes.
type HistoryStore interface {
	Save(ctx context.Context, runID string, n *model.Node) error
}

// HistoryProcessor records the outcome of every file of a merge run, failed
// files included. A failing store never fails the file.
type HistoryProcessor struct {
	store HistoryStore
	runID string
}

func NewHistoryProcessor(store HistoryStore, runID string) *HistoryProcessor {
	return &HistoryProcessor{store: store, runID: runID}
}

func (h *HistoryProcessor) Info() Info {
	return Info{Name: "history", Stage: Merge, Modes: model.MaskAll, Priority: 20}
}

// CheckStatus lets failed files through so they are recorded too.
func (h *HistoryProcessor) CheckStatus(n *model.Node) bool {
	return !n.IsDir && n.Status != model.StatusIgnored && n.Status != model.StatusInitial
}

func (h *HistoryProcessor) Process(ctx context.Context, _ *model.Tree, n *model.Node) error {
	if err := h.store.Save(ctx, h.runID, n); err != nil {
		logger.Log.Warn("failed to record history",
			zap.String("path", n.Path),
			zap.Error(err))
	}
	return nil
}
