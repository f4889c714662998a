package pipeline

import (
	"context"

	"dirmerge/internal/diff"
	"dirmerge/internal/logger"
	"dirmerge/internal/model"

	"go.uber.org/zap"
)

// ConflictProcessor flags three-way files that need a decision: files found
// in exactly two roots, and files with a block changed differently on both
// sides.
type ConflictProcessor struct{}

func (ConflictProcessor) Info() Info {
	return Info{Name: "conflict", Stage: Diff, Modes: model.MaskThreeWay, Priority: 30}
}

func (ConflictProcessor) CheckStatus(n *model.Node) bool {
	return DefaultCheck(n) && !n.IsDir && n.Mode == model.ThreeWay && n.Status == model.StatusDiffed
}

func (ConflictProcessor) Process(_ context.Context, _ *model.Tree, n *model.Node) error {
	conflicting := n.Location.Count() == 2
	if n.ThreeWay != nil {
		conflicting = conflicting || n.ThreeWay.Conflicts() > 0
	} else {
		conflicting = conflicting || n.Differences == diff.DiffAllDifferent
	}
	if !conflicting {
		return nil
	}

	n.SetStatus(model.StatusConflicting)
	logger.Log.Debug("conflict detected",
		zap.String("path", n.Path),
		zap.Stringer("location", n.Location),
		zap.String("differences", string(n.Differences)))
	return nil
}
