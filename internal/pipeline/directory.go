package pipeline

import (
	"context"

	"dirmerge/internal/model"
)

// DirectoryProcessor marks directories as diffed; their content is judged
// through their children.
type DirectoryProcessor struct{}

func (DirectoryProcessor) Info() Info {
	return Info{Name: "directory", Stage: Diff, Modes: model.MaskAll, Priority: 5}
}

func (DirectoryProcessor) CheckStatus(n *model.Node) bool {
	return DefaultCheck(n) && n.IsDir && n.Status == model.StatusInitial
}

func (DirectoryProcessor) Process(_ context.Context, _ *model.Tree, n *model.Node) error {
	n.SetStatus(model.StatusDiffed)
	return nil
}
