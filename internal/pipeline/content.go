package pipeline

import (
	"context"

	"dirmerge/internal/diff"
	"dirmerge/internal/filediff"
	"dirmerge/internal/model"
)

// ContentProcessor runs the line diff on text files present on both local
// and remote. A missing base is diffed as an empty file.
type ContentProcessor struct {
	opts diff.Options
}

func NewContentProcessor(opts diff.Options) *ContentProcessor {
	return &ContentProcessor{opts: opts}
}

func (c *ContentProcessor) Info() Info {
	return Info{Name: "content", Stage: Diff, Modes: model.MaskAll, Priority: 20}
}

func (c *ContentProcessor) CheckStatus(n *model.Node) bool {
	return DefaultCheck(n) &&
		!n.IsDir &&
		n.Status == model.StatusInitial &&
		n.Differences != diff.DiffAllSame &&
		n.FileType != model.FileBinary &&
		n.Location.Has(model.Local) &&
		n.Location.Has(model.Remote)
}

func (c *ContentProcessor) Process(_ context.Context, t *model.Tree, n *model.Node) error {
	local, remote := t.AbsPath(n, model.Local), t.AbsPath(n, model.Remote)

	if n.Mode == model.TwoWay {
		res, err := filediff.Compare(c.opts, local, remote)
		if err != nil {
			return err
		}
		n.TwoWay = res
		n.Differences = res.Differences()
		n.SetStatus(model.StatusDiffed)
		return nil
	}

	var base string
	if n.Location.Has(model.Base) {
		base = t.AbsPath(n, model.Base)
	}

	res, err := filediff.Compare3(c.opts, base, local, remote)
	if err != nil {
		return err
	}
	n.ThreeWay = res
	n.Differences = res.Differences()
	n.SetStatus(model.StatusDiffed)
	return nil
}
