package pipeline

import (
	"context"

	"dirmerge/internal/filediff"
	"dirmerge/internal/logger"
	"dirmerge/internal/model"

	"go.uber.org/zap"
)

// BinaryProcessor sniffs file content. A file is binary when any of its
// versions is.
type BinaryProcessor struct {
	ignoreBinary bool
}

func NewBinaryProcessor(ignoreBinary bool) *BinaryProcessor {
	return &BinaryProcessor{ignoreBinary: ignoreBinary}
}

func (b *BinaryProcessor) Info() Info {
	return Info{Name: "binary", Stage: PreProcess, Modes: model.MaskAll, Priority: 20}
}

func (b *BinaryProcessor) CheckStatus(n *model.Node) bool {
	return DefaultCheck(n) && !n.IsDir
}

func (b *BinaryProcessor) Process(_ context.Context, t *model.Tree, n *model.Node) error {
	n.FileType = model.FileText

	for _, r := range model.Roles {
		if !n.Location.Has(r) {
			continue
		}

		bin, err := filediff.IsBinary(t.AbsPath(n, r))
		if err != nil {
			return err
		}
		if bin {
			n.FileType = model.FileBinary
			break
		}
	}

	if n.FileType == model.FileBinary && b.ignoreBinary {
		n.SetStatus(model.StatusIgnored)
		logger.Log.Debug("ignored binary",
			zap.String("path", n.Path))
	}

	return nil
}
