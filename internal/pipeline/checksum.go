package pipeline

import (
	"context"

	"dirmerge/internal/diff"
	"dirmerge/internal/filediff"
	"dirmerge/internal/logger"
	"dirmerge/internal/model"

	"go.uber.org/zap"
)

// HashProcessor hashes every version of a file. Identical files, binaries and
// files missing from local or remote are classified here as a whole; the rest
// is left to ContentProcessor.
type HashProcessor struct{}

func (HashProcessor) Info() Info {
	return Info{Name: "checksum", Stage: Diff, Modes: model.MaskAll, Priority: 10}
}

func (HashProcessor) CheckStatus(n *model.Node) bool {
	return DefaultCheck(n) && !n.IsDir && n.Status == model.StatusInitial
}

func (HashProcessor) Process(_ context.Context, t *model.Tree, n *model.Node) error {
	for _, r := range model.Roles {
		if !n.Location.Has(r) {
			continue
		}

		sum, err := filediff.Hash(t.AbsPath(n, r))
		if err != nil {
			return &model.NotFoundError{Role: r, Kind: model.KindFile, Path: t.AbsPath(n, r), Err: err}
		}
		n.Hashes[r] = sum
	}

	if n.Location == n.Mode.Roots() && allEqual(n) {
		n.Differences = diff.DiffAllSame
		n.SetStatus(model.StatusDiffed)
		logger.Log.Debug("checksum unchanged",
			zap.String("path", n.Path))
		return nil
	}

	if n.FileType != model.FileBinary && n.Location.Has(model.Local) && n.Location.Has(model.Remote) {
		return nil
	}

	n.Differences = classify(n)
	n.SetStatus(model.StatusDiffed)
	return nil
}

func allEqual(n *model.Node) bool {
	first := true
	var sum uint64
	for _, r := range model.Roles {
		if !n.Location.Has(r) {
			continue
		}
		if first {
			sum, first = n.Hashes[r], false
		} else if n.Hashes[r] != sum {
			return false
		}
	}
	return true
}

// same reports whether two versions match. Two missing versions match.
func same(n *model.Node, a, b model.Role) bool {
	ha, hb := n.Location.Has(a), n.Location.Has(b)
	if !ha || !hb {
		return ha == hb
	}
	return n.Hashes[a] == n.Hashes[b]
}

func classify(n *model.Node) diff.Differences {
	if n.Mode == model.TwoWay {
		if same(n, model.Local, model.Remote) {
			return diff.DiffAllSame
		}
		return diff.DiffAllDifferent
	}

	bl := same(n, model.Base, model.Local)
	br := same(n, model.Base, model.Remote)
	lr := same(n, model.Local, model.Remote)

	switch {
	case bl && br:
		return diff.DiffAllSame
	case bl:
		return diff.DiffBaseLocalSame
	case br:
		return diff.DiffBaseRemoteSame
	case lr:
		return diff.DiffLocalRemoteSame
	default:
		return diff.DiffAllDifferent
	}
}
