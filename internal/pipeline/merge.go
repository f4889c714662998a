package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dirmerge/internal/conflict"
	"dirmerge/internal/diff"
	"dirmerge/internal/logger"
	"dirmerge/internal/model"
	"dirmerge/internal/util"

	"go.uber.org/zap"
)

type MergeConfig struct {
	// Output receives the merged tree. Empty merges into the local root.
	Output string `mapstructure:"output"`
	Backup bool   `mapstructure:"backup"`
}

// MergeProcessor writes the resolved content of every file.
type MergeProcessor struct {
	cfg MergeConfig
}

func NewMergeProcessor(cfg MergeConfig) *MergeProcessor {
	return &MergeProcessor{cfg: cfg}
}

func (m *MergeProcessor) Info() Info {
	return Info{Name: "merge", Stage: Merge, Modes: model.MaskAll, Priority: 10}
}

func (m *MergeProcessor) CheckStatus(n *model.Node) bool {
	return DefaultCheck(n) && !n.IsDir && n.Status.Mergeable()
}

func (m *MergeProcessor) target(t *model.Tree, n *model.Node) string {
	if m.cfg.Output != "" {
		return filepath.Join(m.cfg.Output, filepath.FromSlash(n.Path))
	}
	return t.AbsPath(n, model.Local)
}

func (m *MergeProcessor) Process(_ context.Context, t *model.Tree, n *model.Node) error {
	dst := m.target(t, n)

	data, keep, err := m.content(t, n)
	if err != nil {
		return err
	}

	if keep {
		err = m.write(dst, data)
	} else {
		err = m.remove(dst)
	}
	if err != nil {
		return err
	}

	n.SetStatus(model.StatusMerged)
	return nil
}

// content returns the merged bytes, or keep=false when the file must not
// exist in the result.
func (m *MergeProcessor) content(t *model.Tree, n *model.Node) ([]byte, bool, error) {
	switch {
	case n.TwoWay != nil:
		local, remote, _, err := readLines(t, n)
		if err != nil {
			return nil, false, err
		}
		merged := diff.Merge(local, remote, n.TwoWay.Items)
		return diff.JoinLines(merged, n.TwoWay.MergedEOL(len(local))), true, nil

	case n.ThreeWay != nil:
		local, remote, base, err := readLines(t, n)
		if err != nil {
			return nil, false, err
		}
		merged, err := diff.Merge3(base, local, remote, n.ThreeWay.Items)
		if err != nil {
			return nil, false, err
		}
		return diff.JoinLines(merged, n.ThreeWay.MergedEOL()), true, nil
	}

	role, err := chosenRole(n)
	if err != nil {
		return nil, false, err
	}
	if !n.Location.Has(role) {
		return nil, false, nil
	}

	data, err := os.ReadFile(t.AbsPath(n, role))
	if err != nil {
		return nil, false, &model.NotFoundError{Role: role, Kind: model.KindFile, Path: t.AbsPath(n, role), Err: err}
	}
	return data, true, nil
}

// chosenRole maps the whole-file action to the version it selects.
func chosenRole(n *model.Node) (model.Role, error) {
	action := n.Action
	if action == diff.ActionDefault && n.Mode == model.ThreeWay {
		action = diff.Item3{Differences: n.Differences}.Effective()
	}

	switch action {
	case diff.ActionApplyRemote:
		return model.Remote, nil
	case diff.ActionRevertToBase:
		if n.Mode == model.TwoWay {
			return 0, fmt.Errorf("revert to base in two-way mode")
		}
		return model.Base, nil
	case diff.ActionApplyLocal:
		return model.Local, nil
	default:
		if n.Mode == model.ThreeWay && n.Differences != diff.DiffAllSame {
			return 0, diff.ErrUnresolved
		}
		return model.Local, nil
	}
}

func readLines(t *model.Tree, n *model.Node) (local, remote, base []string, err error) {
	read := func(r model.Role) ([]string, error) {
		if !n.Location.Has(r) {
			return nil, nil
		}
		data, err := os.ReadFile(t.AbsPath(n, r))
		if err != nil {
			return nil, &model.NotFoundError{Role: r, Kind: model.KindFile, Path: t.AbsPath(n, r), Err: err}
		}
		lines, _ := diff.SplitLines(data)
		return lines, nil
	}

	if local, err = read(model.Local); err != nil {
		return
	}
	if remote, err = read(model.Remote); err != nil {
		return
	}
	if n.Mode == model.ThreeWay {
		base, err = read(model.Base)
	}
	return
}

func (m *MergeProcessor) write(dst string, data []byte) error {
	current, err := os.ReadFile(dst)
	switch {
	case err == nil && bytes.Equal(current, data):
		return nil
	case err == nil && m.cfg.Backup:
		if _, err := conflict.Backup(dst); err != nil {
			return err
		}
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("failed to read %s: %w", dst, err)
	}

	if err := util.AtomicWrite(dst, bytes.NewReader(data)); err != nil {
		return err
	}

	logger.Log.Info("merged",
		zap.String("path", dst),
		zap.Int("bytes", len(data)))
	return nil
}

func (m *MergeProcessor) remove(dst string) error {
	if _, err := os.Stat(dst); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if m.cfg.Backup {
		if _, err := conflict.Backup(dst); err != nil {
			return err
		}
	}

	if err := util.RemoveIfExists(dst); err != nil {
		return err
	}

	logger.Log.Info("removed",
		zap.String("path", dst))
	return nil
}
