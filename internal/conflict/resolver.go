package conflict

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dirmerge/internal/diff"
	"dirmerge/internal/logger"
	"dirmerge/internal/model"

	"go.uber.org/zap"
)

type Strategy string

const (
	StrategyManual Strategy = "MANUAL"
	StrategyLocal  Strategy = "LOCAL"
	StrategyRemote Strategy = "REMOTE"
	StrategyBase   Strategy = "BASE"
)

func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToUpper(s)); st {
	case StrategyManual, StrategyLocal, StrategyRemote, StrategyBase:
		return st, nil
	case "":
		return StrategyManual, nil
	default:
		return "", fmt.Errorf("unknown strategy: %s", s)
	}
}

// Action is the action the strategy assigns to a conflict.
func (s Strategy) Action() diff.Action {
	switch s {
	case StrategyLocal:
		return diff.ActionApplyLocal
	case StrategyRemote:
		return diff.ActionApplyRemote
	case StrategyBase:
		return diff.ActionRevertToBase
	default:
		return diff.ActionDefault
	}
}

type Resolver struct {
	strategy Strategy
}

func NewResolver(strategy Strategy) *Resolver {
	if strategy == "" {
		strategy = StrategyManual
	}

	return &Resolver{strategy: strategy}
}

func (r *Resolver) Strategy() Strategy {
	return r.strategy
}

// Resolve assigns actions to the blocks of n. Blocks changed on one side only,
// or changed identically on both, take the obvious action; real conflicts take
// the strategy's action. It reports whether nothing is left unresolved.
func (r *Resolver) Resolve(n *model.Node) bool {
	if n.Mode == model.TwoWay {
		r.resolveTwoWay(n)
		return true
	}

	if n.ThreeWay != nil {
		items := n.ThreeWay.Items
		for i := range items {
			if items[i].Action != diff.ActionDefault {
				continue
			}
			if items[i].IsConflict() {
				items[i].Action = r.strategy.Action()
			} else {
				items[i].Action = items[i].Effective()
			}
		}
	} else if n.Action == diff.ActionDefault {
		whole := diff.Item3{Differences: n.Differences}
		if whole.IsConflict() {
			n.Action = r.strategy.Action()
		} else {
			n.Action = whole.Effective()
		}
	}

	left := n.Unresolved()
	if left > 0 {
		logger.Log.Warn("conflict left unresolved",
			zap.String("path", n.Path),
			zap.String("strategy", string(r.strategy)),
			zap.Int("unresolved", left))
		return false
	}

	logger.Log.Debug("conflict resolved",
		zap.String("path", n.Path),
		zap.String("strategy", string(r.strategy)))
	return true
}

// resolveTwoWay applies a side-picking strategy to every block. Other
// strategies leave the default of keeping local.
func (r *Resolver) resolveTwoWay(n *model.Node) {
	action := r.strategy.Action()
	if action != diff.ActionApplyLocal && action != diff.ActionApplyRemote {
		return
	}

	if n.TwoWay != nil {
		for i := range n.TwoWay.Items {
			if n.TwoWay.Items[i].Action == diff.ActionDefault {
				n.TwoWay.Items[i].Action = action
			}
		}
		if n.TwoWay.NewlineDiffers() && n.TwoWay.EOLAction == diff.ActionDefault {
			n.TwoWay.EOLAction = action
		}
		return
	}

	if n.Action == diff.ActionDefault && n.Differences == diff.DiffAllDifferent {
		n.Action = action
	}
}

// Backup copies path next to itself with a timestamped conflict suffix and
// returns the copy's path.
func Backup(path string) (string, error) {
	timestamp := time.Now().Format("20060102_150405")
	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]
	backupPath := fmt.Sprintf("%s.conflict_%s%s", base, timestamp, ext)

	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to backup %s: %w", path, err)
	}
	defer src.Close()

	dst, err := os.Create(backupPath)
	if err != nil {
		return "", fmt.Errorf("failed to backup %s: %w", path, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(backupPath)
		return "", fmt.Errorf("failed to backup %s: %w", path, err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("failed to backup %s: %w", path, err)
	}

	logger.Log.Info("conflict backup created",
		zap.String("original", path),
		zap.String("backup", backupPath))

	return backupPath, nil
}
