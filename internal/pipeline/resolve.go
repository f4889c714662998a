package pipeline

import (
	"context"
	"sync"

	"dirmerge/internal/conflict"
	"dirmerge/internal/diff"
	"dirmerge/internal/model"
)

// AutoResolveProcessor assigns the obvious action to one-sided and identical
// changes and the configured strategy's action to real conflicts.
type AutoResolveProcessor struct {
	resolver *conflict.Resolver
}

func NewAutoResolveProcessor(strategy conflict.Strategy) *AutoResolveProcessor {
	return &AutoResolveProcessor{resolver: conflict.NewResolver(strategy)}
}

func (a *AutoResolveProcessor) Info() Info {
	return Info{Name: "autoresolve", Stage: InteractiveResolve, Modes: model.MaskAll, Priority: 10}
}

func (a *AutoResolveProcessor) CheckStatus(n *model.Node) bool {
	if !DefaultCheck(n) || n.IsDir {
		return false
	}
	if n.Mode == model.TwoWay {
		if n.Status != model.StatusDiffed {
			return false
		}
		return n.Differences != diff.DiffAllSame || (n.TwoWay != nil && n.TwoWay.NewlineDiffers())
	}
	return n.Status == model.StatusConflicting
}

func (a *AutoResolveProcessor) Process(_ context.Context, _ *model.Tree, n *model.Node) error {
	resolved := a.resolver.Resolve(n)
	if n.Mode == model.TwoWay {
		return nil
	}

	if resolved {
		n.SetStatus(model.StatusResolved)
	} else {
		n.SetStatus(model.StatusHasConflicts)
	}
	return nil
}

// Chooser picks an action for a conflict. item indexes the node's three-way
// items, or is -1 when the file is decided as a whole. Returning ErrAborted
// stops the stage.
type Chooser interface {
	Choose(ctx context.Context, t *model.Tree, n *model.Node, item int) (diff.Action, error)
}

type ChooserFunc func(ctx context.Context, t *model.Tree, n *model.Node, item int) (diff.Action, error)

func (f ChooserFunc) Choose(ctx context.Context, t *model.Tree, n *model.Node, item int) (diff.Action, error) {
	return f(ctx, t, n, item)
}

// InteractiveProcessor hands the conflicts left by the automatic pass to a
// Chooser, one at a time.
type InteractiveProcessor struct {
	mu      sync.Mutex
	chooser Chooser
}

func NewInteractiveProcessor(chooser Chooser) *InteractiveProcessor {
	return &InteractiveProcessor{chooser: chooser}
}

func (i *InteractiveProcessor) Info() Info {
	return Info{Name: "interactive", Stage: InteractiveResolve, Modes: model.MaskThreeWay, Priority: 20}
}

func (i *InteractiveProcessor) CheckStatus(n *model.Node) bool {
	return DefaultCheck(n) && !n.IsDir && n.Status == model.StatusHasConflicts
}

func (i *InteractiveProcessor) Process(ctx context.Context, t *model.Tree, n *model.Node) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if n.ThreeWay != nil {
		for idx := range n.ThreeWay.Items {
			if n.ThreeWay.Items[idx].Resolved() {
				continue
			}
			action, err := i.chooser.Choose(ctx, t, n, idx)
			if err != nil {
				return err
			}
			n.ThreeWay.Items[idx].Action = action
		}
	} else if n.Unresolved() > 0 {
		action, err := i.chooser.Choose(ctx, t, n, -1)
		if err != nil {
			return err
		}
		n.Action = action
	}

	if n.Unresolved() == 0 {
		n.SetStatus(model.StatusResolved)
	}
	return nil
}
