package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"time"

	"dirmerge/internal/logger"
	"dirmerge/internal/model"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Stage int

const (
	PreProcess Stage = iota
	Diff
	InteractiveResolve
	Merge

	numStages
)

// Stages lists every stage in execution order.
var Stages = []Stage{PreProcess, Diff, InteractiveResolve, Merge}

func (s Stage) String() string {
	switch s {
	case PreProcess:
		return "PreProcess"
	case Diff:
		return "Diff"
	case InteractiveResolve:
		return "InteractiveResolve"
	case Merge:
		return "Merge"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// ErrAborted stops a stage. A processor returns it when the operator gives up.
var ErrAborted = errors.New("aborted")

// Info describes where a processor runs.
type Info struct {
	Name     string
	Stage    Stage
	Modes    model.ModeMask
	Priority int
}

type Processor interface {
	Info() Info
	// CheckStatus is the guard deciding whether Process runs on n.
	CheckStatus(n *model.Node) bool
	Process(ctx context.Context, t *model.Tree, n *model.Node) error
}

// DefaultCheck rejects ignored and failed nodes.
func DefaultCheck(n *model.Node) bool {
	return !n.Status.Terminal()
}

type PriorityCollisionError struct {
	Stage    Stage
	Priority int
	First    string
	Second   string
}

func (e *PriorityCollisionError) Error() string {
	return fmt.Sprintf("stage %s: processors %s and %s share priority %d", e.Stage, e.First, e.Second, e.Priority)
}

type Pipeline struct {
	workers int
	stages  [numStages][]Processor
}

// New registers procs, ordered by priority within their stage.
func New(workers int, procs ...Processor) (*Pipeline, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	p := &Pipeline{workers: workers}
	for _, proc := range procs {
		info := proc.Info()
		if info.Stage < 0 || info.Stage >= numStages {
			return nil, fmt.Errorf("processor %s: unknown stage %d", info.Name, int(info.Stage))
		}

		for _, other := range p.stages[info.Stage] {
			oi := other.Info()
			if oi.Priority == info.Priority && oi.Modes&info.Modes != 0 {
				return nil, &PriorityCollisionError{
					Stage:    info.Stage,
					Priority: info.Priority,
					First:    oi.Name,
					Second:   info.Name,
				}
			}
		}
		p.stages[info.Stage] = append(p.stages[info.Stage], proc)
	}

	for i := range p.stages {
		slices.SortStableFunc(p.stages[i], func(a, b Processor) int {
			return a.Info().Priority - b.Info().Priority
		})
	}

	return p, nil
}

// Processors returns the processors of stage s that apply to mode.
func (p *Pipeline) Processors(s Stage, mode model.Mode) []Processor {
	var out []Processor
	for _, proc := range p.stages[s] {
		if proc.Info().Modes.Has(mode) {
			out = append(out, proc)
		}
	}
	return out
}

// Run applies every stage to t.
func (p *Pipeline) Run(ctx context.Context, t *model.Tree) error {
	return p.RunStages(ctx, t, Stages...)
}

// RunStages applies the given stages in order. Each stage finishes on the
// whole tree before the next one starts. Per-node failures are recorded on
// the nodes; the returned error is reserved for cancellation.
func (p *Pipeline) RunStages(ctx context.Context, t *model.Tree, stages ...Stage) error {
	for _, s := range stages {
		procs := p.Processors(s, t.Mode)
		if len(procs) == 0 {
			continue
		}

		started := time.Now()
		logger.Log.Info("stage started",
			zap.Stringer("stage", s),
			zap.Int("processors", len(procs)))

		if err := p.runStage(ctx, t, procs); err != nil {
			logger.Log.Warn("stage stopped",
				zap.Stringer("stage", s),
				zap.Error(err))
			return fmt.Errorf("stage %s: %w", s, err)
		}

		logger.Log.Info("stage finished",
			zap.Stringer("stage", s),
			zap.Duration("elapsed", time.Since(started)))
	}

	return nil
}

type stageRun struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	tree   *model.Tree
	procs  []Processor
	g      *errgroup.Group
}

func (p *Pipeline) runStage(ctx context.Context, t *model.Tree, procs []Processor) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	g := new(errgroup.Group)
	g.SetLimit(p.workers)

	r := &stageRun{ctx: ctx, cancel: cancel, tree: t, procs: procs, g: g}
	r.visitDir(0)
	_ = g.Wait()

	return context.Cause(ctx)
}

func (r *stageRun) visitDir(id model.NodeID) {
	if r.ctx.Err() != nil {
		return
	}

	dir := r.tree.Node(id)
	r.visit(dir)

	for _, f := range dir.Files {
		if r.ctx.Err() != nil {
			return
		}
		r.visit(r.tree.Node(f))
	}

	for _, d := range dir.Dirs {
		task := func() error {
			r.visitDir(d)
			return nil
		}
		if !r.g.TryGo(task) {
			_ = task()
		}
	}
}

// visit runs every processor on n. Once started, a node is finished even if
// the stage gets cancelled meanwhile. After a failure only processors whose
// guard accepts failed nodes still run.
func (r *stageRun) visit(n *model.Node) {
	for _, proc := range r.procs {
		if !proc.CheckStatus(n) {
			continue
		}

		err := r.process(proc, n)
		if err == nil {
			continue
		}

		if errors.Is(err, ErrAborted) {
			r.cancel(ErrAborted)
			return
		}
		if r.ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			return
		}

		n.Fail(err)
		logger.Log.Warn("node failed",
			zap.String("path", n.Path),
			zap.String("processor", proc.Info().Name),
			zap.Error(err))
	}
}

func (r *stageRun) process(proc Processor, n *model.Node) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%s: panic: %v", proc.Info().Name, rec)
		}
	}()

	return proc.Process(r.ctx, r.tree, n)
}
