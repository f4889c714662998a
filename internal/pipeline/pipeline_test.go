package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"dirmerge/internal/crawler"
	"dirmerge/internal/diff"
	"dirmerge/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProc struct {
	info  Info
	check func(*model.Node) bool
	fn    func(ctx context.Context, t *model.Tree, n *model.Node) error
}

func (f *fakeProc) Info() Info { return f.info }

func (f *fakeProc) CheckStatus(n *model.Node) bool {
	if f.check != nil {
		return f.check(n)
	}
	return DefaultCheck(n)
}

func (f *fakeProc) Process(ctx context.Context, t *model.Tree, n *model.Node) error {
	if f.fn != nil {
		return f.fn(ctx, t, n)
	}
	return nil
}

func proc(name string, stage Stage, prio int, modes model.ModeMask) *fakeProc {
	return &fakeProc{info: Info{Name: name, Stage: stage, Modes: modes, Priority: prio}}
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(root, 0755))
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
}

func crawl(t *testing.T, mode model.Mode, base, local, remote map[string]string) *model.Tree {
	t.Helper()
	dir := t.TempDir()
	roots := [model.NumRoles]string{
		filepath.Join(dir, "base"),
		filepath.Join(dir, "local"),
		filepath.Join(dir, "remote"),
	}
	writeTree(t, roots[model.Base], base)
	writeTree(t, roots[model.Local], local)
	writeTree(t, roots[model.Remote], remote)

	tree, err := crawler.Crawl(context.Background(), mode, roots, 4)
	require.NoError(t, err)
	return tree
}

func node(t *testing.T, tree *model.Tree, path string) *model.Node {
	t.Helper()
	n, ok := tree.Find(path)
	require.True(t, ok, path)
	return n
}

func TestNew_PriorityCollision(t *testing.T) {
	_, err := New(1,
		proc("first", Diff, 10, model.MaskAll),
		proc("second", Diff, 10, model.MaskThreeWay),
	)

	var pc *PriorityCollisionError
	require.True(t, errors.As(err, &pc))
	assert.Equal(t, Diff, pc.Stage)
	assert.Equal(t, 10, pc.Priority)
	assert.Equal(t, "first", pc.First)
	assert.Equal(t, "second", pc.Second)
}

func TestNew_NoCollision(t *testing.T) {
	p, err := New(1,
		proc("two", Diff, 10, model.MaskTwoWay),
		proc("three", Diff, 10, model.MaskThreeWay),
		proc("pre", PreProcess, 10, model.MaskAll),
		proc("early", Diff, 1, model.MaskAll),
	)
	require.NoError(t, err)

	names := func(ps []Processor) []string {
		var out []string
		for _, p := range ps {
			out = append(out, p.Info().Name)
		}
		return out
	}
	assert.Equal(t, []string{"early", "two"}, names(p.Processors(Diff, model.TwoWay)))
	assert.Equal(t, []string{"early", "three"}, names(p.Processors(Diff, model.ThreeWay)))
}

func TestStandard_NoCollisions(t *testing.T) {
	procs, err := Standard(Settings{}, ChooserFunc(nil), &memStore{}, "run")
	require.NoError(t, err)

	_, err = New(2, procs...)
	assert.NoError(t, err)
}

func TestRun_TraversalOrder(t *testing.T) {
	tree := crawl(t, model.TwoWay, nil,
		map[string]string{"a": "", "b": "", "d1/x": "", "d1/sub/y": "", "d2/z": ""},
		map[string]string{"c": ""},
	)

	type visit struct {
		path string
		proc string
	}
	var mu sync.Mutex
	var visits []visit
	record := func(name string) func(context.Context, *model.Tree, *model.Node) error {
		return func(_ context.Context, _ *model.Tree, n *model.Node) error {
			mu.Lock()
			defer mu.Unlock()
			visits = append(visits, visit{n.Path, name})
			return nil
		}
	}

	second := proc("second", Diff, 20, model.MaskAll)
	second.fn = record("second")
	first := proc("first", Diff, 10, model.MaskAll)
	first.fn = record("first")
	skipped := proc("three-way only", Diff, 30, model.MaskThreeWay)
	skipped.fn = record("skipped")

	p, err := New(3, second, first, skipped)
	require.NoError(t, err)
	require.NoError(t, p.Run(context.Background(), tree))

	index := map[string]int{}
	after := map[string]int{}
	for i, v := range visits {
		assert.NotEqual(t, "skipped", v.proc)
		switch v.proc {
		case "first":
			index[v.path] = i
		case "second":
			after[v.path] = i
		}
	}
	for path, i := range index {
		assert.Less(t, i, after[path], path)
	}
	require.Len(t, index, tree.Len())

	tree.Walk(func(n *model.Node) bool {
		if n.Parent != model.NoNode {
			assert.Less(t, index[tree.Node(n.Parent).Path], index[n.Path], n.Path)
		}
		for _, f := range n.Files {
			for _, d := range n.Dirs {
				assert.Less(t, index[tree.Node(f).Path], index[tree.Node(d).Path])
			}
		}
		return true
	})

	// Root files keep the crawl order.
	assert.Less(t, index["a"], index["b"])
	assert.Less(t, index["b"], index["c"])
}

func TestRun_FaultIsolation(t *testing.T) {
	files := map[string]string{"bad.txt": "1\n", "good.txt": "1\n", "dir/other.txt": "2\n"}
	tree := crawl(t, model.TwoWay, nil, files, files)

	procs, err := Standard(Settings{}, nil, nil, "")
	require.NoError(t, err)

	failing := proc("failing", Diff, 15, model.MaskAll)
	failing.check = func(n *model.Node) bool { return n.Name == "bad.txt" }
	failing.fn = func(context.Context, *model.Tree, *model.Node) error {
		return errors.New("injected")
	}
	panicking := proc("panicking", Diff, 16, model.MaskAll)
	panicking.check = func(n *model.Node) bool { return n.Name == "other.txt" }
	panicking.fn = func(context.Context, *model.Tree, *model.Node) error {
		panic("boom")
	}

	p, err := New(2, append(procs, failing, panicking)...)
	require.NoError(t, err)
	require.NoError(t, p.RunStages(context.Background(), tree, PreProcess, Diff))

	bad := node(t, tree, "bad.txt")
	assert.Equal(t, model.StatusError, bad.Status)
	assert.EqualError(t, bad.Err, "injected")

	good := node(t, tree, "good.txt")
	assert.Equal(t, model.StatusDiffed, good.Status)
	assert.Equal(t, diff.DiffAllSame, good.Differences)

	other := node(t, tree, "dir/other.txt")
	assert.Equal(t, model.StatusError, other.Status)
	assert.ErrorContains(t, other.Err, "panic: boom")

	err = tree.Errors()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.txt: injected")
}

func TestRun_StatusMonotonicity(t *testing.T) {
	files := map[string]string{"keep.txt": "a\n", "skip.log": "a\n", "fail.txt": "a\n"}
	tree := crawl(t, model.TwoWay, nil, files, map[string]string{"keep.txt": "b\n", "skip.log": "b\n"})

	procs, err := Standard(Settings{Filter: FilterConfig{IgnoreList: []string{"*.log"}}}, nil, nil, "")
	require.NoError(t, err)

	failing := proc("failing", PreProcess, 30, model.MaskAll)
	failing.check = func(n *model.Node) bool { return n.Name == "fail.txt" }
	failing.fn = func(context.Context, *model.Tree, *model.Node) error {
		return errors.New("unreadable")
	}

	// A careless processor that tries to move every node on.
	var mu sync.Mutex
	var refused []string
	pusher := proc("pusher", InteractiveResolve, 50, model.MaskAll)
	pusher.check = func(*model.Node) bool { return true }
	pusher.fn = func(_ context.Context, _ *model.Tree, n *model.Node) error {
		if !n.SetStatus(model.StatusResolved) {
			mu.Lock()
			refused = append(refused, n.Path)
			mu.Unlock()
		}
		return nil
	}

	p, err := New(2, append(procs, failing, pusher)...)
	require.NoError(t, err)
	require.NoError(t, p.RunStages(context.Background(), tree, PreProcess, Diff, InteractiveResolve))

	assert.Equal(t, model.StatusIgnored, node(t, tree, "skip.log").Status)
	assert.Equal(t, model.StatusError, node(t, tree, "fail.txt").Status)
	assert.Equal(t, model.StatusResolved, node(t, tree, "keep.txt").Status)
	slices.Sort(refused)
	assert.Equal(t, []string{"fail.txt", "skip.log"}, refused)
}

func TestRun_AbortStopsStage(t *testing.T) {
	base := map[string]string{"c1.txt": "a\n", "c2.txt": "a\n"}
	local := map[string]string{"c1.txt": "b\n", "c2.txt": "b\n"}
	remote := map[string]string{"c1.txt": "c\n", "c2.txt": "c\n"}
	tree := crawl(t, model.ThreeWay, base, local, remote)

	var asked int
	chooser := ChooserFunc(func(context.Context, *model.Tree, *model.Node, int) (diff.Action, error) {
		asked++
		return diff.ActionDefault, ErrAborted
	})

	procs, err := Standard(Settings{}, chooser, nil, "")
	require.NoError(t, err)
	p, err := New(1, procs...)
	require.NoError(t, err)

	err = p.Run(context.Background(), tree)
	require.ErrorIs(t, err, ErrAborted)
	assert.Equal(t, 1, asked)

	// c1 was asked about; c2 was never reached once the stage stopped.
	assert.Equal(t, model.StatusHasConflicts, node(t, tree, "c1.txt").Status)
	assert.Equal(t, model.StatusConflicting, node(t, tree, "c2.txt").Status)

	data, err := os.ReadFile(tree.AbsPath(node(t, tree, "c1.txt"), model.Local))
	require.NoError(t, err)
	assert.Equal(t, "b\n", string(data))
}

func TestRun_AbortLeavesWaitingNodesIntact(t *testing.T) {
	base := map[string]string{"a/c.txt": "a\n", "b/c.txt": "a\n"}
	local := map[string]string{"a/c.txt": "b\n", "b/c.txt": "b\n"}
	remote := map[string]string{"a/c.txt": "c\n", "b/c.txt": "c\n"}
	tree := crawl(t, model.ThreeWay, base, local, remote)

	chooser := ChooserFunc(func(context.Context, *model.Tree, *model.Node, int) (diff.Action, error) {
		time.Sleep(100 * time.Millisecond)
		return diff.ActionDefault, ErrAborted
	})

	procs, err := Standard(Settings{}, chooser, nil, "")
	require.NoError(t, err)
	p, err := New(4, procs...)
	require.NoError(t, err)

	err = p.Run(context.Background(), tree)
	require.ErrorIs(t, err, ErrAborted)

	for _, n := range tree.FileNodes() {
		assert.NotEqual(t, model.StatusError, n.Status, n.Path)
		assert.NoError(t, n.Err, n.Path)
	}
}

func TestRun_ParentCancelled(t *testing.T) {
	files := map[string]string{"a": "1\n"}
	tree := crawl(t, model.TwoWay, nil, files, files)

	procs, err := Standard(Settings{}, nil, nil, "")
	require.NoError(t, err)
	p, err := New(1, procs...)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = p.Run(ctx, tree)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, model.StatusInitial, node(t, tree, "a").Status)
}
