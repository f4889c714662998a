package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"dirmerge/internal/conflict"
	"dirmerge/internal/diff"
	"dirmerge/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu      sync.Mutex
	records map[string]model.Status
}

func (m *memStore) Save(_ context.Context, _ string, n *model.Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records == nil {
		m.records = map[string]model.Status{}
	}
	m.records[n.Path] = n.Status
	return nil
}

func run(t *testing.T, tree *model.Tree, s Settings, chooser Chooser, store HistoryStore) {
	t.Helper()
	procs, err := Standard(s, chooser, store, "run-1")
	require.NoError(t, err)
	p, err := New(4, procs...)
	require.NoError(t, err)
	require.NoError(t, p.Run(context.Background(), tree))
}

func readOut(t *testing.T, dir, name string) (string, bool) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if os.IsNotExist(err) {
		return "", false
	}
	require.NoError(t, err)
	return string(data), true
}

func threeWayFixture(t *testing.T) *model.Tree {
	return crawl(t, model.ThreeWay,
		map[string]string{
			"a.txt":        "1\n2\n3\n",
			"conflict.txt": "x\n",
			"del.txt":      "d\n",
			"gone.txt":     "g\n",
			"img.bin":      "\x00old",
			"same.txt":     "s\n",
			"logs/ign.log": "l\n",
		},
		map[string]string{
			"a.txt":        "1 local\n2\n3\n",
			"conflict.txt": "y\n",
			"gone.txt":     "g\n",
			"img.bin":      "\x00old",
			"same.txt":     "s\n",
			"new.txt":      "n\n",
		},
		map[string]string{
			"a.txt":        "1\n2\n3 remote\n",
			"conflict.txt": "z\n",
			"del.txt":      "d\n",
			"img.bin":      "\x00new",
			"same.txt":     "s\n",
			"rnew.txt":     "r\n",
		},
	)
}

func TestThreeWay_EndToEnd(t *testing.T) {
	tree := threeWayFixture(t)
	out := t.TempDir()
	store := &memStore{}

	run(t, tree, Settings{
		Filter: FilterConfig{IgnoreList: []string{"logs"}},
		Merge:  MergeConfig{Output: out},
	}, nil, store)

	a := node(t, tree, "a.txt")
	assert.Equal(t, model.StatusMerged, a.Status)
	require.NotNil(t, a.ThreeWay)
	assert.Len(t, a.ThreeWay.Items, 2)
	content, ok := readOut(t, out, "a.txt")
	require.True(t, ok)
	assert.Equal(t, "1 local\n2\n3 remote\n", content)

	c := node(t, tree, "conflict.txt")
	assert.Equal(t, model.StatusHasConflicts, c.Status)
	assert.Equal(t, 1, c.Unresolved())
	_, ok = readOut(t, out, "conflict.txt")
	assert.False(t, ok)

	del := node(t, tree, "del.txt")
	assert.Equal(t, diff.DiffBaseRemoteSame, del.Differences)
	assert.Equal(t, model.StatusMerged, del.Status)
	_, ok = readOut(t, out, "del.txt")
	assert.False(t, ok)

	same := node(t, tree, "same.txt")
	assert.Equal(t, diff.DiffAllSame, same.Differences)
	content, ok = readOut(t, out, "same.txt")
	require.True(t, ok)
	assert.Equal(t, "s\n", content)

	added := node(t, tree, "new.txt")
	assert.Equal(t, model.OnLocal, added.Location)
	content, ok = readOut(t, out, "new.txt")
	require.True(t, ok)
	assert.Equal(t, "n\n", content)

	gone := node(t, tree, "gone.txt")
	assert.Equal(t, diff.DiffBaseLocalSame, gone.Differences)
	assert.Equal(t, diff.ActionApplyRemote, gone.Action)
	assert.Equal(t, model.StatusMerged, gone.Status)
	_, ok = readOut(t, out, "gone.txt")
	assert.False(t, ok)

	radded := node(t, tree, "rnew.txt")
	assert.Equal(t, model.StatusMerged, radded.Status)
	content, ok = readOut(t, out, "rnew.txt")
	require.True(t, ok)
	assert.Equal(t, "r\n", content)

	img := node(t, tree, "img.bin")
	assert.Equal(t, model.FileBinary, img.FileType)
	assert.Equal(t, diff.DiffBaseLocalSame, img.Differences)
	assert.Equal(t, model.StatusMerged, img.Status)
	content, ok = readOut(t, out, "img.bin")
	require.True(t, ok)
	assert.Equal(t, "\x00new", content)

	assert.Equal(t, model.StatusIgnored, node(t, tree, "logs").Status)
	assert.Equal(t, model.StatusIgnored, node(t, tree, "logs/ign.log").Status)

	assert.Equal(t, model.StatusMerged, store.records["a.txt"])
	assert.Equal(t, model.StatusMerged, store.records["del.txt"])
	assert.Equal(t, model.StatusMerged, store.records["new.txt"])
	assert.Equal(t, model.StatusHasConflicts, store.records["conflict.txt"])
	assert.NotContains(t, store.records, "logs/ign.log")
}

func TestThreeWay_Chooser(t *testing.T) {
	tree := threeWayFixture(t)
	out := t.TempDir()

	var asked []string
	chooser := ChooserFunc(func(_ context.Context, _ *model.Tree, n *model.Node, item int) (diff.Action, error) {
		asked = append(asked, n.Path)
		assert.Equal(t, 0, item)
		return diff.ActionApplyRemote, nil
	})

	run(t, tree, Settings{Merge: MergeConfig{Output: out}}, chooser, nil)

	assert.Equal(t, []string{"conflict.txt"}, asked)
	assert.Equal(t, model.StatusMerged, node(t, tree, "conflict.txt").Status)
	content, ok := readOut(t, out, "conflict.txt")
	require.True(t, ok)
	assert.Equal(t, "z\n", content)
}

func TestThreeWay_Strategy(t *testing.T) {
	tree := threeWayFixture(t)
	out := t.TempDir()

	run(t, tree, Settings{Strategy: conflict.StrategyBase, Merge: MergeConfig{Output: out}}, nil, nil)

	content, ok := readOut(t, out, "conflict.txt")
	require.True(t, ok)
	assert.Equal(t, "x\n", content)
}

func TestTwoWay_RemoteWins(t *testing.T) {
	tree := crawl(t, model.TwoWay, nil,
		map[string]string{"a.txt": "1\n2\n", "only-local.txt": "l\n", "same.txt": "s"},
		map[string]string{"a.txt": "1\nX\n", "only-remote.txt": "r\n", "same.txt": "s"},
	)
	local := tree.Roots[model.Local]

	run(t, tree, Settings{Strategy: conflict.StrategyRemote, Merge: MergeConfig{Backup: true}}, nil, nil)

	content, ok := readOut(t, local, "a.txt")
	require.True(t, ok)
	assert.Equal(t, "1\nX\n", content)

	content, ok = readOut(t, local, "only-remote.txt")
	require.True(t, ok)
	assert.Equal(t, "r\n", content)

	_, ok = readOut(t, local, "only-local.txt")
	assert.False(t, ok)

	entries, err := os.ReadDir(local)
	require.NoError(t, err)
	var backups int
	for _, e := range entries {
		if strings.Contains(e.Name(), ".conflict_") {
			backups++
		}
	}
	assert.Equal(t, 2, backups)

	for _, n := range tree.FileNodes() {
		assert.Equal(t, model.StatusMerged, n.Status, n.Path)
	}
}

func TestTwoWay_DefaultKeepsLocal(t *testing.T) {
	tree := crawl(t, model.TwoWay, nil,
		map[string]string{"a.txt": "1\n2\n"},
		map[string]string{"a.txt": "1\nX\n"},
	)
	out := t.TempDir()

	run(t, tree, Settings{Merge: MergeConfig{Output: out}}, nil, nil)

	a := node(t, tree, "a.txt")
	require.NotNil(t, a.TwoWay)
	assert.Equal(t, diff.DiffAllDifferent, a.Differences)

	content, ok := readOut(t, out, "a.txt")
	require.True(t, ok)
	assert.Equal(t, "1\n2\n", content)
}

func TestBinaryFiles(t *testing.T) {
	local := map[string]string{"img.bin": "\x00\x01local", "text.txt": "t\n"}
	remote := map[string]string{"img.bin": "\x00\x01remote", "text.txt": "t\n"}

	tree := crawl(t, model.TwoWay, nil, local, remote)
	p, err := New(2, NewBinaryProcessor(false), HashProcessor{}, NewContentProcessor(diff.Options{}))
	require.NoError(t, err)
	require.NoError(t, p.RunStages(context.Background(), tree, PreProcess, Diff))

	img := node(t, tree, "img.bin")
	assert.Equal(t, model.FileBinary, img.FileType)
	assert.Equal(t, model.StatusDiffed, img.Status)
	assert.Equal(t, diff.DiffAllDifferent, img.Differences)
	assert.Nil(t, img.TwoWay)
	assert.Equal(t, model.FileText, node(t, tree, "text.txt").FileType)

	tree = crawl(t, model.TwoWay, nil, local, remote)
	p, err = New(2, NewBinaryProcessor(true), HashProcessor{})
	require.NoError(t, err)
	require.NoError(t, p.RunStages(context.Background(), tree, PreProcess, Diff))
	assert.Equal(t, model.StatusIgnored, node(t, tree, "img.bin").Status)
}

func TestFilterProcessor(t *testing.T) {
	f, err := NewFilterProcessor(FilterConfig{
		IgnoreList:  []string{".git", "*.tmp"},
		IgnoreRegex: `^build/`,
	})
	require.NoError(t, err)

	tests := []struct {
		path string
		want bool
	}{
		{".git", true},
		{"src/.git/config", true},
		{"notes.tmp", true},
		{"build/out.o", true},
		{"src/build/out.o", false},
		{"main.go", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, f.ShouldIgnore(tt.path), tt.path)
	}

	_, err = NewFilterProcessor(FilterConfig{IgnoreRegex: "("})
	assert.Error(t, err)
	_, err = NewFilterProcessor(FilterConfig{IgnoreList: []string{"["}})
	assert.Error(t, err)
}

func TestConflictProcessor_PresenceConflict(t *testing.T) {
	tree := crawl(t, model.ThreeWay,
		map[string]string{"gone.txt": "a\n"},
		map[string]string{"gone.txt": "changed\n"},
		nil,
	)

	p, err := New(1, HashProcessor{}, NewContentProcessor(diff.Options{}), ConflictProcessor{})
	require.NoError(t, err)
	require.NoError(t, p.RunStages(context.Background(), tree, Diff))

	n := node(t, tree, "gone.txt")
	assert.Equal(t, diff.DiffAllDifferent, n.Differences)
	assert.Equal(t, model.StatusConflicting, n.Status)
}
