package model

import (
	"fmt"
	"path"
	"path/filepath"

	"dirmerge/internal/diff"

	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"
)

// Tree is the merged view of up to three roots. Nodes live in an arena and
// refer to each other by NodeID; the arena is only grown while the tree is
// built, so node pointers stay valid once crawling is done.
type Tree struct {
	Mode  Mode
	Roots [NumRoles]string

	nodes []Node
}

// NewTree creates a tree holding only its root directory.
func NewTree(mode Mode, roots [NumRoles]string) *Tree {
	t := &Tree{Mode: mode, Roots: roots}
	if mode == TwoWay {
		t.Roots[Base] = ""
	}

	t.nodes = append(t.nodes, Node{
		ID:          0,
		Parent:      NoNode,
		IsDir:       true,
		Mode:        mode,
		Location:    mode.Roots(),
		Status:      StatusInitial,
		Differences: diff.DiffInitial,
		FileType:    FileUnknown,
		Action:      diff.ActionDefault,
	})

	return t
}

func (t *Tree) Root() *Node {
	return &t.nodes[0]
}

func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) AddDir(parent NodeID, name string, loc Location, entries [NumRoles]*Entry) NodeID {
	id := t.add(parent, name, true, loc, entries)
	t.nodes[parent].Dirs = append(t.nodes[parent].Dirs, id)
	return id
}

func (t *Tree) AddFile(parent NodeID, name string, loc Location, entries [NumRoles]*Entry) NodeID {
	id := t.add(parent, name, false, loc, entries)
	t.nodes[parent].Files = append(t.nodes[parent].Files, id)
	return id
}

func (t *Tree) add(parent NodeID, name string, isDir bool, loc Location, entries [NumRoles]*Entry) NodeID {
	loc &= t.Mode.Roots()
	if loc == 0 {
		panic(fmt.Sprintf("model: node %q has no location", name))
	}

	for _, r := range Roles {
		if !loc.Has(r) {
			entries[r] = nil
		}
	}

	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node{
		ID:          id,
		Parent:      parent,
		Name:        name,
		Path:        path.Join(t.nodes[parent].Path, name),
		IsDir:       isDir,
		Mode:        t.Mode,
		Location:    loc,
		Entries:     entries,
		Status:      StatusInitial,
		Differences: diff.DiffInitial,
		FileType:    FileUnknown,
		Action:      diff.ActionDefault,
	})

	return id
}

// AbsPath returns the location of n inside the root of role r.
func (t *Tree) AbsPath(n *Node, r Role) string {
	return filepath.Join(t.Roots[r], filepath.FromSlash(n.Path))
}

// Walk visits nodes depth first: a directory, then its files, then its
// subdirectories. Returning false from fn on a directory skips its children.
func (t *Tree) Walk(fn func(*Node) bool) {
	t.walk(0, fn)
}

func (t *Tree) walk(id NodeID, fn func(*Node) bool) {
	n := &t.nodes[id]
	if !fn(n) {
		return
	}
	for _, f := range n.Files {
		fn(&t.nodes[f])
	}
	for _, d := range n.Dirs {
		t.walk(d, fn)
	}
}

// Subtree calls fn for every descendant of id.
func (t *Tree) Subtree(id NodeID, fn func(*Node)) {
	n := &t.nodes[id]
	for _, f := range n.Files {
		fn(&t.nodes[f])
	}
	for _, d := range n.Dirs {
		fn(&t.nodes[d])
		t.Subtree(d, fn)
	}
}

// Find looks a node up by its slash separated relative path.
func (t *Tree) Find(p string) (*Node, bool) {
	for i := range t.nodes {
		if t.nodes[i].Path == p {
			return &t.nodes[i], true
		}
	}
	return nil, false
}

// FileNodes returns all file nodes in walk order.
func (t *Tree) FileNodes() []*Node {
	var out []*Node
	t.Walk(func(n *Node) bool {
		if !n.IsDir {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Errors gathers the errors recorded on failed nodes.
func (t *Tree) Errors() error {
	var result *multierror.Error
	t.Walk(func(n *Node) bool {
		if n.Status == StatusError && n.Err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", n.Path, n.Err))
		}
		return true
	})
	return result.ErrorOrNil()
}

// Summary counts file nodes per status.
func (t *Tree) Summary() map[Status]int {
	return lo.CountValuesBy(t.FileNodes(), func(n *Node) Status {
		return n.Status
	})
}
