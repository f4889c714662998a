package model

import (
	"time"

	"dirmerge/internal/diff"
)

// NodeID addresses a node inside its tree's arena.
type NodeID int

const NoNode NodeID = -1

// Entry is the backing filesystem info of a node in one root.
type Entry struct {
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Node is a directory or file of the merged view. Pipeline stages own a node
// while visiting it; nothing else mutates it concurrently.
type Node struct {
	ID     NodeID `json:"id"`
	Parent NodeID `json:"parent"`
	Name   string `json:"name"`
	Path   string `json:"path"`
	IsDir  bool   `json:"is_dir"`

	Mode     Mode             `json:"mode"`
	Location Location         `json:"location"`
	Entries  [NumRoles]*Entry `json:"entries"`

	Status      Status           `json:"status"`
	Differences diff.Differences `json:"differences"`
	FileType    FileType         `json:"file_type"`
	Err         error            `json:"-"`

	// Dirs and Files keep the name order of the crawl.
	Dirs  []NodeID `json:"dirs,omitempty"`
	Files []NodeID `json:"files,omitempty"`

	// Exactly one payload is set on a diffed text file, matching Mode.
	TwoWay   *diff.Result  `json:"two_way,omitempty"`
	ThreeWay *diff.Result3 `json:"three_way,omitempty"`

	// Action resolves files compared as a whole: binaries and files missing
	// from one side.
	Action diff.Action `json:"action"`

	Hashes [NumRoles]uint64 `json:"-"`
}

// SetStatus moves the node to s unless it already sits in a terminal status.
func (n *Node) SetStatus(s Status) bool {
	if n.Status.Terminal() {
		return false
	}
	n.Status = s
	return true
}

// Fail records err and moves the node to StatusError.
func (n *Node) Fail(err error) {
	if n.Status == StatusError {
		return
	}
	n.Err = err
	n.Status = StatusError
}

// HasLines reports whether the node carries a line-level diff.
func (n *Node) HasLines() bool {
	return n.TwoWay != nil || n.ThreeWay != nil
}

// Unresolved counts the conflicts still waiting for an action.
func (n *Node) Unresolved() int {
	switch {
	case n.ThreeWay != nil:
		return n.ThreeWay.Unresolved()
	case n.TwoWay != nil:
		return 0
	case n.Mode == ThreeWay && n.Differences == diff.DiffAllDifferent && n.Action == diff.ActionDefault:
		return 1
	default:
		return 0
	}
}
