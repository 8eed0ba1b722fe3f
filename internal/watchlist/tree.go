package watchlist

import (
	"maps"
	"slices"
)

// Tree is the whole watchlist: top-level group name to node.
type Tree struct {
	Groups map[string]*GroupNode `json:"groups"`
}

// NewTree returns a tree holding only the empty default group.
func NewTree() *Tree {
	t := &Tree{Groups: map[string]*GroupNode{}}
	t.ensureDefault()
	return t
}

// Default returns the default group, creating it when absent.
func (t *Tree) Default() *GroupNode {
	return t.ensureDefault()
}

func (t *Tree) ensureDefault() *GroupNode {
	if t.Groups == nil {
		t.Groups = map[string]*GroupNode{}
	}
	def, ok := t.Groups[DefaultGroup]
	if !ok || def == nil {
		def = NewGroupNode("")
		t.Groups[DefaultGroup] = def
	}
	return def
}

// Clone returns a deep copy of the tree.
func (t *Tree) Clone() *Tree {
	out := &Tree{Groups: make(map[string]*GroupNode, len(t.Groups))}
	for name, node := range t.Groups {
		out.Groups[name] = node.Clone()
	}
	out.ensureDefault()
	return out
}

// Walk visits every group depth-first, parents before children and siblings
// in name order. Returning false from fn stops the walk.
func (t *Tree) Walk(fn func(path Path, node *GroupNode) bool) {
	var visit func(path Path, node *GroupNode) bool
	visit = func(path Path, node *GroupNode) bool {
		if !fn(path, node) {
			return false
		}
		for _, name := range sortedKeys(node.Children) {
			if !visit(path.Child(name), node.Children[name]) {
				return false
			}
		}
		return true
	}
	for _, name := range sortedKeys(t.Groups) {
		if !visit(Path{names: []string{name}}, t.Groups[name]) {
			return
		}
	}
}

func sortedKeys(m map[string]*GroupNode) []string {
	return slices.Sorted(maps.Keys(m))
}
