package watchlist

// Resolve returns the node at path.
func Resolve(t *Tree, path Path) (*GroupNode, error) {
	if path.IsRoot() {
		return nil, notFound("group path is empty")
	}
	container, leaf, err := ResolveParent(t, path)
	if err != nil {
		return nil, err
	}
	node, ok := container[leaf]
	if !ok {
		return nil, notFound("group %q not found", path.String())
	}
	return node, nil
}

// ResolveParent walks every segment but the last and returns the map that
// holds (or would hold) the leaf. Top-level paths resolve to t.Groups.
func ResolveParent(t *Tree, path Path) (map[string]*GroupNode, string, error) {
	if path.IsRoot() {
		return nil, "", notFound("group path is empty")
	}
	container := t.Groups
	for i, name := range path.names[:len(path.names)-1] {
		node, ok := container[name]
		if !ok {
			return nil, "", notFound("group %q not found", Path{names: path.names[:i+1]}.String())
		}
		if node.Children == nil {
			node.Children = map[string]*GroupNode{}
		}
		container = node.Children
	}
	return container, path.Leaf(), nil
}

// resolveOrCreate walks path creating missing groups with an empty description.
func resolveOrCreate(t *Tree, path Path) *GroupNode {
	if path.IsDefault() {
		return t.ensureDefault()
	}
	container := t.Groups
	var node *GroupNode
	for _, name := range path.names {
		next, ok := container[name]
		if !ok {
			next = NewGroupNode("")
			container[name] = next
		}
		if next.Children == nil {
			next.Children = map[string]*GroupNode{}
		}
		node = next
		container = next.Children
	}
	return node
}

// containerOf returns the map holding the children of path; the root path
// yields t.Groups.
func containerOf(t *Tree, path Path) (map[string]*GroupNode, error) {
	if path.IsRoot() {
		return t.Groups, nil
	}
	node, err := Resolve(t, path)
	if err != nil {
		return nil, err
	}
	if node.Children == nil {
		node.Children = map[string]*GroupNode{}
	}
	return node.Children, nil
}
