package watchlist

import "slices"

// The operations below validate everything they need before touching the
// tree, so a failed call leaves t exactly as it was.

// AddSymbol files symbol under group, creating missing groups along the way.
// The root path means the default group. Re-adding a present symbol is a
// no-op.
func AddSymbol(t *Tree, symbol string, group Path) error {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return err
	}
	if group.IsRoot() {
		group = DefaultPath
	}
	resolveOrCreate(t, group).addSymbol(sym)
	return nil
}

// RemoveSymbol drops symbol from group. Removing an absent symbol is a no-op;
// a missing group is not.
func RemoveSymbol(t *Tree, group Path, symbol string) error {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return err
	}
	node, err := Resolve(t, group)
	if err != nil {
		return err
	}
	if node.removeSymbol(sym) {
		prune(t, group)
	}
	return nil
}

// MoveSymbol removes symbol from one group and adds it to another. Both
// groups must exist; equal paths are a no-op.
func MoveSymbol(t *Tree, symbol string, from, to Path) error {
	return MoveSymbols(t, []string{symbol}, from, to)
}

// MoveSymbols moves several symbols between the same pair of groups as one
// transaction.
func MoveSymbols(t *Tree, symbols []string, from, to Path) error {
	syms := make([]string, 0, len(symbols))
	for _, raw := range symbols {
		sym, err := NormalizeSymbol(raw)
		if err != nil {
			return err
		}
		if !slices.Contains(syms, sym) {
			syms = append(syms, sym)
		}
	}
	if len(syms) == 0 {
		return NewError(CodeValidation, "at least one symbol is required", nil)
	}
	if from.Equal(to) {
		return nil
	}
	src, err := Resolve(t, from)
	if err != nil {
		return err
	}
	dst, err := Resolve(t, to)
	if err != nil {
		return err
	}
	removed := false
	for _, sym := range syms {
		if src.removeSymbol(sym) {
			removed = true
		}
		dst.addSymbol(sym)
	}
	if removed {
		prune(t, from)
	}
	return nil
}

// CreateGroup inserts an empty group named name under parent (root for a
// top-level group) and returns its path.
func CreateGroup(t *Tree, name, description string, parent Path) (Path, error) {
	name, err := ValidateName(name)
	if err != nil {
		return Path{}, err
	}
	container, err := containerOf(t, parent)
	if err != nil {
		return Path{}, err
	}
	path := parent.Child(name)
	if _, exists := container[name]; exists {
		return Path{}, alreadyExists("group %q already exists", path.String())
	}
	container[name] = NewGroupNode(description)
	return path, nil
}

// DeleteGroup removes the group at path with all of its subgroups. Every
// symbol held anywhere in the removed subtree is rescued into the default
// group. The rescued symbols are returned in depth-first order.
func DeleteGroup(t *Tree, path Path) ([]string, error) {
	if path.IsDefault() {
		return nil, forbidden("the %s group cannot be deleted", DefaultGroup)
	}
	container, leaf, err := ResolveParent(t, path)
	if err != nil {
		return nil, err
	}
	node, ok := container[leaf]
	if !ok {
		return nil, notFound("group %q not found", path.String())
	}

	var rescued []string
	for _, sym := range node.collectSymbols(nil) {
		if !slices.Contains(rescued, sym) {
			rescued = append(rescued, sym)
		}
	}
	delete(container, leaf)

	def := t.ensureDefault()
	for _, sym := range rescued {
		def.addSymbol(sym)
	}
	prune(t, path.Parent())
	return rescued, nil
}

// RenameGroup re-keys the group at path under the same parent.
func RenameGroup(t *Tree, path Path, newName string) (Path, error) {
	newName, err := ValidateName(newName)
	if err != nil {
		return Path{}, err
	}
	if path.IsDefault() {
		return Path{}, forbidden("the %s group cannot be renamed", DefaultGroup)
	}
	container, leaf, err := ResolveParent(t, path)
	if err != nil {
		return Path{}, err
	}
	node, ok := container[leaf]
	if !ok {
		return Path{}, notFound("group %q not found", path.String())
	}
	renamed := path.WithLeaf(newName)
	if newName == leaf {
		return renamed, nil
	}
	if _, exists := container[newName]; exists {
		return Path{}, alreadyExists("group %q already exists", renamed.String())
	}
	delete(container, leaf)
	container[newName] = node
	return renamed, nil
}

// MoveGroup re-parents the subtree at source under target. The root target
// makes it a top-level group. Returns the new path of the moved group.
// A target at or below source fails with CYCLE before the target is
// resolved, so a missing descendant target reports CYCLE, not NOT_FOUND.
func MoveGroup(t *Tree, source, target Path) (Path, error) {
	if source.IsDefault() {
		return Path{}, forbidden("the %s group cannot be moved", DefaultGroup)
	}
	srcContainer, leaf, err := ResolveParent(t, source)
	if err != nil {
		return Path{}, err
	}
	node, ok := srcContainer[leaf]
	if !ok {
		return Path{}, notFound("group %q not found", source.String())
	}
	if source.Contains(target) {
		return Path{}, NewError(CodeCycle, "cannot move group "+source.String()+" into itself", nil)
	}
	dstContainer, err := containerOf(t, target)
	if err != nil {
		return Path{}, err
	}
	moved := target.Child(leaf)
	if target.Equal(source.Parent()) {
		return moved, nil
	}
	if _, exists := dstContainer[leaf]; exists {
		return Path{}, alreadyExists("group %q already exists", moved.String())
	}
	delete(srcContainer, leaf)
	dstContainer[leaf] = node
	prune(t, source.Parent())
	return moved, nil
}

// SetDescription replaces the informational description of a group.
func SetDescription(t *Tree, path Path, description string) error {
	node, err := Resolve(t, path)
	if err != nil {
		return err
	}
	node.Description = description
	return nil
}

// prune removes path when it holds nothing, then repeats for each ancestor
// that became empty as a result. The default group is never removed.
func prune(t *Tree, path Path) {
	for p := path; !p.IsRoot() && !p.IsDefault(); p = p.Parent() {
		container, leaf, err := ResolveParent(t, p)
		if err != nil {
			return
		}
		node, ok := container[leaf]
		if !ok || !node.IsEmpty() {
			return
		}
		delete(container, leaf)
	}
}

// Ungrouped lists the default group's symbols that no other group holds.
func Ungrouped(t *Tree) []string {
	filed := map[string]bool{}
	t.Walk(func(path Path, node *GroupNode) bool {
		if !path.IsDefault() {
			for _, sym := range node.Symbols {
				filed[sym] = true
			}
		}
		return true
	})
	out := []string{}
	for _, sym := range t.ensureDefault().Symbols {
		if !filed[sym] {
			out = append(out, sym)
		}
	}
	return out
}

// Locate returns the paths of every group holding symbol, in walk order.
func Locate(t *Tree, symbol string) ([]string, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	paths := []string{}
	t.Walk(func(path Path, node *GroupNode) bool {
		if node.HasSymbol(sym) {
			paths = append(paths, path.String())
		}
		return true
	})
	return paths, nil
}

// Stats counts groups and distinct symbols.
func Stats(t *Tree) (groups, symbols int) {
	seen := map[string]bool{}
	t.Walk(func(_ Path, node *GroupNode) bool {
		groups++
		for _, sym := range node.Symbols {
			seen[sym] = true
		}
		return true
	})
	return groups, len(seen)
}
