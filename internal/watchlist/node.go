package watchlist

import (
	"slices"
	"strings"
)

// DefaultGroup is the top-level group holding symbols not filed elsewhere.
const DefaultGroup = "Default"

// GroupNode is one group of the hierarchy. Children are owned exclusively by
// their parent map.
type GroupNode struct {
	Description string                `json:"description" yaml:"description"`
	Symbols     []string              `json:"stocks" yaml:"stocks"`
	Children    map[string]*GroupNode `json:"subGroups,omitempty" yaml:"subGroups,omitempty"`
}

// NewGroupNode returns an empty group with the given description.
func NewGroupNode(description string) *GroupNode {
	return &GroupNode{
		Description: description,
		Symbols:     []string{},
		Children:    map[string]*GroupNode{},
	}
}

// HasSymbol reports whether sym (already normalized) is a direct member.
func (n *GroupNode) HasSymbol(sym string) bool {
	return slices.Contains(n.Symbols, sym)
}

func (n *GroupNode) addSymbol(sym string) bool {
	if n.HasSymbol(sym) {
		return false
	}
	n.Symbols = append(n.Symbols, sym)
	return true
}

func (n *GroupNode) removeSymbol(sym string) bool {
	i := slices.Index(n.Symbols, sym)
	if i < 0 {
		return false
	}
	n.Symbols = slices.Delete(n.Symbols, i, i+1)
	return true
}

// IsEmpty reports whether the node holds neither symbols nor children.
func (n *GroupNode) IsEmpty() bool {
	return len(n.Symbols) == 0 && len(n.Children) == 0
}

// Clone returns a deep copy of the subtree rooted at n.
func (n *GroupNode) Clone() *GroupNode {
	if n == nil {
		return nil
	}
	out := &GroupNode{
		Description: n.Description,
		Symbols:     slices.Clone(n.Symbols),
		Children:    make(map[string]*GroupNode, len(n.Children)),
	}
	if out.Symbols == nil {
		out.Symbols = []string{}
	}
	for name, child := range n.Children {
		out.Children[name] = child.Clone()
	}
	return out
}

// collectSymbols appends every symbol of the subtree in depth-first order,
// visiting children by sorted name so the result is deterministic.
func (n *GroupNode) collectSymbols(dst []string) []string {
	dst = append(dst, n.Symbols...)
	for _, name := range sortedKeys(n.Children) {
		dst = n.Children[name].collectSymbols(dst)
	}
	return dst
}

// NormalizeSymbol trims and upper-cases a ticker. Empty tickers and tickers
// containing whitespace or the path separator are rejected.
func NormalizeSymbol(raw string) (string, error) {
	sym := strings.ToUpper(strings.TrimSpace(raw))
	if sym == "" {
		return "", NewError(CodeValidation, "symbol is required", nil)
	}
	if strings.ContainsAny(sym, " \t\r\n"+Separator) {
		return "", NewError(CodeValidation, "symbol "+sym+" contains whitespace or "+Separator, nil)
	}
	return sym, nil
}
