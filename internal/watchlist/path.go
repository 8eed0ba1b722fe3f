package watchlist

import (
	"slices"
	"strings"
)

// Separator delimits the names of a group path.
const Separator = "/"

// Path locates a group by descending from a top-level group. The zero value
// is the root, which names no group. Paths are only produced by ParsePath or
// derived from another Path, so every segment is a valid group name.
type Path struct {
	names []string
}

// DefaultPath is the path of the default group.
var DefaultPath = Path{names: []string{DefaultGroup}}

// ParsePath validates a slash-delimited group path. Segments are trimmed. An
// empty (or all-blank) string yields the root path.
func ParsePath(raw string) (Path, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Path{}, nil
	}
	parts := strings.Split(raw, Separator)
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		name, err := ValidateName(part)
		if err != nil {
			return Path{}, invalidName("group path %q has an empty segment", raw)
		}
		names = append(names, name)
	}
	return Path{names: names}, nil
}

// ValidateName trims a group name and checks it is non-empty and free of the
// path separator.
func ValidateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", invalidName("group name is required")
	}
	if strings.Contains(name, Separator) {
		return "", invalidName("group name %q must not contain %q", name, Separator)
	}
	return name, nil
}

func (p Path) String() string { return strings.Join(p.names, Separator) }

func (p Path) Len() int { return len(p.names) }

func (p Path) IsRoot() bool { return len(p.names) == 0 }

// Names returns a copy of the segments.
func (p Path) Names() []string { return slices.Clone(p.names) }

// Leaf returns the last segment, or "" for the root.
func (p Path) Leaf() string {
	if len(p.names) == 0 {
		return ""
	}
	return p.names[len(p.names)-1]
}

// Parent drops the last segment. The parent of a top-level group is the root.
func (p Path) Parent() Path {
	if len(p.names) <= 1 {
		return Path{}
	}
	return Path{names: slices.Clone(p.names[:len(p.names)-1])}
}

// Child appends one segment. name must already be valid.
func (p Path) Child(name string) Path {
	names := make([]string, 0, len(p.names)+1)
	names = append(names, p.names...)
	return Path{names: append(names, name)}
}

// WithLeaf replaces the last segment.
func (p Path) WithLeaf(name string) Path {
	return p.Parent().Child(name)
}

func (p Path) Equal(other Path) bool { return slices.Equal(p.names, other.names) }

// Contains reports whether other is p itself or lies below p. The check is
// segment-wise, so "Tech" does not contain "Technology".
func (p Path) Contains(other Path) bool {
	if len(other.names) < len(p.names) {
		return false
	}
	return slices.Equal(p.names, other.names[:len(p.names)])
}

// IsDefault reports whether p names the top-level default group.
func (p Path) IsDefault() bool { return p.Equal(DefaultPath) }
