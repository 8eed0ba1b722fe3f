package watchlist

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// document is the persisted shape: top-level group name to node.
type document map[string]*GroupNode

// Encode renders the tree as the indented JSON document that backends store.
func Encode(t *Tree) ([]byte, error) {
	data, err := json.MarshalIndent(document(t.Groups), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("watchlist: marshal document: %w", err)
	}
	return data, nil
}

// Decode parses a JSON document. Empty input yields a fresh tree.
func Decode(data []byte) (*Tree, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return NewTree(), nil
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("watchlist: unmarshal document: %w", err)
	}
	return fromDocument(doc)
}

// EncodeYAML renders the tree with the same keys as the JSON document.
func EncodeYAML(t *Tree) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(document(t.Groups)); err != nil {
		return nil, fmt.Errorf("watchlist: marshal yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("watchlist: marshal yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeYAML parses a YAML document produced by EncodeYAML or written by hand.
func DecodeYAML(data []byte) (*Tree, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return NewTree(), nil
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("watchlist: unmarshal yaml: %w", err)
	}
	return fromDocument(doc)
}

// fromDocument validates names, normalizes symbols and drops duplicates, so
// every decoded tree satisfies the same invariants the operations keep.
func fromDocument(doc document) (*Tree, error) {
	t := &Tree{Groups: make(map[string]*GroupNode, len(doc))}
	for name, raw := range doc {
		node, err := normalizeNode(Path{}, name, raw)
		if err != nil {
			return nil, err
		}
		if _, dup := t.Groups[node.name]; dup {
			return nil, fmt.Errorf("watchlist: %w", alreadyExists("duplicate group %q", node.name))
		}
		t.Groups[node.name] = node.node
	}
	t.ensureDefault()
	return t, nil
}

type namedNode struct {
	name string
	node *GroupNode
}

func normalizeNode(parent Path, rawName string, raw *GroupNode) (namedNode, error) {
	name, err := ValidateName(rawName)
	if err != nil {
		return namedNode{}, fmt.Errorf("watchlist: group under %q: %w", parent.String(), err)
	}
	path := parent.Child(name)
	node := NewGroupNode("")
	if raw == nil {
		return namedNode{name: name, node: node}, nil
	}
	node.Description = raw.Description
	for _, s := range raw.Symbols {
		sym, err := NormalizeSymbol(s)
		if err != nil {
			return namedNode{}, fmt.Errorf("watchlist: group %q: %w", path.String(), err)
		}
		node.addSymbol(sym)
	}
	for childName, child := range raw.Children {
		nn, err := normalizeNode(path, childName, child)
		if err != nil {
			return namedNode{}, err
		}
		if _, dup := node.Children[nn.name]; dup {
			return namedNode{}, fmt.Errorf("watchlist: group %q: %w", path.String(), alreadyExists("duplicate subgroup %q", nn.name))
		}
		node.Children[nn.name] = nn.node
	}
	return namedNode{name: name, node: node}, nil
}
