// Package tally talks to the Tally ERP XML interface: it builds export
// requests, fetches responses and turns export envelopes into records.
package tally

import "strings"

// TextKey holds element text when the element also has attributes or children
const TextKey = "_"

// NodeKind tags the two shapes a decoded value can take
type NodeKind int

const (
	// ScalarNode is a leaf holding only text
	ScalarNode NodeKind = iota
	// ElementNode holds named fields, each normalized to a sequence
	ElementNode
)

// Node is one decoded value of an export document. Every field of an
// element is a sequence, even when the source had a single occurrence,
// so callers never branch on singleton-vs-list shapes.
type Node struct {
	kind   NodeKind
	text   string
	fields map[string][]Node
	keys   []string
}

// Scalar creates a text leaf
func Scalar(text string) Node {
	return Node{kind: ScalarNode, text: text}
}

// NewElement creates an empty element node
func NewElement() Node {
	return Node{kind: ElementNode, fields: make(map[string][]Node)}
}

// Kind returns the node shape
func (n Node) Kind() NodeKind {
	return n.kind
}

// IsScalar reports whether the node is a text leaf
func (n Node) IsScalar() bool {
	return n.kind == ScalarNode
}

// Add appends a value to a field, keeping first-seen key order
func (n *Node) Add(name string, value Node) {
	if n.kind != ElementNode {
		// promote a leaf so its text survives as the text field
		text := n.text
		*n = NewElement()
		if text != "" {
			n.Add(TextKey, Scalar(text))
		}
	}
	if _, ok := n.fields[name]; !ok {
		n.keys = append(n.keys, name)
	}
	n.fields[name] = append(n.fields[name], value)
}

// Has reports whether the element carries the field
func (n Node) Has(name string) bool {
	_, ok := n.fields[name]
	return ok
}

// Field returns every value of the named field. Scalars have no fields.
func (n Node) Field(name string) []Node {
	if n.kind != ElementNode {
		return nil
	}
	return n.fields[name]
}

// First returns the first value of the named field
func (n Node) First(name string) (Node, bool) {
	values := n.Field(name)
	if len(values) == 0 {
		return Node{}, false
	}
	return values[0], true
}

// Keys lists field names in document order
func (n Node) Keys() []string {
	return n.keys
}

// Text returns the node's text content. An element wrapping its text
// next to attributes yields the wrapped text; other elements yield "".
func (n Node) Text() string {
	if n.kind == ScalarNode {
		return n.text
	}
	if t, ok := n.First(TextKey); ok && t.kind == ScalarNode {
		return t.text
	}
	return ""
}

// FirstText returns the trimmed text of the first value of a field.
// ok is false when the field is missing or its text is empty.
func (n Node) FirstText(name string) (string, bool) {
	v, found := n.First(name)
	if !found {
		return "", false
	}
	text := strings.TrimSpace(v.Text())
	return text, text != ""
}

// Path descends through nested fields, collecting every match at each level
// in document order. A missing level yields an empty result.
func (n Node) Path(names ...string) []Node {
	current := []Node{n}
	for _, name := range names {
		var next []Node
		for _, c := range current {
			next = append(next, c.Field(name)...)
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}
	return current
}

// FindFirst searches depth-first, in document order, for a field with the
// given name whose first value has non-empty text.
func (n Node) FindFirst(name string) (string, bool) {
	if n.kind != ElementNode {
		return "", false
	}
	for _, key := range n.keys {
		values := n.fields[key]
		if key == name && len(values) > 0 {
			if text := strings.TrimSpace(values[0].Text()); text != "" {
				return text, true
			}
		}
		for _, v := range values {
			if text, ok := v.FindFirst(name); ok {
				return text, true
			}
		}
	}
	return "", false
}
