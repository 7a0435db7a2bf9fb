package tally

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// TreeDecoder parses the document into a Node tree and walks the envelope
// path. Attributes are merged into fields; a child element of the same
// name takes precedence over an attribute.
type TreeDecoder struct{}

// NewTreeDecoder creates the structural decoder
func NewTreeDecoder() *TreeDecoder {
	return &TreeDecoder{}
}

// Name implements Decoder
func (d *TreeDecoder) Name() string {
	return "tree"
}

// Decode implements Decoder. If the document is malformed part way, the
// records found before the fault are returned together with the error.
func (d *TreeDecoder) Decode(raw []byte, kind Kind) ([]Node, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	root, err := ParseTree(raw)
	nodes := root.Path(append(envelopePath, kind.NodeTag())...)
	return nodes, err
}

type frame struct {
	name  string
	node  Node
	attrs []xml.Attr
	text  strings.Builder
}

// ParseTree builds a Node tree from an XML document. The returned root is
// an element whose single field is the document element.
func ParseTree(raw []byte) (Node, error) {
	utf8Raw, err := ToUTF8(raw)
	if err != nil {
		return NewElement(), err
	}

	dec := xml.NewDecoder(bytes.NewReader(Sanitize(utf8Raw)))
	dec.CharsetReader = charsetReader

	root := &frame{node: NewElement()}
	stack := []*frame{root}

	for {
		// RawToken keeps namespace prefixes such as UDF: as written
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			closeOpen(stack)
			return root.node, fmt.Errorf("decode export xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, &frame{
				name:  qualifiedName(t.Name),
				node:  NewElement(),
				attrs: t.Attr,
			})
		case xml.CharData:
			top := stack[len(stack)-1]
			top.text.Write(t)
		case xml.EndElement:
			if len(stack) == 1 {
				return root.node, fmt.Errorf("decode export xml: unexpected </%s>", qualifiedName(t.Name))
			}
			top := stack[len(stack)-1]
			if name := qualifiedName(t.Name); name != top.name {
				closeOpen(stack)
				return root.node, fmt.Errorf("decode export xml: element <%s> closed by </%s>", top.name, name)
			}
			stack = stack[:len(stack)-1]
			parent := stack[len(stack)-1]
			parent.node.Add(top.name, top.finish())
		}
	}

	if len(stack) > 1 {
		closeOpen(stack)
		return root.node, fmt.Errorf("decode export xml: unexpected end of document inside <%s>", stack[len(stack)-1].name)
	}
	return root.node, nil
}

// closeOpen attaches unterminated elements to their parents so that records
// completed before a fault are still reachable from the root.
func closeOpen(stack []*frame) {
	for i := len(stack) - 1; i > 0; i-- {
		stack[i-1].node.Add(stack[i].name, stack[i].finish())
	}
}

// finish converts a closed frame into its Node. A bare element becomes a
// scalar; otherwise attributes merge in and text moves under TextKey.
func (f *frame) finish() Node {
	text := strings.TrimSpace(f.text.String())
	attrs := f.mergeableAttrs()

	if len(f.node.Keys()) == 0 && len(attrs) == 0 {
		return Scalar(text)
	}

	if len(attrs) == 0 && text == "" {
		return f.node
	}

	merged := NewElement()
	for _, a := range attrs {
		merged.Add(a.name, Scalar(strings.TrimSpace(a.value)))
	}
	for _, key := range f.node.Keys() {
		for _, v := range f.node.Field(key) {
			merged.Add(key, v)
		}
	}
	if text != "" {
		merged.Add(TextKey, Scalar(text))
	}
	return merged
}

type attr struct {
	name  string
	value string
}

func (f *frame) mergeableAttrs() []attr {
	var out []attr
	for _, a := range f.attrs {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		name := qualifiedName(a.Name)
		if f.node.Has(name) {
			continue
		}
		out = append(out, attr{name: name, value: a.Value})
	}
	return out
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
