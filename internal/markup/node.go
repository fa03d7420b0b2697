// Package markup holds the parsed form of lexicon source documents: an
// immutable element tree plus the small set of accessors the entry
// flattener needs (descendant lookup by tag, text content, cleanup, JSON
// snapshot).
package markup

import "slices"

// Attr is a single element attribute.
type Attr struct {
	Name  string
	Value string
}

// Node is an element of a parsed document. Values are built once by the
// parser (or NewElement) and never change afterwards.
type Node struct {
	tag      string
	text     string
	attrs    []Attr
	children []Node
}

// NewElement builds a node from literal parts. text is the full text
// content of the element, children included.
func NewElement(tag, text string, attrs []Attr, children ...Node) Node {
	return Node{
		tag:      tag,
		text:     text,
		attrs:    slices.Clone(attrs),
		children: slices.Clone(children),
	}
}

// Tag returns the element name.
func (n Node) Tag() string { return n.tag }

// Text returns the concatenated text of all descendant text nodes.
func (n Node) Text() string { return n.text }

// Attrs returns the attributes in source order.
func (n Node) Attrs() []Attr { return slices.Clone(n.attrs) }

// Attr returns the value of the named attribute.
func (n Node) Attr(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Children returns the direct element children in document order.
func (n Node) Children() []Node { return slices.Clone(n.children) }

// ChildCount returns the number of direct element children.
func (n Node) ChildCount() int { return len(n.children) }

// FirstByTag returns the first descendant of n (n itself excluded) named
// tag, in document order, or nil when there is none.
func FirstByTag(n Node, tag string) *Node {
	for i := range n.children {
		c := &n.children[i]
		if c.tag == tag {
			return c
		}
		if found := FirstByTag(*c, tag); found != nil {
			return found
		}
	}
	return nil
}

// AllByTag returns every descendant of n (n itself excluded) named tag, in
// document order.
func AllByTag(n Node, tag string) []Node {
	var out []Node
	collectByTag(n, tag, &out)
	return out
}

func collectByTag(n Node, tag string, out *[]Node) {
	for _, c := range n.children {
		if c.tag == tag {
			*out = append(*out, c)
		}
		collectByTag(c, tag, out)
	}
}

// TextOf returns the full text content of n, or nil for a nil node.
func TextOf(n *Node) *string {
	if n == nil {
		return nil
	}
	s := n.text
	return &s
}
