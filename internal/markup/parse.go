package markup

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/heartmarshall/sanskrit-lexicon/internal/domain"
)

// builder accumulates one open element while the decoder walks the input.
type builder struct {
	tag      string
	attrs    []Attr
	text     strings.Builder
	children []Node
}

func (b *builder) node() Node {
	return Node{tag: b.tag, text: b.text.String(), attrs: b.attrs, children: b.children}
}

// Parse reads a single well-formed XML document and returns its root
// element. Comments and processing instructions are dropped; character data
// and CDATA sections contribute to text content. HTML named entities
// (&nbsp;, &eacute;, ...) are accepted in addition to the XML ones.
//
// Element and attribute names keep their source prefix ("x:key1",
// "xmlns:x", "xml:lang"); namespace declarations are not resolved.
//
// Any syntax error is reported wrapped in domain.ErrMalformedDocument.
func Parse(r io.Reader) (Node, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true
	dec.Entity = xml.HTMLEntity

	var (
		stack []*builder
		root  *Node
	)

	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Node{}, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil && len(stack) == 0 {
				line, col := dec.InputPos()
				return Node{}, fmt.Errorf("%w: second root element <%s> at line %d, column %d",
					domain.ErrMalformedDocument, qualifiedName(t.Name), line, col)
			}
			stack = append(stack, &builder{tag: qualifiedName(t.Name), attrs: convertAttrs(t.Attr)})

		case xml.EndElement:
			line, col := dec.InputPos()
			if len(stack) == 0 {
				return Node{}, fmt.Errorf("%w: unexpected end element </%s> at line %d, column %d",
					domain.ErrMalformedDocument, qualifiedName(t.Name), line, col)
			}
			top := stack[len(stack)-1]
			if name := qualifiedName(t.Name); name != top.tag {
				return Node{}, fmt.Errorf("%w: element <%s> closed by </%s> at line %d, column %d",
					domain.ErrMalformedDocument, top.tag, name, line, col)
			}
			stack = stack[:len(stack)-1]
			n := top.node()
			if len(stack) == 0 {
				root = &n
				continue
			}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, n)
			parent.text.WriteString(n.text)

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}

	if len(stack) > 0 {
		return Node{}, fmt.Errorf("%w: unclosed element <%s>", domain.ErrMalformedDocument, stack[len(stack)-1].tag)
	}
	if root == nil {
		return Node{}, fmt.Errorf("%w: no root element", domain.ErrMalformedDocument)
	}
	return *root, nil
}

// ParseFragment parses a sequence of sibling elements that has no single
// root by wrapping it in a synthetic element named rootTag.
func ParseFragment(r io.Reader, rootTag string) (Node, error) {
	wrapped := io.MultiReader(
		strings.NewReader("<"+rootTag+">"),
		r,
		strings.NewReader("</"+rootTag+">"),
	)
	return Parse(wrapped)
}

// qualifiedName rebuilds the source name of a raw token, where Space holds
// the literal prefix.
func qualifiedName(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

func convertAttrs(in []xml.Attr) []Attr {
	if len(in) == 0 {
		return nil
	}
	out := make([]Attr, len(in))
	for i, a := range in {
		out[i] = Attr{Name: qualifiedName(a.Name), Value: a.Value}
	}
	return out
}
