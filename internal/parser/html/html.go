package html

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Parser reads rendered HTML snapshots
type Parser struct{}

// Element is an element node reduced to its tag and attributes
type Element struct {
	Tag   string
	Attrs map[string]string
	// Depth is the nesting depth below the document root
	Depth int
}

// Attr returns the attribute value and whether it is present
func (e *Element) Attr(key string) (string, bool) {
	v, ok := e.Attrs[key]
	return v, ok
}

// Document represents a parsed HTML document
type Document struct {
	Root *html.Node
}

// NewParser creates a new HTML parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseString parses HTML from a string
func (p *Parser) ParseString(content string) (*Document, error) {
	return p.Parse(strings.NewReader(content))
}

// Parse parses HTML from an io.Reader
func (p *Parser) Parse(r io.Reader) (*Document, error) {
	node, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return &Document{Root: node}, nil
}

// ElementsWithAttr returns every element carrying the attribute, in document order
func (d *Document) ElementsWithAttr(key string) []*Element {
	var out []*Element
	if d == nil || d.Root == nil {
		return out
	}
	var walk func(n *html.Node, depth int)
	walk = func(n *html.Node, depth int) {
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if a.Namespace == "" && strings.EqualFold(a.Key, key) {
					out = append(out, convertElement(n, depth))
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, depth+1)
		}
	}
	walk(d.Root, 0)
	return out
}

// convertElement copies an html.Node's attributes into an Element
func convertElement(n *html.Node, depth int) *Element {
	el := &Element{
		Tag:   n.Data,
		Attrs: make(map[string]string, len(n.Attr)),
		Depth: depth,
	}
	for _, a := range n.Attr {
		el.Attrs[strings.ToLower(a.Key)] = a.Val
	}
	return el
}
