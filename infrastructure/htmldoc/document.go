// Package htmldoc is an in-process engine over a parsed HTML document. It
// has no layout or script engine: visibility comes from the hidden
// attribute, inline styles and non-rendered elements only.
package htmldoc

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"e2e_locators/domain/entities"

	"golang.org/x/net/html"
)

type nodeProps struct {
	value   *string
	checked *bool
}

// Document is a parsed, mutable HTML document
type Document struct {
	mu      sync.Mutex
	url     string
	root    *html.Node
	props   map[*html.Node]*nodeProps
	focused *html.Node
	events  []RecordedEvent
}

// RecordedEvent is an event the engine dispatched, kept for inspection
type RecordedEvent struct {
	Target string
	Event  entities.Event
}

// Parse reads an HTML document
func Parse(r io.Reader, url string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &Document{
		url:   url,
		root:  root,
		props: make(map[*html.Node]*nodeProps),
	}, nil
}

// ParseString parses an HTML document held in a string
func ParseString(src, url string) (*Document, error) {
	return Parse(strings.NewReader(src), url)
}

// URL returns the address the document was loaded from
func (d *Document) URL() string {
	return d.url
}

// Mutate runs fn with exclusive access to the document tree
func (d *Document) Mutate(fn func(root *html.Node)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.root)
}

// Events returns the events dispatched so far
func (d *Document) Events() []RecordedEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]RecordedEvent, len(d.events))
	copy(out, d.events)
	return out
}

// FocusedID returns the id attribute of the focused element, "" when none
func (d *Document) FocusedID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.focused == nil {
		return ""
	}
	id, _ := attr(d.focused, "id")
	return id
}

func (d *Document) attached(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == d.root {
			return true
		}
	}
	return false
}

func (d *Document) propsOf(n *html.Node) *nodeProps {
	p, ok := d.props[n]
	if !ok {
		p = &nodeProps{}
		d.props[n] = p
	}
	return p
}

func (d *Document) elementByID(id string) *html.Node {
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if v, ok := attr(n, "id"); ok && v == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// walk visits element nodes below n in document order until fn returns false
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && !fn(c) {
			return false
		}
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func hasAttr(n *html.Node, name string) bool {
	_, ok := attr(n, name)
	return ok
}

func isElement(n *html.Node, tags ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, t := range tags {
		if n.Data == t {
			return true
		}
	}
	return len(tags) == 0
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				b.WriteString(c.Data)
			case html.ElementNode:
				collect(c)
			}
		}
	}
	collect(n)
	return b.String()
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func describe(n *html.Node) string {
	if id, ok := attr(n, "id"); ok {
		return n.Data + "#" + id
	}
	if name, ok := attr(n, "name"); ok {
		return fmt.Sprintf("%s[name=%q]", n.Data, name)
	}
	return n.Data
}
