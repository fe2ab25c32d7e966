package htmldoc

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"e2e_locators/domain/entities"
	"e2e_locators/domain/interfaces"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

type element struct {
	node *html.Node
	doc  *Document
}

func (e *element) Key() string {
	return fmt.Sprintf("%p", e.node)
}

// Engine drives a single static document
type Engine struct {
	client   *resty.Client
	logger   *logrus.Logger
	doc      *Document
	viewport [2]int
}

// NewEngine creates an engine with an empty document
func NewEngine(client *resty.Client, logger *logrus.Logger) *Engine {
	if client == nil {
		client = resty.New()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	doc, _ := ParseString("", "about:blank")
	return &Engine{client: client, logger: logger, doc: doc}
}

// Document returns the current document
func (e *Engine) Document() *Document {
	return e.doc
}

// SetContent replaces the current document with src
func (e *Engine) SetContent(src string) error {
	doc, err := ParseString(src, "about:blank")
	if err != nil {
		return err
	}
	e.doc = doc
	return nil
}

// Navigate loads http(s), file and data:text/html URLs
func (e *Engine) Navigate(ctx context.Context, rawURL string) error {
	body, err := e.fetch(ctx, rawURL)
	if err != nil {
		return err
	}
	doc, err := Parse(bytes.NewReader(body), rawURL)
	if err != nil {
		return err
	}
	e.doc = doc
	e.logger.WithField("url", rawURL).Debug("static document loaded")
	return nil
}

func (e *Engine) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	switch {
	case rawURL == "about:blank":
		return nil, nil
	case strings.HasPrefix(rawURL, "data:"):
		meta, payload, ok := strings.Cut(strings.TrimPrefix(rawURL, "data:"), ",")
		if !ok {
			return nil, fmt.Errorf("malformed data URL")
		}
		if strings.HasSuffix(meta, ";base64") {
			return nil, fmt.Errorf("base64 data URLs are not supported")
		}
		decoded, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode data URL: %w", err)
		}
		return []byte(decoded), nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	switch u.Scheme {
	case "file":
		data, err := os.ReadFile(u.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", u.Path, err)
		}
		return data, nil
	case "http", "https":
		resp, err := e.client.R().SetContext(ctx).Get(rawURL)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("failed to fetch %s: status %d", rawURL, resp.StatusCode())
		}
		return resp.Body(), nil
	}
	return nil, fmt.Errorf("unsupported url scheme: %s", u.Scheme)
}

// SetViewport records the viewport size; the static engine has no layout
func (e *Engine) SetViewport(ctx context.Context, width, height int) error {
	e.viewport = [2]int{width, height}
	return nil
}

// QueryAll evaluates a CSS or XPath query below scope
func (e *Engine) QueryAll(ctx context.Context, scope interfaces.Element, q interfaces.Query) ([]interfaces.Element, error) {
	d := e.doc
	d.mu.Lock()
	defer d.mu.Unlock()

	top := d.root
	if scope != nil {
		n, err := e.node(scope)
		if err != nil {
			return nil, err
		}
		top = n
	}

	var nodes []*html.Node
	switch q.Language {
	case interfaces.QueryCSS:
		sel, err := cascadia.ParseGroup(q.Expr)
		if err != nil {
			return nil, fmt.Errorf("%w: css %q: %v", entities.ErrUnsupportedSelector, q.Expr, err)
		}
		nodes = cascadia.QueryAll(top, sel)
	case interfaces.QueryXPath:
		expr, err := xpath.Compile(q.Expr)
		if err != nil {
			return nil, fmt.Errorf("%w: xpath %q: %v", entities.ErrUnsupportedSelector, q.Expr, err)
		}
		for _, n := range htmlquery.QuerySelectorAll(top, expr) {
			if n.Type == html.ElementNode && (scope == nil || (n != top && isDescendant(n, top))) {
				nodes = append(nodes, n)
			}
		}
	default:
		return nil, fmt.Errorf("%w: query language %q", entities.ErrUnsupportedSelector, q.Language)
	}

	out := make([]interfaces.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &element{node: n, doc: d})
	}
	return out, nil
}

// Accessibility computes role, accessible name and heading level
func (e *Engine) Accessibility(ctx context.Context, el interfaces.Element) (entities.AXNode, error) {
	d := e.doc
	d.mu.Lock()
	defer d.mu.Unlock()

	n, err := e.node(el)
	if err != nil {
		return entities.AXNode{}, err
	}
	role := computeRole(n)
	name := d.accessibleName(n, role)
	return entities.AXNode{
		Role:    role,
		Name:    name,
		HasName: name != "",
		Level:   headingLevel(n, role),
		Hidden:  axHidden(n),
	}, nil
}

// Attribute returns the literal attribute value and its presence
func (e *Engine) Attribute(ctx context.Context, el interfaces.Element, name string) (string, bool, error) {
	d := e.doc
	d.mu.Lock()
	defer d.mu.Unlock()

	n, err := e.node(el)
	if err != nil {
		return "", false, err
	}
	v, ok := attr(n, strings.ToLower(name))
	return v, ok, nil
}

// Text returns the text content of el
func (e *Engine) Text(ctx context.Context, el interfaces.Element) (string, error) {
	d := e.doc
	d.mu.Lock()
	defer d.mu.Unlock()

	n, err := e.node(el)
	if err != nil {
		return "", err
	}
	if p := d.props[n]; p != nil && p.value != nil && contentEditable(n) {
		return *p.value, nil
	}
	return textContent(n), nil
}

// Value returns the value property of input, textarea and select elements
func (e *Engine) Value(ctx context.Context, el interfaces.Element) (string, error) {
	d := e.doc
	d.mu.Lock()
	defer d.mu.Unlock()

	n, err := e.node(el)
	if err != nil {
		return "", err
	}
	if !isElement(n, "input", "textarea", "select") {
		return "", fmt.Errorf("%w: <%s> is not a form control", entities.ErrNotEditable, n.Data)
	}
	return d.valueOf(n), nil
}

// State computes visibility, enablement, editability and checked flags
func (e *Engine) State(ctx context.Context, el interfaces.Element) (entities.ElementState, error) {
	d := e.doc
	d.mu.Lock()
	defer d.mu.Unlock()

	n, err := e.node(el)
	if err != nil {
		return entities.ElementState{}, err
	}
	return entities.ElementState{
		Visible:  !renderHidden(n),
		Enabled:  !disabled(n),
		Editable: editable(n),
		Checked:  d.checkedOf(n),
	}, nil
}

// Dispatch applies the effect of ev to the document
func (e *Engine) Dispatch(ctx context.Context, el interfaces.Element, ev entities.Event) error {
	d := e.doc
	d.mu.Lock()
	defer d.mu.Unlock()

	n, err := e.node(el)
	if err != nil {
		return err
	}

	switch ev.Kind {
	case entities.EventClick:
		d.focused = n
		if checkable(n) {
			d.setChecked(n, !d.checkedOf(n) || strings.EqualFold(attrOr(n, "type", ""), "radio"))
		}
	case entities.EventFill:
		if !editable(n) {
			return fmt.Errorf("%w: %s", entities.ErrNotEditable, describe(n))
		}
		d.focused = n
		text := ev.Text
		d.propsOf(n).value = &text
	case entities.EventCheck, entities.EventUncheck:
		if !checkable(n) {
			return fmt.Errorf("%w: %s is not a checkbox or radio button", entities.ErrNotInteractable, describe(n))
		}
		d.focused = n
		d.setChecked(n, ev.Kind == entities.EventCheck)
	case entities.EventPress:
		d.focused = n
		if ev.Key == "Tab" {
			d.focused = d.nextFocusable(n)
		}
	case entities.EventFocus:
		d.focused = n
	case entities.EventScrollIntoView:
	default:
		return fmt.Errorf("unsupported event %q", ev.Kind)
	}

	d.events = append(d.events, RecordedEvent{Target: describe(n), Event: ev})
	return nil
}

// Close drops the document
func (e *Engine) Close() error {
	e.doc, _ = ParseString("", "about:blank")
	return nil
}

func (e *Engine) node(el interfaces.Element) (*html.Node, error) {
	ref, ok := el.(*element)
	if !ok {
		return nil, fmt.Errorf("foreign element handle %T", el)
	}
	if ref.doc != e.doc || !e.doc.attached(ref.node) {
		return nil, fmt.Errorf("%w: %s", entities.ErrStaleElement, describe(ref.node))
	}
	return ref.node, nil
}

func (d *Document) valueOf(n *html.Node) string {
	if p := d.props[n]; p != nil && p.value != nil {
		return *p.value
	}
	switch n.Data {
	case "textarea":
		return strings.TrimPrefix(textContent(n), "\n")
	case "select":
		var first, selected *html.Node
		walk(n, func(o *html.Node) bool {
			if o.Data != "option" {
				return true
			}
			if first == nil {
				first = o
			}
			if hasAttr(o, "selected") {
				selected = o
				return false
			}
			return true
		})
		if selected == nil {
			selected = first
		}
		if selected == nil {
			return ""
		}
		if v, ok := attr(selected, "value"); ok {
			return v
		}
		return normalizeSpace(textContent(selected))
	}
	if v, ok := attr(n, "value"); ok {
		return v
	}
	if checkable(n) {
		return "on"
	}
	return ""
}

func (d *Document) checkedOf(n *html.Node) bool {
	if p := d.props[n]; p != nil && p.checked != nil {
		return *p.checked
	}
	if checkable(n) {
		return hasAttr(n, "checked")
	}
	return strings.EqualFold(attrOr(n, "aria-checked", ""), "true")
}

func (d *Document) setChecked(n *html.Node, checked bool) {
	if checked && strings.EqualFold(attrOr(n, "type", ""), "radio") {
		if name, ok := attr(n, "name"); ok {
			scope := closest(n, "form")
			if scope == nil {
				scope = d.root
			}
			walk(scope, func(o *html.Node) bool {
				if o != n && checkable(o) && attrOr(o, "name", "") == name {
					f := false
					d.propsOf(o).checked = &f
				}
				return true
			})
		}
	}
	d.propsOf(n).checked = &checked
}

// nextFocusable returns the focusable element following n in document
// order, or nil when n is the last one.
func (d *Document) nextFocusable(n *html.Node) *html.Node {
	passed := false
	var next *html.Node
	walk(d.root, func(c *html.Node) bool {
		if c == n {
			passed = true
			return true
		}
		if passed && focusable(c) {
			next = c
			return false
		}
		return true
	})
	return next
}

func focusable(n *html.Node) bool {
	if renderHidden(n) || disabled(n) {
		return false
	}
	if v, ok := attr(n, "tabindex"); ok {
		return !strings.HasPrefix(strings.TrimSpace(v), "-")
	}
	switch n.Data {
	case "a":
		return hasAttr(n, "href")
	case "button", "input", "select", "textarea":
		return true
	}
	return contentEditable(n)
}

func isDescendant(n, ancestor *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

var _ interfaces.Engine = (*Engine)(nil)
