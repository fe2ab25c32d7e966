package browser

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"e2e_locators/domain/entities"
	"e2e_locators/domain/interfaces"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/sirupsen/logrus"
)

const clearValueJS = `function (el) {
  el.focus();
  if (el.isContentEditable) {
    el.textContent = '';
  } else {
    el.value = '';
  }
  el.dispatchEvent(new Event('input', { bubbles: true }));
}`

// ChromedpFactory owns a Chrome process started through an exec allocator.
// Every engine is a new tab of that browser.
type ChromedpFactory struct {
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	opts          Options
	logger        *logrus.Logger

	mu     sync.Mutex
	closed bool
}

// NewChromedpFactory - launches Chrome and waits until it is ready
func NewChromedpFactory(opts Options, logger *logrus.Logger) (*ChromedpFactory, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.WindowSize(opts.ViewportWidth, opts.ViewportHeight),
	)
	if opts.BrowserPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.BrowserPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logger.Debugf),
		chromedp.WithErrorf(logger.Debugf),
	)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}

	return &ChromedpFactory{
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		opts:          opts,
		logger:        logger,
	}, nil
}

func (f *ChromedpFactory) Name() string {
	return "chromedp"
}

// NewEngine - opens a new tab
func (f *ChromedpFactory) NewEngine(ctx context.Context) (interfaces.Engine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, fmt.Errorf("chromedp factory is closed")
	}

	tabCtx, cancel := chromedp.NewContext(f.browserCtx)
	engine := &chromedpEngine{ctx: tabCtx, cancel: cancel, logger: f.logger}
	if err := engine.run(ctx, chromedp.EmulateViewport(int64(f.opts.ViewportWidth), int64(f.opts.ViewportHeight))); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}
	return engine, nil
}

// Close - closes the browser and the allocator
func (f *ChromedpFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true

	err := chromedp.Cancel(f.browserCtx)
	f.browserCancel()
	f.allocCancel()
	if err != nil {
		return fmt.Errorf("failed to close chrome: %w", err)
	}
	return nil
}

type chromedpElement struct {
	node *cdp.Node
}

func (e *chromedpElement) Key() string {
	return strconv.FormatInt(int64(e.node.BackendNodeID), 10)
}

type chromedpEngine struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *logrus.Logger
}

// run executes actions on the tab, bounded by the caller's ctx
func (c *chromedpEngine) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(c.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return classify(err)
	}
	return nil
}

func (c *chromedpEngine) Navigate(ctx context.Context, url string) error {
	return c.run(ctx, chromedp.Navigate(url))
}

func (c *chromedpEngine) SetViewport(ctx context.Context, width, height int) error {
	return c.run(ctx, chromedp.EmulateViewport(int64(width), int64(height)))
}

// QueryAll runs CSS queries from the scope node. XPath goes through
// DOM.performSearch, which only searches the whole document, so scoped
// XPath results are filtered by ancestry.
func (c *chromedpEngine) QueryAll(ctx context.Context, scope interfaces.Element, q interfaces.Query) ([]interfaces.Element, error) {
	var parent *cdp.Node
	if scope != nil {
		n, err := c.node(scope)
		if err != nil {
			return nil, err
		}
		parent = n
	}

	var nodes []*cdp.Node
	var err error
	switch q.Language {
	case interfaces.QueryXPath:
		err = c.run(ctx, chromedp.Nodes(q.Expr, &nodes, chromedp.BySearch, chromedp.AtLeast(0)))
	default:
		opts := []chromedp.QueryOption{chromedp.ByQueryAll, chromedp.AtLeast(0)}
		if parent != nil {
			opts = append(opts, chromedp.FromNode(parent))
		}
		err = c.run(ctx, chromedp.Nodes(q.Expr, &nodes, opts...))
	}
	if err != nil {
		return nil, err
	}

	out := make([]interfaces.Element, 0, len(nodes))
	for _, n := range nodes {
		if n.NodeType != cdp.NodeTypeElement {
			continue
		}
		if parent != nil && !descendantOf(n, parent) {
			continue
		}
		out = append(out, &chromedpElement{node: n})
	}
	return out, nil
}

func (c *chromedpEngine) Accessibility(ctx context.Context, el interfaces.Element) (entities.AXNode, error) {
	var m map[string]interface{}
	if err := c.call(ctx, el, accessibilityJS, &m); err != nil {
		return entities.AXNode{}, err
	}
	return axFromMap(m), nil
}

func (c *chromedpEngine) Attribute(ctx context.Context, el interfaces.Element, name string) (string, bool, error) {
	var v *string
	if err := c.call(ctx, el, attributeJS, &v, name); err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (c *chromedpEngine) Text(ctx context.Context, el interfaces.Element) (string, error) {
	var v *string
	if err := c.call(ctx, el, textJS, &v); err != nil || v == nil {
		return "", err
	}
	return *v, nil
}

func (c *chromedpEngine) Value(ctx context.Context, el interfaces.Element) (string, error) {
	var m map[string]interface{}
	if err := c.call(ctx, el, valueJS, &m); err != nil {
		return "", err
	}
	if !getBool(m, "control") {
		return "", fmt.Errorf("%w: element is not a form control", entities.ErrNotEditable)
	}
	return getString(m, "value"), nil
}

func (c *chromedpEngine) State(ctx context.Context, el interfaces.Element) (entities.ElementState, error) {
	var m map[string]interface{}
	if err := c.call(ctx, el, stateJS, &m); err != nil {
		return entities.ElementState{}, err
	}
	return stateFromMap(m), nil
}

func (c *chromedpEngine) Dispatch(ctx context.Context, el interfaces.Element, ev entities.Event) error {
	n, err := c.node(el)
	if err != nil {
		return err
	}

	switch ev.Kind {
	case entities.EventClick, entities.EventCheck, entities.EventUncheck:
		// MouseClickNode scrolls the node into view before clicking
		return c.run(ctx, chromedp.MouseClickNode(n))
	case entities.EventFill:
		if err := c.call(ctx, el, clearValueJS, nil); err != nil {
			return err
		}
		if ev.Text == "" {
			return nil
		}
		return c.run(ctx, input.InsertText(ev.Text))
	case entities.EventPress:
		return c.run(ctx, chromedp.KeyEventNode(n, chromedpKey(ev.Key)))
	case entities.EventFocus:
		return c.run(ctx, dom.Focus().WithBackendNodeID(n.BackendNodeID))
	case entities.EventScrollIntoView:
		return c.run(ctx, dom.ScrollIntoViewIfNeeded().WithBackendNodeID(n.BackendNodeID))
	}
	return fmt.Errorf("unsupported event %q", ev.Kind)
}

// Close - closes the tab
func (c *chromedpEngine) Close() error {
	if c.cancel == nil {
		return nil
	}
	err := chromedp.Cancel(c.ctx)
	c.cancel()
	c.cancel = nil
	if err != nil {
		return fmt.Errorf("failed to close tab: %w", err)
	}
	return nil
}

func (c *chromedpEngine) call(ctx context.Context, el interfaces.Element, fn string, res interface{}, args ...interface{}) error {
	n, err := c.node(el)
	if err != nil {
		return err
	}
	return c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithBackendNodeID(n.BackendNodeID).Do(ctx)
		if err != nil {
			return err
		}
		defer func() {
			_ = runtime.ReleaseObject(obj.ObjectID).Do(ctx)
		}()
		return callOnObject(obj.ObjectID, fn, res, args...).Do(ctx)
	}))
}

// callOnObject runs fn with the remote object bound as its element argument
func callOnObject(id runtime.RemoteObjectID, fn string, res interface{}, args ...interface{}) chromedp.Action {
	return chromedp.CallFunctionOn(cdpFunction(fn), res, onObject(id), args...)
}

func onObject(id runtime.RemoteObjectID) chromedp.CallOption {
	return func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
		return p.WithObjectID(id)
	}
}

func (c *chromedpEngine) node(el interfaces.Element) (*cdp.Node, error) {
	ref, ok := el.(*chromedpElement)
	if !ok {
		return nil, fmt.Errorf("foreign element handle %T", el)
	}
	return ref.node, nil
}

func descendantOf(n, ancestor *cdp.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == ancestor || (p.BackendNodeID != 0 && p.BackendNodeID == ancestor.BackendNodeID) {
			return true
		}
	}
	return false
}

var chromedpKeys = map[string]string{
	"Tab":        kb.Tab,
	"Enter":      kb.Enter,
	"Escape":     kb.Escape,
	"Backspace":  kb.Backspace,
	"Delete":     kb.Delete,
	"Space":      " ",
	"ArrowUp":    kb.ArrowUp,
	"ArrowDown":  kb.ArrowDown,
	"ArrowLeft":  kb.ArrowLeft,
	"ArrowRight": kb.ArrowRight,
	"Home":       kb.Home,
	"End":        kb.End,
}

func chromedpKey(name string) string {
	if k, ok := chromedpKeys[name]; ok {
		return k
	}
	return name
}
