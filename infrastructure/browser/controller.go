package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"e2e_locators/domain/entities"
	"e2e_locators/domain/interfaces"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// PlaywrightFactory owns the playwright driver and one launched browser.
// Every engine gets its own browser context and page.
type PlaywrightFactory struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options
	logger  *logrus.Logger

	mu     sync.Mutex
	closed bool
}

// NewPlaywrightFactory - starts playwright and launches the configured browser
func NewPlaywrightFactory(opts Options, logger *logrus.Logger) (*PlaywrightFactory, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	var browserType playwright.BrowserType
	switch strings.ToLower(opts.Browser) {
	case "", "chromium", "chrome":
		browserType = pw.Chromium
	case "firefox":
		browserType = pw.Firefox
	case "webkit":
		browserType = pw.WebKit
	default:
		_ = pw.Stop()
		return nil, fmt.Errorf("unknown playwright browser %q", opts.Browser)
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if opts.SlowMo > 0 {
		launch.SlowMo = playwright.Float(float64(opts.SlowMo.Milliseconds()))
	}
	if browserType == pw.Chromium {
		launch.Args = []string{
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-setuid-sandbox",
		}
	}

	browser, err := browserType.Launch(launch)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"browser":  browserType.Name(),
		"headless": opts.Headless,
	}).Debug("playwright browser launched")

	return &PlaywrightFactory{pw: pw, browser: browser, opts: opts, logger: logger}, nil
}

func (f *PlaywrightFactory) Name() string {
	return "playwright"
}

// NewEngine - creates an isolated browser context with a single page
func (f *PlaywrightFactory) NewEngine(ctx context.Context) (interfaces.Engine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, fmt.Errorf("playwright factory is closed")
	}

	contextOptions := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  f.opts.ViewportWidth,
			Height: f.opts.ViewportHeight,
		},
		JavaScriptEnabled: playwright.Bool(true),
		IgnoreHttpsErrors: playwright.Bool(true),
	}

	bctx, err := f.browser.NewContext(contextOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	page.OnDialog(func(dialog playwright.Dialog) {
		_ = dialog.Accept()
	})

	return &playwrightEngine{context: bctx, page: page, logger: f.logger}, nil
}

// Close - closes the browser and stops the driver
func (f *PlaywrightFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true

	var err error
	if closeErr := f.browser.Close(); closeErr != nil && !isClosedError(closeErr) {
		err = multierr.Append(err, fmt.Errorf("failed to close browser: %w", closeErr))
	}
	if stopErr := f.pw.Stop(); stopErr != nil {
		err = multierr.Append(err, fmt.Errorf("failed to stop playwright: %w", stopErr))
	}
	return err
}

type playwrightElement struct {
	handle playwright.ElementHandle
	key    string
}

func (e *playwrightElement) Key() string {
	return e.key
}

type playwrightEngine struct {
	context playwright.BrowserContext
	page    playwright.Page
	logger  *logrus.Logger
}

// Navigate - navigates to the specified URL and waits for the load event
func (b *playwrightEngine) Navigate(ctx context.Context, url string) error {
	_, err := b.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   timeoutMs(ctx),
	})
	return err
}

func (b *playwrightEngine) SetViewport(ctx context.Context, width, height int) error {
	return b.page.SetViewportSize(width, height)
}

func (b *playwrightEngine) QueryAll(ctx context.Context, scope interfaces.Element, q interfaces.Query) ([]interfaces.Element, error) {
	selector := string(q.Language) + "=" + q.Expr

	var (
		handles []playwright.ElementHandle
		err     error
	)
	if scope == nil {
		handles, err = b.page.QuerySelectorAll(selector)
	} else {
		parent, perr := b.handle(scope)
		if perr != nil {
			return nil, perr
		}
		handles, err = parent.QuerySelectorAll(selector)
	}
	if err != nil {
		return nil, classify(err)
	}

	out := make([]interfaces.Element, 0, len(handles))
	for _, h := range handles {
		key, err := h.Evaluate(pwFunction(keyJS))
		if err != nil {
			return nil, classify(err)
		}
		out = append(out, &playwrightElement{handle: h, key: fmt.Sprint(key)})
	}
	return out, nil
}

func (b *playwrightEngine) Accessibility(ctx context.Context, el interfaces.Element) (entities.AXNode, error) {
	m, err := b.evaluateMap(el, accessibilityJS)
	if err != nil {
		return entities.AXNode{}, err
	}
	return axFromMap(m), nil
}

func (b *playwrightEngine) Attribute(ctx context.Context, el interfaces.Element, name string) (string, bool, error) {
	h, err := b.handle(el)
	if err != nil {
		return "", false, err
	}
	v, err := h.Evaluate(pwFunction(attributeJS), name)
	if err != nil {
		return "", false, classify(err)
	}
	if v == nil {
		return "", false, nil
	}
	return fmt.Sprint(v), true, nil
}

func (b *playwrightEngine) Text(ctx context.Context, el interfaces.Element) (string, error) {
	h, err := b.handle(el)
	if err != nil {
		return "", err
	}
	v, err := h.Evaluate(pwFunction(textJS))
	if err != nil {
		return "", classify(err)
	}
	if v == nil {
		return "", nil
	}
	return fmt.Sprint(v), nil
}

func (b *playwrightEngine) Value(ctx context.Context, el interfaces.Element) (string, error) {
	m, err := b.evaluateMap(el, valueJS)
	if err != nil {
		return "", err
	}
	if !getBool(m, "control") {
		return "", fmt.Errorf("%w: element is not a form control", entities.ErrNotEditable)
	}
	return getString(m, "value"), nil
}

func (b *playwrightEngine) State(ctx context.Context, el interfaces.Element) (entities.ElementState, error) {
	m, err := b.evaluateMap(el, stateJS)
	if err != nil {
		return entities.ElementState{}, err
	}
	return stateFromMap(m), nil
}

// Dispatch - performs the event through playwright's actionability-checked input
func (b *playwrightEngine) Dispatch(ctx context.Context, el interfaces.Element, ev entities.Event) error {
	h, err := b.handle(el)
	if err != nil {
		return err
	}
	timeout := timeoutMs(ctx)

	switch ev.Kind {
	case entities.EventClick:
		err = h.Click(playwright.ElementHandleClickOptions{Timeout: timeout})
	case entities.EventFill:
		err = h.Fill(ev.Text, playwright.ElementHandleFillOptions{Timeout: timeout})
	case entities.EventCheck:
		err = h.Check(playwright.ElementHandleCheckOptions{Timeout: timeout})
	case entities.EventUncheck:
		err = h.Uncheck(playwright.ElementHandleUncheckOptions{Timeout: timeout})
	case entities.EventPress:
		err = h.Press(ev.Key, playwright.ElementHandlePressOptions{Timeout: timeout})
	case entities.EventFocus:
		err = h.Focus()
	case entities.EventScrollIntoView:
		err = h.ScrollIntoViewIfNeeded(playwright.ElementHandleScrollIntoViewIfNeededOptions{Timeout: timeout})
	default:
		return fmt.Errorf("unsupported event %q", ev.Kind)
	}
	return classify(err)
}

// Close - closes the browser context of this engine
func (b *playwrightEngine) Close() error {
	if b.context == nil {
		return nil
	}
	err := b.context.Close()
	b.context = nil
	if err != nil && !isClosedError(err) {
		return fmt.Errorf("failed to close context: %w", err)
	}
	return nil
}

func (b *playwrightEngine) handle(el interfaces.Element) (playwright.ElementHandle, error) {
	ref, ok := el.(*playwrightElement)
	if !ok {
		return nil, fmt.Errorf("foreign element handle %T", el)
	}
	return ref.handle, nil
}

func (b *playwrightEngine) evaluateMap(el interfaces.Element, fn string) (map[string]interface{}, error) {
	h, err := b.handle(el)
	if err != nil {
		return nil, err
	}
	v, err := h.Evaluate(pwFunction(fn))
	if err != nil {
		return nil, classify(err)
	}
	return asMap(v)
}

func pwFunction(fn string) string {
	return "(" + strings.TrimSpace(fn) + ")"
}

// timeoutMs converts the context deadline into a playwright timeout. Zero
// disables playwright's own default timeout when ctx has no deadline.
func timeoutMs(ctx context.Context) *float64 {
	deadline, ok := ctx.Deadline()
	if !ok {
		return playwright.Float(0)
	}
	ms := float64(time.Until(deadline).Milliseconds())
	if ms < 1 {
		ms = 1
	}
	return playwright.Float(ms)
}

func isClosedError(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "closed") || strings.Contains(errStr, "target closed")
}
