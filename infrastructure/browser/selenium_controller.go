package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"e2e_locators/domain/entities"
	"e2e_locators/domain/interfaces"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
)

// SeleniumFactory owns one chromedriver service; every engine is a
// separate WebDriver session against it.
type SeleniumFactory struct {
	service *selenium.Service
	port    int
	opts    Options
	logger  *logrus.Logger

	mu     sync.Mutex
	closed bool
}

// findChromeDriver - finds ChromeDriver executable path
func findChromeDriver(configured string) (string, error) {
	for _, path := range []string{configured, os.Getenv("BROWSER_DRIVER_PATH")} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	commonPaths := []string{
		"/usr/local/bin/chromedriver",
		"/usr/bin/chromedriver",
		"/opt/homebrew/bin/chromedriver",
		filepath.Join(os.Getenv("HOME"), "bin", "chromedriver"),
	}

	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if path, err := exec.LookPath("chromedriver"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("chromedriver not found. Please install it or set E2E_DRIVER_PATH")
}

// findChromeBinary - finds Chrome/Chromium browser executable path
func findChromeBinary(configured string) string {
	for _, path := range []string{configured, os.Getenv("CHROME_BINARY_PATH")} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	chromePaths := []string{
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
	}

	for _, path := range chromePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	return ""
}

// NewSeleniumFactory - starts chromedriver on the configured port
func NewSeleniumFactory(opts Options, logger *logrus.Logger) (*SeleniumFactory, error) {
	driverPath, err := findChromeDriver(opts.DriverPath)
	if err != nil {
		return nil, fmt.Errorf("failed to find chromedriver: %w", err)
	}
	logger.Infof("Using ChromeDriver at: %s", driverPath)

	port := opts.DriverPort
	if port == 0 {
		port = 9515
	}
	service, err := selenium.NewChromeDriverService(driverPath, port)
	if err != nil {
		return nil, fmt.Errorf("failed to start chromedriver: %w", err)
	}

	return &SeleniumFactory{service: service, port: port, opts: opts, logger: logger}, nil
}

func (f *SeleniumFactory) Name() string {
	return "selenium"
}

// NewEngine - opens a new WebDriver session
func (f *SeleniumFactory) NewEngine(ctx context.Context) (interfaces.Engine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, fmt.Errorf("selenium factory is closed")
	}

	caps := selenium.Capabilities{
		"browserName": "chrome",
	}

	chromeCaps := chrome.Capabilities{
		Args: []string{
			"--disable-dev-shm-usage",
			"--no-sandbox",
			fmt.Sprintf("--window-size=%d,%d", f.opts.ViewportWidth, f.opts.ViewportHeight),
		},
	}
	if f.opts.Headless {
		chromeCaps.Args = append(chromeCaps.Args, "--headless=new")
	}
	if chromeBinary := findChromeBinary(f.opts.BrowserPath); chromeBinary != "" {
		chromeCaps.Path = chromeBinary
	}
	caps.AddChrome(chromeCaps)

	wd, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d/wd/hub", f.port))
	if err != nil {
		if strings.Contains(err.Error(), "cannot find Chrome binary") {
			return nil, fmt.Errorf("failed to create webdriver: Chrome browser not found, set E2E_BROWSER_PATH: %w", err)
		}
		return nil, fmt.Errorf("failed to create webdriver: %w", err)
	}

	return &seleniumEngine{wd: wd, logger: f.logger}, nil
}

// Close - stops chromedriver
func (f *SeleniumFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	if err := f.service.Stop(); err != nil {
		return fmt.Errorf("failed to stop chromedriver: %w", err)
	}
	return nil
}

type seleniumElement struct {
	we  selenium.WebElement
	key string
}

func (e *seleniumElement) Key() string {
	return e.key
}

type seleniumEngine struct {
	wd     selenium.WebDriver
	logger *logrus.Logger
}

// Navigate - navigates browser to specified URL
func (s *seleniumEngine) Navigate(ctx context.Context, url string) error {
	if deadline, ok := ctx.Deadline(); ok {
		if err := s.wd.SetPageLoadTimeout(time.Until(deadline)); err != nil {
			s.logger.Warnf("Failed to set page load timeout: %v", err)
		}
	}
	return s.wd.Get(url)
}

func (s *seleniumEngine) SetViewport(ctx context.Context, width, height int) error {
	return s.wd.ResizeWindow("", width, height)
}

func (s *seleniumEngine) QueryAll(ctx context.Context, scope interfaces.Element, q interfaces.Query) ([]interfaces.Element, error) {
	by := selenium.ByCSSSelector
	if q.Language == interfaces.QueryXPath {
		by = selenium.ByXPATH
	}

	var (
		found []selenium.WebElement
		err   error
	)
	if scope == nil {
		found, err = s.wd.FindElements(by, q.Expr)
	} else {
		parent, perr := s.element(scope)
		if perr != nil {
			return nil, perr
		}
		found, err = parent.FindElements(by, q.Expr)
	}
	if err != nil {
		if isNoSuchElement(err) {
			return nil, nil
		}
		return nil, classify(err)
	}

	out := make([]interfaces.Element, 0, len(found))
	for _, we := range found {
		key, err := s.wd.ExecuteScript(seleniumScript(keyJS), []interface{}{we})
		if err != nil {
			return nil, classify(err)
		}
		out = append(out, &seleniumElement{we: we, key: fmt.Sprint(key)})
	}
	return out, nil
}

func (s *seleniumEngine) Accessibility(ctx context.Context, el interfaces.Element) (entities.AXNode, error) {
	m, err := s.scriptMap(el, accessibilityJS)
	if err != nil {
		return entities.AXNode{}, err
	}
	return axFromMap(m), nil
}

func (s *seleniumEngine) Attribute(ctx context.Context, el interfaces.Element, name string) (string, bool, error) {
	v, err := s.script(el, attributeJS, name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return fmt.Sprint(v), true, nil
}

func (s *seleniumEngine) Text(ctx context.Context, el interfaces.Element) (string, error) {
	v, err := s.script(el, textJS)
	if err != nil || v == nil {
		return "", err
	}
	return fmt.Sprint(v), nil
}

func (s *seleniumEngine) Value(ctx context.Context, el interfaces.Element) (string, error) {
	m, err := s.scriptMap(el, valueJS)
	if err != nil {
		return "", err
	}
	if !getBool(m, "control") {
		return "", fmt.Errorf("%w: element is not a form control", entities.ErrNotEditable)
	}
	return getString(m, "value"), nil
}

func (s *seleniumEngine) State(ctx context.Context, el interfaces.Element) (entities.ElementState, error) {
	m, err := s.scriptMap(el, stateJS)
	if err != nil {
		return entities.ElementState{}, err
	}
	return stateFromMap(m), nil
}

func (s *seleniumEngine) Dispatch(ctx context.Context, el interfaces.Element, ev entities.Event) error {
	we, err := s.element(el)
	if err != nil {
		return err
	}

	switch ev.Kind {
	case entities.EventClick, entities.EventCheck, entities.EventUncheck:
		err = we.Click()
	case entities.EventFill:
		if err = we.Clear(); err == nil && ev.Text != "" {
			err = we.SendKeys(ev.Text)
		}
	case entities.EventPress:
		err = we.SendKeys(seleniumKey(ev.Key))
	case entities.EventFocus:
		_, err = s.script(el, focusJS)
	case entities.EventScrollIntoView:
		_, err = s.script(el, scrollJS)
	default:
		return fmt.Errorf("unsupported event %q", ev.Kind)
	}
	return classify(err)
}

// Close - ends the WebDriver session
func (s *seleniumEngine) Close() error {
	if s.wd == nil {
		return nil
	}
	err := s.wd.Quit()
	s.wd = nil
	return err
}

func (s *seleniumEngine) element(el interfaces.Element) (selenium.WebElement, error) {
	ref, ok := el.(*seleniumElement)
	if !ok {
		return nil, fmt.Errorf("foreign element handle %T", el)
	}
	return ref.we, nil
}

func (s *seleniumEngine) script(el interfaces.Element, fn string, args ...interface{}) (interface{}, error) {
	we, err := s.element(el)
	if err != nil {
		return nil, err
	}
	v, err := s.wd.ExecuteScript(seleniumScript(fn), append([]interface{}{we}, args...))
	if err != nil {
		return nil, classify(err)
	}
	return v, nil
}

func (s *seleniumEngine) scriptMap(el interfaces.Element, fn string) (map[string]interface{}, error) {
	v, err := s.script(el, fn)
	if err != nil {
		return nil, err
	}
	return asMap(v)
}

var seleniumKeys = map[string]string{
	"Tab":        selenium.TabKey,
	"Enter":      selenium.EnterKey,
	"Escape":     selenium.EscapeKey,
	"Backspace":  selenium.BackspaceKey,
	"Delete":     selenium.DeleteKey,
	"Space":      selenium.SpaceKey,
	"ArrowUp":    selenium.UpArrowKey,
	"ArrowDown":  selenium.DownArrowKey,
	"ArrowLeft":  selenium.LeftArrowKey,
	"ArrowRight": selenium.RightArrowKey,
	"Home":       selenium.HomeKey,
	"End":        selenium.EndKey,
}

// seleniumKey maps a key name to the WebDriver key code. Unknown names are
// typed literally.
func seleniumKey(name string) string {
	if k, ok := seleniumKeys[name]; ok {
		return k
	}
	return name
}

func isNoSuchElement(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "no such element")
}
