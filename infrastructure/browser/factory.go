// Package browser adapts real browsers to the engine port: playwright-go,
// chromedp and selenium, plus a name-based factory that also offers the
// static HTML engine.
package browser

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"e2e_locators/domain/interfaces"
	"e2e_locators/infrastructure/htmldoc"

	"github.com/sirupsen/logrus"
)

// Options configures how a factory launches its browser
type Options struct {
	Browser        string
	Headless       bool
	SlowMo         time.Duration
	ViewportWidth  int
	ViewportHeight int
	BrowserPath    string
	DriverPath     string
	DriverPort     int
	HTTPTimeout    time.Duration
}

func (o Options) withDefaults() Options {
	if o.ViewportWidth <= 0 {
		o.ViewportWidth = 1280
	}
	if o.ViewportHeight <= 0 {
		o.ViewportHeight = 720
	}
	if o.HTTPTimeout <= 0 {
		o.HTTPTimeout = 30 * time.Second
	}
	return o
}

type constructor func(opts Options, logger *logrus.Logger) (interfaces.EngineFactory, error)

var constructors = map[string]constructor{
	"playwright": func(opts Options, logger *logrus.Logger) (interfaces.EngineFactory, error) {
		return NewPlaywrightFactory(opts, logger)
	},
	"chromedp": func(opts Options, logger *logrus.Logger) (interfaces.EngineFactory, error) {
		return NewChromedpFactory(opts, logger)
	},
	"selenium": func(opts Options, logger *logrus.Logger) (interfaces.EngineFactory, error) {
		return NewSeleniumFactory(opts, logger)
	},
	"static": func(opts Options, logger *logrus.Logger) (interfaces.EngineFactory, error) {
		return htmldoc.NewFactory(opts.HTTPTimeout, logger), nil
	},
}

// EngineNames lists the engines NewFactory accepts
func EngineNames() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewFactory creates the engine factory registered under name
func NewFactory(name string, opts Options, logger *logrus.Logger) (interfaces.EngineFactory, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	newFactory, ok := constructors[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown engine %q (available: %s)", name, strings.Join(EngineNames(), ", "))
	}
	return newFactory(opts.withDefaults(), logger)
}

var (
	_ interfaces.EngineFactory = (*PlaywrightFactory)(nil)
	_ interfaces.EngineFactory = (*ChromedpFactory)(nil)
	_ interfaces.EngineFactory = (*SeleniumFactory)(nil)
	_ interfaces.Engine        = (*playwrightEngine)(nil)
	_ interfaces.Engine        = (*chromedpEngine)(nil)
	_ interfaces.Engine        = (*seleniumEngine)(nil)
)
