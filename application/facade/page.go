// Package facade resolves locators against a live document through an
// automation engine and performs actions and reads on the matched elements.
package facade

import (
	"context"
	"fmt"
	"time"

	"e2e_locators/domain/entities"
	"e2e_locators/domain/interfaces"

	"github.com/sirupsen/logrus"
)

const (
	DefaultNavigationTimeout = 30 * time.Second
	DefaultWaitTimeout       = 5 * time.Second
	DefaultExpectTimeout     = 5 * time.Second
	DefaultPollInterval      = 100 * time.Millisecond
)

// Options configures the explicit timeouts of a page. Zero values fall back
// to the package defaults.
type Options struct {
	NavigationTimeout time.Duration
	WaitTimeout       time.Duration
	ExpectTimeout     time.Duration
	PollInterval      time.Duration
}

func (o Options) withDefaults() Options {
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = DefaultNavigationTimeout
	}
	if o.WaitTimeout <= 0 {
		o.WaitTimeout = DefaultWaitTimeout
	}
	if o.ExpectTimeout <= 0 {
		o.ExpectTimeout = DefaultExpectTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	return o
}

// Page is the entry point for one test procedure. It owns nothing but a
// reference to the engine driving the procedure's document.
type Page struct {
	engine interfaces.Engine
	opts   Options
	logger *logrus.Logger
}

// NewPage creates a page over engine
func NewPage(engine interfaces.Engine, opts Options, logger *logrus.Logger) *Page {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Page{
		engine: engine,
		opts:   opts.withDefaults(),
		logger: logger,
	}
}

// Options returns the effective timeouts
func (p *Page) Options() Options {
	return p.opts
}

// Navigate loads url, bounded by the navigation timeout
func (p *Page) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, p.opts.NavigationTimeout)
	defer cancel()

	p.logger.WithField("url", url).Debug("navigating")
	if err := p.engine.Navigate(navCtx, url); err != nil {
		if navCtx.Err() != nil && ctx.Err() == nil {
			return fmt.Errorf("%w: navigation to %s after %s", entities.ErrTimeout, url, p.opts.NavigationTimeout)
		}
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// SetViewport resizes the viewport
func (p *Page) SetViewport(ctx context.Context, width, height int) error {
	if err := p.engine.SetViewport(ctx, width, height); err != nil {
		return fmt.Errorf("failed to set viewport %dx%d: %w", width, height, err)
	}
	return nil
}

// Pause suspends the procedure for d, returning early when ctx is done
func (p *Page) Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Locator creates a lazy query for sel over the whole document
func (p *Page) Locator(sel entities.Selector) *Locator {
	return &Locator{page: p, sel: sel}
}

// GetByRole locates elements by ARIA role
func (p *Page) GetByRole(role string, opts ...entities.RoleOption) *Locator {
	return p.Locator(entities.Role(role, opts...))
}

// GetByText locates the deepest elements containing text
func (p *Page) GetByText(text string) *Locator {
	return p.Locator(entities.Text(text))
}
