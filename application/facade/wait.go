package facade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"e2e_locators/domain/entities"
)

// Condition is a predicate over a locator. Check returns whether the
// condition holds and the observed value it was decided on.
type Condition struct {
	Name  string
	Check func(ctx context.Context, l *Locator) (bool, any, error)
}

// Predicate wraps a custom predicate as a Condition
func Predicate(name string, fn func(ctx context.Context, l *Locator) (bool, error)) Condition {
	return Condition{
		Name: name,
		Check: func(ctx context.Context, l *Locator) (bool, any, error) {
			ok, err := fn(ctx, l)
			return ok, ok, err
		},
	}
}

// Attached holds once the locator matches at least one element
func Attached() Condition {
	return Condition{Name: "attached", Check: func(ctx context.Context, l *Locator) (bool, any, error) {
		n, err := l.Count(ctx)
		return n > 0, n, err
	}}
}

// Detached holds once the locator matches nothing
func Detached() Condition {
	return Condition{Name: "detached", Check: func(ctx context.Context, l *Locator) (bool, any, error) {
		n, err := l.Count(ctx)
		return n == 0, n, err
	}}
}

// HasCount holds once the locator matches exactly n elements
func HasCount(n int) Condition {
	return Condition{Name: "count", Check: func(ctx context.Context, l *Locator) (bool, any, error) {
		got, err := l.Count(ctx)
		return got == n, got, err
	}}
}

// Visible holds once the single match is visible
func Visible() Condition {
	return Condition{Name: "visible", Check: func(ctx context.Context, l *Locator) (bool, any, error) {
		v, err := l.IsVisible(ctx)
		return v, v, err
	}}
}

// Hidden holds once the locator matches nothing or a hidden element
func Hidden() Condition {
	return Condition{Name: "hidden", Check: func(ctx context.Context, l *Locator) (bool, any, error) {
		v, err := l.IsVisible(ctx)
		return !v, !v, err
	}}
}

// Enabled holds once the single match is enabled
func Enabled() Condition {
	return stateCondition("enabled", func(s entities.ElementState) bool { return s.Enabled })
}

// Disabled holds once the single match is disabled
func Disabled() Condition {
	return stateCondition("disabled", func(s entities.ElementState) bool { return !s.Enabled })
}

// Editable holds once the single match accepts Fill
func Editable() Condition {
	return stateCondition("editable", func(s entities.ElementState) bool { return s.Editable })
}

// Checked holds once the single match is checked
func Checked() Condition {
	return stateCondition("checked", func(s entities.ElementState) bool { return s.Checked })
}

// HasValue holds once the value of the single match equals value
func HasValue(value string) Condition {
	return Condition{Name: "value", Check: func(ctx context.Context, l *Locator) (bool, any, error) {
		got, err := l.InputValue(ctx)
		return err == nil && got == value, got, err
	}}
}

// HasText holds once the text content of the single match equals text
func HasText(text string) Condition {
	return Condition{Name: "text", Check: func(ctx context.Context, l *Locator) (bool, any, error) {
		got, err := l.TextContent(ctx)
		return err == nil && got == text, got, err
	}}
}

// HasAttribute holds once the single match carries the attribute
func HasAttribute(name string) Condition {
	return Condition{Name: "attribute " + name, Check: func(ctx context.Context, l *Locator) (bool, any, error) {
		_, ok, err := l.GetAttribute(ctx, name)
		return ok, ok, err
	}}
}

// AttributeEquals holds once the attribute of the single match equals value
func AttributeEquals(name, value string) Condition {
	return Condition{Name: "attribute " + name, Check: func(ctx context.Context, l *Locator) (bool, any, error) {
		got, ok, err := l.GetAttribute(ctx, name)
		if !ok {
			return false, nil, err
		}
		return got == value, got, err
	}}
}

func stateCondition(name string, pred func(entities.ElementState) bool) Condition {
	return Condition{Name: name, Check: func(ctx context.Context, l *Locator) (bool, any, error) {
		_, state, err := l.oneWithState(ctx)
		if err != nil {
			return false, nil, err
		}
		ok := pred(state)
		return ok, ok, nil
	}}
}

// WaitUntil polls cond over l until it holds or timeout elapses. A zero
// timeout uses the page's wait timeout. The deadline cancels only this wait.
func (p *Page) WaitUntil(ctx context.Context, l *Locator, cond Condition, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = p.opts.WaitTimeout
	}
	_, err := p.poll(ctx, l, cond, timeout)
	return err
}

// WaitFor polls cond over l with the page's wait timeout
func (l *Locator) WaitFor(ctx context.Context, cond Condition) error {
	return l.page.WaitUntil(ctx, l, cond, 0)
}

func (p *Page) poll(ctx context.Context, l *Locator, cond Condition, timeout time.Duration) (any, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(p.opts.PollInterval)
	defer ticker.Stop()

	var observed any
	var lastErr error
	for {
		ok, obs, err := cond.Check(waitCtx, l)
		switch {
		case err == nil && ok:
			return obs, nil
		case err == nil:
			observed, lastErr = obs, nil
		case ctx.Err() != nil:
			return observed, ctx.Err()
		case waitCtx.Err() != nil:
			return observed, p.timeoutError(l, cond, timeout, lastErr)
		case entities.IsResolutionError(err):
			observed, lastErr = nil, err
		default:
			return obs, err
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return observed, ctx.Err()
			}
			return observed, p.timeoutError(l, cond, timeout, lastErr)
		case <-ticker.C:
		}
	}
}

func (p *Page) timeoutError(l *Locator, cond Condition, timeout time.Duration, lastErr error) error {
	err := fmt.Errorf("%w: %s to be %s after %s", entities.ErrTimeout, l, cond.Name, timeout)
	if lastErr != nil {
		return errors.Join(err, lastErr)
	}
	return err
}
