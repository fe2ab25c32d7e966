package facade

import (
	"context"
	"errors"
	"time"

	"e2e_locators/domain/entities"
)

// Assertions waits for a locator to reach an expected outcome
type Assertions struct {
	loc     *Locator
	timeout time.Duration
}

// Expect starts an assertion on l using the page's expect timeout
func Expect(l *Locator) *Assertions {
	return &Assertions{loc: l, timeout: l.page.opts.ExpectTimeout}
}

// WithTimeout overrides how long the assertion waits
func (a *Assertions) WithTimeout(d time.Duration) *Assertions {
	return &Assertions{loc: a.loc, timeout: d}
}

func (a *Assertions) ToBeVisible(ctx context.Context) error {
	return a.assert(ctx, Visible(), true)
}

func (a *Assertions) ToBeHidden(ctx context.Context) error {
	return a.assert(ctx, Hidden(), true)
}

func (a *Assertions) ToBeEnabled(ctx context.Context) error {
	return a.assert(ctx, Enabled(), true)
}

func (a *Assertions) ToBeDisabled(ctx context.Context) error {
	return a.assert(ctx, Disabled(), true)
}

func (a *Assertions) ToBeEditable(ctx context.Context) error {
	return a.assert(ctx, Editable(), true)
}

func (a *Assertions) ToBeChecked(ctx context.Context) error {
	return a.assert(ctx, Checked(), true)
}

func (a *Assertions) ToHaveValue(ctx context.Context, value string) error {
	return a.assert(ctx, HasValue(value), value)
}

func (a *Assertions) ToHaveText(ctx context.Context, text string) error {
	return a.assert(ctx, HasText(text), text)
}

func (a *Assertions) ToHaveCount(ctx context.Context, n int) error {
	return a.assert(ctx, HasCount(n), n)
}

// ToHaveAttribute asserts the attribute is present, whatever its value
func (a *Assertions) ToHaveAttribute(ctx context.Context, name string) error {
	return a.assert(ctx, HasAttribute(name), true)
}

func (a *Assertions) ToHaveAttributeValue(ctx context.Context, name, value string) error {
	return a.assert(ctx, AttributeEquals(name, value), value)
}

// assert converts a wait timeout into an AssertionError carrying the last
// observed value.
func (a *Assertions) assert(ctx context.Context, cond Condition, expected any) error {
	observed, err := a.loc.page.poll(ctx, a.loc, cond, a.timeout)
	if err == nil {
		return nil
	}
	if !errors.Is(err, entities.ErrTimeout) {
		return err
	}

	var cause error
	if entities.IsResolutionError(err) {
		cause = err
	}
	return &entities.AssertionError{
		Locator:  a.loc.String(),
		Property: cond.Name,
		Expected: expected,
		Observed: observed,
		Cause:    cause,
	}
}
