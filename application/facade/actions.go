package facade

import (
	"context"
	"fmt"
	"unicode/utf8"

	"e2e_locators/domain/entities"
	"e2e_locators/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// Fill clears the value of the single matched control and sets text
func (l *Locator) Fill(ctx context.Context, text string) error {
	el, state, err := l.oneWithState(ctx)
	if err != nil {
		return err
	}
	if !state.Editable {
		return fmt.Errorf("%w: %s", entities.ErrNotEditable, l)
	}
	if !state.Visible {
		return fmt.Errorf("%w: %s is hidden", entities.ErrNotInteractable, l)
	}
	return l.dispatch(ctx, el, entities.Event{Kind: entities.EventFill, Text: text})
}

// Clear empties the value of the single matched control
func (l *Locator) Clear(ctx context.Context) error {
	return l.Fill(ctx, "")
}

// Click clicks the single matched element
func (l *Locator) Click(ctx context.Context) error {
	el, err := l.interactable(ctx)
	if err != nil {
		return err
	}
	return l.dispatch(ctx, el, entities.Event{Kind: entities.EventClick})
}

// Check checks the single matched checkbox or radio. It is a no-op when the
// element is already checked.
func (l *Locator) Check(ctx context.Context) error {
	return l.setChecked(ctx, true)
}

// Uncheck unchecks the single matched checkbox
func (l *Locator) Uncheck(ctx context.Context) error {
	return l.setChecked(ctx, false)
}

func (l *Locator) setChecked(ctx context.Context, checked bool) error {
	el, state, err := l.oneWithState(ctx)
	if err != nil {
		return err
	}
	if !state.Visible || !state.Enabled {
		return fmt.Errorf("%w: %s is hidden or disabled", entities.ErrNotInteractable, l)
	}
	if state.Checked == checked {
		return nil
	}

	kind := entities.EventCheck
	if !checked {
		kind = entities.EventUncheck
	}
	if err := l.dispatch(ctx, el, entities.Event{Kind: kind}); err != nil {
		return err
	}

	after, err := l.page.engine.State(ctx, el)
	if err != nil {
		return fmt.Errorf("failed to read state of %s: %w", l, err)
	}
	if after.Checked != checked {
		return fmt.Errorf("%w: %s did not change its checked state", entities.ErrNotInteractable, l)
	}
	return nil
}

// Press focuses the single matched element and presses key, e.g. "Tab"
func (l *Locator) Press(ctx context.Context, key string) error {
	el, err := l.one(ctx)
	if err != nil {
		return err
	}
	return l.dispatch(ctx, el, entities.Event{Kind: entities.EventPress, Key: key})
}

// Focus focuses the single matched element
func (l *Locator) Focus(ctx context.Context) error {
	el, err := l.one(ctx)
	if err != nil {
		return err
	}
	return l.dispatch(ctx, el, entities.Event{Kind: entities.EventFocus})
}

// ScrollIntoView scrolls the single matched element into the viewport if needed
func (l *Locator) ScrollIntoView(ctx context.Context) error {
	el, err := l.one(ctx)
	if err != nil {
		return err
	}
	return l.dispatch(ctx, el, entities.Event{Kind: entities.EventScrollIntoView})
}

// GetAttribute returns the literal attribute value and whether the attribute
// is present. An empty value with ok=true means the attribute is set to "".
func (l *Locator) GetAttribute(ctx context.Context, name string) (string, bool, error) {
	el, err := l.one(ctx)
	if err != nil {
		return "", false, err
	}
	value, ok, err := l.page.engine.Attribute(ctx, el, name)
	if err != nil {
		return "", false, fmt.Errorf("failed to read attribute %q of %s: %w", name, l, err)
	}
	return value, ok, nil
}

// TextContent returns the text content of the single matched element
func (l *Locator) TextContent(ctx context.Context) (string, error) {
	el, err := l.one(ctx)
	if err != nil {
		return "", err
	}
	text, err := l.page.engine.Text(ctx, el)
	if err != nil {
		return "", fmt.Errorf("failed to read text of %s: %w", l, err)
	}
	return text, nil
}

// InputValue returns the current value of the single matched form control
func (l *Locator) InputValue(ctx context.Context) (string, error) {
	el, err := l.one(ctx)
	if err != nil {
		return "", err
	}
	value, err := l.page.engine.Value(ctx, el)
	if err != nil {
		return "", fmt.Errorf("failed to read value of %s: %w", l, err)
	}
	return value, nil
}

// IsVisible reports whether the single matched element is visible. A locator
// matching nothing is not visible.
func (l *Locator) IsVisible(ctx context.Context) (bool, error) {
	matches, err := l.Resolve(ctx, Any)
	if err != nil {
		return false, err
	}
	switch len(matches) {
	case 0:
		return false, nil
	case 1:
	default:
		return false, fmt.Errorf("%w: %s matched %d elements", entities.ErrAmbiguous, l, len(matches))
	}
	state, err := l.page.engine.State(ctx, matches[0])
	if err != nil {
		return false, fmt.Errorf("failed to read state of %s: %w", l, err)
	}
	return state.Visible, nil
}

// IsEnabled reports whether the single matched element is enabled
func (l *Locator) IsEnabled(ctx context.Context) (bool, error) {
	_, state, err := l.oneWithState(ctx)
	return state.Enabled, err
}

// IsDisabled reports whether the single matched element is disabled
func (l *Locator) IsDisabled(ctx context.Context) (bool, error) {
	_, state, err := l.oneWithState(ctx)
	if err != nil {
		return false, err
	}
	return !state.Enabled, nil
}

// IsEditable reports whether the single matched element accepts Fill
func (l *Locator) IsEditable(ctx context.Context) (bool, error) {
	_, state, err := l.oneWithState(ctx)
	return state.Editable, err
}

// IsChecked reports whether the single matched checkbox or radio is checked
func (l *Locator) IsChecked(ctx context.Context) (bool, error) {
	_, state, err := l.oneWithState(ctx)
	return state.Checked, err
}

// Describe resolves the locator and reports role, name, text and state of
// every match.
func (l *Locator) Describe(ctx context.Context) ([]entities.ElementInfo, error) {
	matches, err := l.Resolve(ctx, Any)
	if err != nil {
		return nil, err
	}

	engine := l.page.engine
	infos := make([]entities.ElementInfo, 0, len(matches))
	for _, el := range matches {
		ax, err := engine.Accessibility(ctx, el)
		if err != nil {
			return nil, fmt.Errorf("failed to compute accessibility of %s: %w", l, err)
		}
		text, err := engine.Text(ctx, el)
		if err != nil {
			return nil, fmt.Errorf("failed to read text of %s: %w", l, err)
		}
		state, err := engine.State(ctx, el)
		if err != nil {
			return nil, fmt.Errorf("failed to read state of %s: %w", l, err)
		}

		attrs := make(map[string]string)
		for _, name := range []string{"id", "name", "class", "type"} {
			if v, ok, err := engine.Attribute(ctx, el, name); err == nil && ok {
				attrs[name] = v
			}
		}

		infos = append(infos, entities.ElementInfo{
			Key:        el.Key(),
			Role:       ax.Role,
			Name:       ax.Name,
			Level:      ax.Level,
			Text:       truncateString(text, 200),
			Attributes: attrs,
			State:      state,
		})
	}
	return infos, nil
}

func (l *Locator) oneWithState(ctx context.Context) (interfaces.Element, entities.ElementState, error) {
	el, err := l.one(ctx)
	if err != nil {
		return nil, entities.ElementState{}, err
	}
	state, err := l.page.engine.State(ctx, el)
	if err != nil {
		return nil, entities.ElementState{}, fmt.Errorf("failed to read state of %s: %w", l, err)
	}
	return el, state, nil
}

func (l *Locator) interactable(ctx context.Context) (interfaces.Element, error) {
	el, state, err := l.oneWithState(ctx)
	if err != nil {
		return nil, err
	}
	if !state.Visible || !state.Enabled {
		return nil, fmt.Errorf("%w: %s is hidden or disabled", entities.ErrNotInteractable, l)
	}
	return el, nil
}

func (l *Locator) dispatch(ctx context.Context, el interfaces.Element, ev entities.Event) error {
	l.page.logger.WithFields(logrus.Fields{
		"locator": l.String(),
		"event":   ev.Kind,
	}).Debug("dispatching event")

	if err := l.page.engine.Dispatch(ctx, el, ev); err != nil {
		return fmt.Errorf("failed to %s %s: %w", ev.Kind, l, err)
	}
	return nil
}

// truncateString - truncates string to maximum length
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
