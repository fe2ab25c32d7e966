package facade

import (
	"context"
	"fmt"

	"e2e_locators/domain/entities"
	"e2e_locators/domain/interfaces"
)

// Cardinality states how many matches a resolution requires
type Cardinality int

const (
	// Any accepts zero or more matches
	Any Cardinality = iota
	// ExactlyOne fails with ErrNotFound on zero and ErrAmbiguous on several matches
	ExactlyOne
)

// Resolve executes the locator against the live document
func (l *Locator) Resolve(ctx context.Context, card Cardinality) ([]interfaces.Element, error) {
	matches, err := l.resolve(ctx)
	if err != nil {
		return nil, err
	}
	if card == ExactlyOne {
		switch len(matches) {
		case 0:
			return nil, fmt.Errorf("%w: %s", entities.ErrNotFound, l)
		case 1:
		default:
			return nil, fmt.Errorf("%w: %s matched %d elements", entities.ErrAmbiguous, l, len(matches))
		}
	}
	return matches, nil
}

// Count returns the number of elements the locator currently matches
func (l *Locator) Count(ctx context.Context) (int, error) {
	matches, err := l.resolve(ctx)
	if err != nil {
		return 0, err
	}
	return len(matches), nil
}

func (l *Locator) one(ctx context.Context) (interfaces.Element, error) {
	matches, err := l.Resolve(ctx, ExactlyOne)
	if err != nil {
		return nil, err
	}
	return matches[0], nil
}

// resolve resolves the parent chain first, then queries each parent
// subtree and keeps the union of matches in first-seen order.
func (l *Locator) resolve(ctx context.Context) ([]interfaces.Element, error) {
	scopes := []interfaces.Element{nil}
	if l.parent != nil {
		parents, err := l.parent.resolve(ctx)
		if err != nil {
			return nil, err
		}
		if len(parents) == 0 {
			return nil, nil
		}
		scopes = parents
	}

	query, filter, err := compile(l.sel, l.parent != nil)
	if err != nil {
		return nil, err
	}

	engine := l.page.engine
	seen := make(map[string]bool)
	var matches []interfaces.Element
	for _, scope := range scopes {
		found, err := engine.QueryAll(ctx, scope, query)
		if err != nil {
			return nil, fmt.Errorf("failed to query %s: %w", l, err)
		}
		for _, el := range found {
			key := el.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			if filter != nil {
				ok, err := filter(ctx, engine, el)
				if err != nil {
					return nil, fmt.Errorf("failed to filter %s: %w", l, err)
				}
				if !ok {
					continue
				}
			}
			matches = append(matches, el)
		}
	}
	return matches, nil
}
