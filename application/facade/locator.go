package facade

import (
	"e2e_locators/domain/entities"
)

// Locator is a lazy, re-resolvable query. Resolving it twice may yield
// different elements when the document changed in between.
type Locator struct {
	page   *Page
	sel    entities.Selector
	parent *Locator
}

// Locator chains sel below l: it matches only inside the subtrees of l's matches
func (l *Locator) Locator(sel entities.Selector) *Locator {
	return &Locator{page: l.page, sel: sel, parent: l}
}

// GetByRole chains a role selector below l
func (l *Locator) GetByRole(role string, opts ...entities.RoleOption) *Locator {
	return l.Locator(entities.Role(role, opts...))
}

// GetByText chains a text selector below l
func (l *Locator) GetByText(text string) *Locator {
	return l.Locator(entities.Text(text))
}

// Selector returns the selector of the last link in the chain
func (l *Locator) Selector() entities.Selector {
	return l.sel
}

// Parent returns the parent locator, nil for a document-level locator
func (l *Locator) Parent() *Locator {
	return l.parent
}

func (l *Locator) String() string {
	if l.parent == nil {
		return l.sel.String()
	}
	return l.parent.String() + " >> " + l.sel.String()
}
