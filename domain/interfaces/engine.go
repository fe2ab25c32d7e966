package interfaces

import (
	"context"

	"e2e_locators/domain/entities"
)

// QueryLanguage is the selector syntax an engine evaluates natively
type QueryLanguage string

const (
	QueryCSS   QueryLanguage = "css"
	QueryXPath QueryLanguage = "xpath"
)

// Query is a compiled selector an engine can evaluate without further parsing
type Query struct {
	Language QueryLanguage
	Expr     string
}

// Element references a node in the live document. It does not own the node
// and may go stale when the document changes.
type Element interface {
	// Key identifies the node uniquely within its document
	Key() string
}

// Engine is the external automation engine a page drives
type Engine interface {
	// Navigate loads url and waits for the document to be ready
	Navigate(ctx context.Context, url string) error

	// SetViewport resizes the page viewport
	SetViewport(ctx context.Context, width, height int) error

	// QueryAll evaluates query within scope, or the whole document when scope is nil
	QueryAll(ctx context.Context, scope Element, query Query) ([]Element, error)

	// Accessibility computes the role, accessible name and heading level of el
	Accessibility(ctx context.Context, el Element) (entities.AXNode, error)

	// Attribute returns the literal attribute value and whether it is present
	Attribute(ctx context.Context, el Element, name string) (string, bool, error)

	// Text returns the text content of el
	Text(ctx context.Context, el Element) (string, error)

	// Value returns the current value property of a form control
	Value(ctx context.Context, el Element) (string, error)

	// State returns the visibility, enablement, editability and checked flags
	State(ctx context.Context, el Element) (entities.ElementState, error)

	// Dispatch delivers an input event to el without actionability checks
	Dispatch(ctx context.Context, el Element, ev entities.Event) error

	// Close releases the document and its browser resources
	Close() error
}

// EngineFactory owns shared browser resources and hands out one engine per
// test procedure.
type EngineFactory interface {
	Name() string
	NewEngine(ctx context.Context) (Engine, error)
	Close() error
}
