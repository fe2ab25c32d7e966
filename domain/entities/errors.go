package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means zero elements matched where exactly one was required
	ErrNotFound = errors.New("element not found")
	// ErrAmbiguous means several elements matched where exactly one was required
	ErrAmbiguous       = errors.New("locator resolved to more than one element")
	ErrNotEditable     = errors.New("element is not editable")
	ErrNotInteractable = errors.New("element is not interactable")
	// ErrTimeout means a wait predicate never held before its deadline
	ErrTimeout         = errors.New("timed out waiting for condition")
	ErrAssertionFailed = errors.New("assertion failed")
	// ErrStaleElement means the handle no longer points into the live document
	ErrStaleElement        = errors.New("element is stale or detached from the document")
	ErrUnsupportedSelector = errors.New("unsupported selector")
)

// AssertionError reports an observed value that differs from the expected literal
type AssertionError struct {
	Locator  string
	Property string
	Expected any
	Observed any
	Cause    error
}

func (e *AssertionError) Error() string {
	msg := fmt.Sprintf("%s: %s of %s: expected %v, observed %v", ErrAssertionFailed, e.Property, e.Locator, e.Expected, e.Observed)
	if e.Cause != nil {
		msg += " (" + e.Cause.Error() + ")"
	}
	return msg
}

func (e *AssertionError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrAssertionFailed}
	}
	return []error{ErrAssertionFailed, e.Cause}
}

// IsResolutionError reports whether err only says that a locator did not
// resolve to a single live element yet.
func IsResolutionError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrAmbiguous) || errors.Is(err, ErrStaleElement)
}
