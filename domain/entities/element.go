package entities

// AXNode is the accessibility view of an element as computed by an engine
type AXNode struct {
	Role string `json:"role"`
	Name string `json:"name"`
	// HasName is false when no accessible name could be discovered
	HasName bool `json:"hasName"`
	// Level is the heading level, 0 when not applicable
	Level int `json:"level"`
	// Hidden is true when the element is excluded from the accessibility tree
	Hidden bool `json:"hidden"`
}

// ElementState holds the actionability flags of an element
type ElementState struct {
	Visible  bool `json:"visible"`
	Enabled  bool `json:"enabled"`
	Editable bool `json:"editable"`
	Checked  bool `json:"checked"`
}

// EventKind represents the kind of input an engine dispatches to an element
type EventKind string

const (
	EventClick          EventKind = "click"
	EventFill           EventKind = "fill"
	EventCheck          EventKind = "check"
	EventUncheck        EventKind = "uncheck"
	EventPress          EventKind = "press"
	EventFocus          EventKind = "focus"
	EventScrollIntoView EventKind = "scroll_into_view"
)

// Event is a single input dispatched to an element
type Event struct {
	Kind EventKind `json:"kind"`
	Text string    `json:"text,omitempty"`
	Key  string    `json:"key,omitempty"`
}
