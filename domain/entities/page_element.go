package entities

// ElementInfo describes a resolved element for authoring output
type ElementInfo struct {
	Key        string            `json:"key"`
	Role       string            `json:"role"`
	Name       string            `json:"name"`
	Level      int               `json:"level,omitempty"`
	Text       string            `json:"text"`
	Attributes map[string]string `json:"attributes,omitempty"`
	State      ElementState      `json:"state"`
}
