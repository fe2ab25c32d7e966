package browser

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"e2e_locators/domain/entities"
)

// The snippets are function expressions taking the element as the first
// argument. Each engine adapts the calling convention.
var (
	//go:embed js/accessibility.js
	accessibilityJS string
	//go:embed js/state.js
	stateJS string
	//go:embed js/key.js
	keyJS string
	//go:embed js/value.js
	valueJS string
)

const (
	attributeJS = `function (el, name) {
  if (!el.isConnected) throw new Error('element is detached from the document');
  return el.getAttribute(name);
}`
	textJS = `function (el) {
  if (!el.isConnected) throw new Error('element is detached from the document');
  return el.isContentEditable ? el.innerText : el.textContent;
}`
	focusJS  = `function (el) { el.focus(); }`
	scrollJS = `function (el) { el.scrollIntoView({ block: 'nearest', inline: 'nearest' }); }`
)

// seleniumScript calls fn with arguments[0] as element and arguments[1:] as
// extra arguments.
func seleniumScript(fn string) string {
	return "return (" + strings.TrimSpace(fn) + ").apply(null, arguments);"
}

// cdpFunction binds fn to the node passed as this by Runtime.callFunctionOn
func cdpFunction(fn string) string {
	return "function(...args) { return (" + strings.TrimSpace(fn) + ").call(null, this, ...args); }"
}

func axFromMap(m map[string]interface{}) entities.AXNode {
	name := getString(m, "name")
	return entities.AXNode{
		Role:    getString(m, "role"),
		Name:    name,
		HasName: name != "",
		Level:   getInt(m, "level"),
		Hidden:  getBool(m, "hidden"),
	}
}

func stateFromMap(m map[string]interface{}) entities.ElementState {
	return entities.ElementState{
		Visible:  getBool(m, "visible"),
		Enabled:  getBool(m, "enabled"),
		Editable: getBool(m, "editable"),
		Checked:  getBool(m, "checked"),
	}
}

func asMap(v interface{}) (map[string]interface{}, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected script result %T", v)
	}
	return m, nil
}

var staleMarkers = []string{
	"detached from the document",
	"not attached to the dom",
	"stale element reference",
	"no node with given id",
	"could not find node with given id",
	"execution context was destroyed",
}

// classify maps engine errors reporting a detached element onto
// ErrStaleElement.
func classify(err error) error {
	if err == nil || errors.Is(err, entities.ErrStaleElement) {
		return err
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range staleMarkers {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", entities.ErrStaleElement, err)
		}
	}
	return err
}

// getString - extracts string value from map
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// getBool - extracts boolean value from map
func getBool(m map[string]interface{}, key string) bool {
	if v, ok := m[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// getInt - extracts integer value from map
func getInt(m map[string]interface{}, key string) int {
	if v, ok := m[key]; ok {
		switch val := v.(type) {
		case int:
			return val
		case int64:
			return int(val)
		case float64:
			return int(val)
		}
	}
	return 0
}
