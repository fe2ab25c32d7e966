package browser

import (
	"context"
	"errors"
	"testing"

	"e2e_locators/domain/entities"

	"github.com/chromedp/cdproto/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tebeka/selenium"
)

func TestSnippetsEmbedded(t *testing.T) {
	for name, src := range map[string]string{
		"accessibility": accessibilityJS,
		"state":         stateJS,
		"key":           keyJS,
		"value":         valueJS,
	} {
		assert.Regexp(t, `^function \(el\)`, src, name)
	}
}

func TestCallingConventions(t *testing.T) {
	assert.Equal(t, "return (function (el) { el.focus(); }).apply(null, arguments);", seleniumScript(focusJS))
	assert.Equal(t, "function(...args) { return (function (el) { el.focus(); }).call(null, this, ...args); }", cdpFunction(focusJS))
	assert.Equal(t, "(function (el) { el.focus(); })", pwFunction(" "+focusJS+"\n"))
}

type foreignElement struct{}

func (foreignElement) Key() string { return "foreign" }

func TestChromedpCallBinding(t *testing.T) {
	params := onObject("obj-42")(runtime.CallFunctionOn(cdpFunction(stateJS)))
	assert.Equal(t, runtime.RemoteObjectID("obj-42"), params.ObjectID)
	assert.Equal(t, cdpFunction(stateJS), params.FunctionDeclaration)
	assert.Zero(t, params.ExecutionContextID)

	var res map[string]interface{}
	assert.NotNil(t, callOnObject("obj-42", attributeJS, &res, "id"))

	engine := &chromedpEngine{}
	err := engine.call(context.Background(), foreignElement{}, textJS, &res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "foreign element handle")
}

func TestResultMapping(t *testing.T) {
	ax := axFromMap(map[string]interface{}{"role": "heading", "name": "Welcome", "level": float64(1), "hidden": false})
	assert.Equal(t, entities.AXNode{Role: "heading", Name: "Welcome", HasName: true, Level: 1}, ax)

	nameless := axFromMap(map[string]interface{}{"role": "button", "name": ""})
	assert.False(t, nameless.HasName)

	state := stateFromMap(map[string]interface{}{"visible": true, "enabled": true, "editable": false, "checked": true})
	assert.Equal(t, entities.ElementState{Visible: true, Enabled: true, Checked: true}, state)

	_, err := asMap("nope")
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))

	for _, msg := range []string{
		"Error: element is detached from the document",
		"Element is not attached to the DOM",
		"stale element reference: element is not attached to the page document",
		"No node with given id found",
	} {
		assert.ErrorIs(t, classify(errors.New(msg)), entities.ErrStaleElement, msg)
	}

	other := errors.New("net::ERR_CONNECTION_REFUSED")
	assert.Same(t, other, classify(other))
}

func TestKeyMapping(t *testing.T) {
	assert.Equal(t, selenium.TabKey, seleniumKey("Tab"))
	assert.Equal(t, "a", seleniumKey("a"))
	assert.Equal(t, "x", chromedpKey("x"))
	assert.NotEqual(t, "Tab", chromedpKey("Tab"))
}

func TestNewFactory(t *testing.T) {
	_, err := NewFactory("netscape", Options{}, nil)
	assert.ErrorContains(t, err, "unknown engine")

	assert.Equal(t, []string{"chromedp", "playwright", "selenium", "static"}, EngineNames())

	f, err := NewFactory(" Static ", Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "static", f.Name())

	engine, err := f.NewEngine(context.Background())
	require.NoError(t, err)
	assert.NoError(t, engine.Close())
	assert.NoError(t, f.Close())
}
