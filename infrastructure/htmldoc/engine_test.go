package htmldoc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"e2e_locators/domain/entities"
	"e2e_locators/domain/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const formPage = `<!doctype html>
<html><head><title>Form</title></head><body>
<form id="f">
  <input id="first" name="first" value="initial">
  <input id="ro" readonly value="fixed">
  <input id="agree" type="checkbox">
  <input type="radio" name="color" id="red" checked>
  <input type="radio" name="color" id="blue">
  <button id="go">Go</button>
</form>
<div id="outside"><input id="other"></div>
</body></html>`

func query(t *testing.T, e *Engine, scope interfaces.Element, lang interfaces.QueryLanguage, expr string) []interfaces.Element {
	t.Helper()
	els, err := e.QueryAll(context.Background(), scope, interfaces.Query{Language: lang, Expr: expr})
	require.NoError(t, err)
	return els
}

func byID(t *testing.T, e *Engine, id string) interfaces.Element {
	t.Helper()
	els := query(t, e, nil, interfaces.QueryCSS, "#"+id)
	require.Len(t, els, 1)
	return els[0]
}

func TestNavigateHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/form" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(formPage))
	}))
	defer srv.Close()

	e := NewFactory(0, nil).client
	engine := NewEngine(e, nil)
	ctx := context.Background()

	require.NoError(t, engine.Navigate(ctx, srv.URL+"/form"))
	assert.Equal(t, srv.URL+"/form", engine.Document().URL())
	assert.Len(t, query(t, engine, nil, interfaces.QueryCSS, "input"), 6)

	err := engine.Navigate(ctx, srv.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestNavigateDataAndFileURLs(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(nil, nil)

	require.NoError(t, engine.Navigate(ctx, "data:text/html,"+url.PathEscape(`<p id="x">hello</p>`)))
	text, err := engine.Text(ctx, byID(t, engine, "x"))
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(formPage), 0644))
	require.NoError(t, engine.Navigate(ctx, "file://"+path))
	assert.Len(t, query(t, engine, nil, interfaces.QueryCSS, "button"), 1)

	require.Error(t, engine.Navigate(ctx, "ftp://example.com/page"))
}

func TestQueryScopedToSubtree(t *testing.T) {
	engine := NewEngine(nil, nil)
	require.NoError(t, engine.SetContent(formPage))
	form := byID(t, engine, "f")

	assert.Len(t, query(t, engine, form, interfaces.QueryCSS, "input"), 5)
	assert.Len(t, query(t, engine, form, interfaces.QueryXPath, ".//input"), 5)
	// an absolute path from a scope still only yields descendants of the scope
	assert.Len(t, query(t, engine, form, interfaces.QueryXPath, "//input"), 5)
	assert.Len(t, query(t, engine, nil, interfaces.QueryXPath, "//input"), 6)

	_, err := engine.QueryAll(context.Background(), nil, interfaces.Query{Language: interfaces.QueryCSS, Expr: "[[["})
	assert.ErrorIs(t, err, entities.ErrUnsupportedSelector)
}

func TestFillAndValue(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(nil, nil)
	require.NoError(t, engine.SetContent(formPage))

	first := byID(t, engine, "first")
	v, err := engine.Value(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "initial", v)

	require.NoError(t, engine.Dispatch(ctx, first, entities.Event{Kind: entities.EventFill, Text: "Tom Smith"}))
	v, err = engine.Value(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "Tom Smith", v)

	attr, ok, err := engine.Attribute(ctx, first, "value")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "initial", attr, "fill changes the property, not the attribute")

	ro := byID(t, engine, "ro")
	err = engine.Dispatch(ctx, ro, entities.Event{Kind: entities.EventFill, Text: "nope"})
	assert.ErrorIs(t, err, entities.ErrNotEditable)
	v, err = engine.Value(ctx, ro)
	require.NoError(t, err)
	assert.Equal(t, "fixed", v)

	_, err = engine.Value(ctx, byID(t, engine, "go"))
	assert.ErrorIs(t, err, entities.ErrNotEditable)
}

func TestCheckboxAndRadio(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(nil, nil)
	require.NoError(t, engine.SetContent(formPage))

	agree := byID(t, engine, "agree")
	require.NoError(t, engine.Dispatch(ctx, agree, entities.Event{Kind: entities.EventClick}))
	state, err := engine.State(ctx, agree)
	require.NoError(t, err)
	assert.True(t, state.Checked)

	require.NoError(t, engine.Dispatch(ctx, agree, entities.Event{Kind: entities.EventUncheck}))
	state, err = engine.State(ctx, agree)
	require.NoError(t, err)
	assert.False(t, state.Checked)

	red, blue := byID(t, engine, "red"), byID(t, engine, "blue")
	require.NoError(t, engine.Dispatch(ctx, blue, entities.Event{Kind: entities.EventCheck}))
	redState, err := engine.State(ctx, red)
	require.NoError(t, err)
	blueState, err := engine.State(ctx, blue)
	require.NoError(t, err)
	assert.False(t, redState.Checked)
	assert.True(t, blueState.Checked)

	err = engine.Dispatch(ctx, byID(t, engine, "go"), entities.Event{Kind: entities.EventCheck})
	assert.ErrorIs(t, err, entities.ErrNotInteractable)
}

func TestPressTabMovesFocus(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(nil, nil)
	require.NoError(t, engine.SetContent(formPage))

	require.NoError(t, engine.Dispatch(ctx, byID(t, engine, "first"), entities.Event{Kind: entities.EventPress, Key: "Tab"}))
	assert.Equal(t, "ro", engine.Document().FocusedID())

	events := engine.Document().Events()
	require.Len(t, events, 1)
	assert.Equal(t, "input#first", events[0].Target)
	assert.Equal(t, entities.EventPress, events[0].Event.Kind)
}

func TestStaleHandles(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(nil, nil)
	require.NoError(t, engine.SetContent(formPage))

	other := byID(t, engine, "other")
	engine.Document().Mutate(func(root *html.Node) {
		walk(root, func(n *html.Node) bool {
			if v, _ := attr(n, "id"); v == "outside" {
				n.Parent.RemoveChild(n)
				return false
			}
			return true
		})
	})
	_, err := engine.State(ctx, other)
	assert.ErrorIs(t, err, entities.ErrStaleElement)

	first := byID(t, engine, "first")
	require.NoError(t, engine.SetContent(formPage))
	_, err = engine.Text(ctx, first)
	assert.ErrorIs(t, err, entities.ErrStaleElement)
}
