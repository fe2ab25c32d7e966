package htmldoc

import (
	"testing"

	"github.com/andybalholm/cascadia"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func mustTarget(t *testing.T, src string) (*Document, *html.Node) {
	t.Helper()
	doc, err := ParseString("<!doctype html><html><body>"+src+"</body></html>", "about:blank")
	require.NoError(t, err)
	n := cascadia.Query(doc.root, cascadia.MustCompile("#t"))
	require.NotNil(t, n, "fixture must contain #t")
	return doc, n
}

func TestComputeRoleAndName(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantRole string
		wantName string
		level    int
	}{
		{"button text", `<button id="t">Submit</button>`, "button", "Submit", 0},
		{"empty button", `<button id="t"></button>`, "button", "", 0},
		{"button aria-label wins", `<button id="t" aria-label="Close">X</button>`, "button", "Close", 0},
		{"button image alt", `<button id="t"><img alt="Save"></button>`, "button", "Save", 0},
		{"link", `<a id="t" href="/more">Learn  more</a>`, "link", "Learn more", 0},
		{"anchor without href", `<a id="t">plain</a>`, "generic", "", 0},
		{"label for", `<label for="t">Username</label><input id="t">`, "textbox", "Username", 0},
		{"wrapping label", `<label>Subscribe <input id="t" type="checkbox"></label>`, "checkbox", "Subscribe", 0},
		{"placeholder fallback", `<input id="t" placeholder="Search here">`, "textbox", "Search here", 0},
		{"submit default name", `<input id="t" type="submit">`, "button", "Submit", 0},
		{"submit value", `<input id="t" type="submit" value="Send">`, "button", "Send", 0},
		{"heading level", `<h1 id="t">Welcome</h1>`, "heading", "Welcome", 1},
		{"aria heading level", `<div id="t" role="heading" aria-level="3">Title</div>`, "heading", "Title", 3},
		{"aria heading default level", `<span id="t" role="heading">Title</span>`, "heading", "Title", 2},
		{"labelledby dialog", `<div id="t" role="dialog" aria-labelledby="h"><h2 id="h">Confirmation</h2></div>`, "dialog", "Confirmation", 0},
		{"list has no content name", `<ul id="t"><li>a</li></ul>`, "list", "", 0},
		{"select", `<select id="t"><option>a</option></select>`, "combobox", "", 0},
		{"multi select", `<select id="t" multiple><option>a</option></select>`, "listbox", "", 0},
		{"decorative image", `<img id="t" alt="">`, "presentation", "", 0},
		{"unnamed section", `<section id="t">x</section>`, "generic", "", 0},
		{"named section", `<section id="t" aria-label="Features">x</section>`, "region", "Features", 0},
		{"first known role token", `<div id="t" role="fancy button">Go</div>`, "button", "Go", 0},
		{"title fallback", `<div id="t" role="textbox" title="Notes"></div>`, "textbox", "Notes", 0},
		{"fieldset legend", `<fieldset id="t"><legend>Address</legend></fieldset>`, "group", "Address", 0},
		{"hidden child skipped", `<button id="t">Go<span hidden>secret</span></button>`, "button", "Go", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, n := mustTarget(t, tt.src)
			role := computeRole(n)
			assert.Equal(t, tt.wantRole, role)
			assert.Equal(t, tt.wantName, doc.accessibleName(n, role))
			assert.Equal(t, tt.level, headingLevel(n, role))
		})
	}
}

func TestHiddenAndStateFlags(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		axHidden bool
		visible  bool
		enabled  bool
		editable bool
	}{
		{"plain input", `<input id="t">`, false, true, true, true},
		{"readonly input", `<input id="t" readonly>`, false, true, true, false},
		{"disabled input", `<input id="t" disabled>`, false, true, false, false},
		{"disabled fieldset", `<fieldset disabled><input id="t"></fieldset>`, false, true, false, false},
		{"hidden ancestor", `<div hidden><input id="t"></div>`, true, false, true, true},
		{"display none", `<div style="display: none"><button id="t">x</button></div>`, true, false, true, false},
		{"visibility overridden", `<div style="visibility:hidden"><p id="t" style="visibility: visible">x</p></div>`, false, true, true, false},
		{"aria-hidden stays visible", `<button id="t" aria-hidden="true">x</button>`, true, true, true, false},
		{"hidden input", `<input id="t" type="hidden">`, true, false, true, false},
		{"contenteditable", `<div id="t" contenteditable>x</div>`, false, true, true, true},
		{"checkbox not editable", `<input id="t" type="checkbox">`, false, true, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, n := mustTarget(t, tt.src)
			assert.Equal(t, tt.axHidden, axHidden(n), "axHidden")
			assert.Equal(t, tt.visible, !renderHidden(n), "visible")
			assert.Equal(t, tt.enabled, !disabled(n), "enabled")
			assert.Equal(t, tt.editable, editable(n), "editable")
		})
	}
}
