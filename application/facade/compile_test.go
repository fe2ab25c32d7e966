package facade

import (
	"strings"
	"testing"
	"unicode/utf8"

	"e2e_locators/domain/entities"
	"e2e_locators/domain/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name      string
		sel       entities.Selector
		scoped    bool
		want      interfaces.Query
		hasFilter bool
	}{
		{"css", entities.CSS("#fullName"), false, interfaces.Query{Language: interfaces.QueryCSS, Expr: "#fullName"}, false},
		{"xpath", entities.XPath(`//input[@id="x"]`), false, interfaces.Query{Language: interfaces.QueryXPath, Expr: `//input[@id="x"]`}, false},
		{"scoped xpath", entities.XPath(`//input`), true, interfaces.Query{Language: interfaces.QueryXPath, Expr: `.//input`}, false},
		{"scoped grouped xpath", entities.XPath(`(//input)[1]`), true, interfaces.Query{Language: interfaces.QueryXPath, Expr: `(.//input)[1]`}, false},
		{"attribute", entities.Attr("name", "formContainer"), false, interfaces.Query{Language: interfaces.QueryCSS, Expr: `[name="formContainer"]`}, false},
		{"tag attribute", entities.TagAttr("input", "placeholder", `say "hi"`), false, interfaces.Query{Language: interfaces.QueryCSS, Expr: `input[placeholder="say \"hi\""]`}, false},
		{"presence", entities.HasAttr("readonly"), false, interfaces.Query{Language: interfaces.QueryCSS, Expr: `[readonly]`}, false},
		{"role", entities.Role("button"), false, interfaces.Query{Language: interfaces.QueryCSS, Expr: "*"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, filter, err := compile(tt.sel, tt.scoped)
			require.NoError(t, err)
			assert.Equal(t, tt.want, q)
			assert.Equal(t, tt.hasFilter, filter != nil)
		})
	}

	_, _, err := compile(entities.RoleSelector{}, false)
	assert.ErrorIs(t, err, entities.ErrUnsupportedSelector)
}

func TestTextXPath(t *testing.T) {
	q, _, err := compile(entities.Text("  Learn   More "), true)
	require.NoError(t, err)
	assert.Equal(t, interfaces.QueryXPath, q.Language)
	assert.Contains(t, q.Expr, ".//*")
	assert.Contains(t, q.Expr, "'learn more'")
	assert.Contains(t, q.Expr, "[not(*[")

	q, _, err = compile(entities.ExactText("Learn More"), false)
	require.NoError(t, err)
	assert.Contains(t, q.Expr, "normalize-space(.) = 'Learn More'")
}

func TestTextFoldingIsSymmetric(t *testing.T) {
	assert.Equal(t, "Élan vital", toLowerASCII("ÉLAN Vital"))
	assert.Equal(t, "élan", toLowerASCII("élan"))

	q, _, err := compile(entities.Text("ÉLAN"), false)
	require.NoError(t, err)
	assert.Contains(t, q.Expr, "'Élan'", "non-ASCII letters keep their case like the translated text")
}

func TestTruncateStringKeepsRunes(t *testing.T) {
	s := strings.Repeat("a", 199) + "é" + "tail"
	out := truncateString(s, 200)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, strings.Repeat("a", 199)+"...", out)

	assert.Equal(t, "short", truncateString("short", 200))
	assert.Equal(t, "ab...", truncateString("abcdef", 2))
}

func TestXPathString(t *testing.T) {
	assert.Equal(t, `'plain'`, xpathString("plain"))
	assert.Equal(t, `"it's"`, xpathString("it's"))
	assert.Equal(t, `concat('say "it', "'", 's"')`, xpathString(`say "it's"`))
}

func TestMatchesRole(t *testing.T) {
	named := entities.AXNode{Role: "button", Name: "Submit", HasName: true}
	nameless := entities.AXNode{Role: "button"}
	heading := entities.AXNode{Role: "heading", Name: "Welcome", HasName: true, Level: 1}
	hidden := entities.AXNode{Role: "button", Name: "Submit", HasName: true, Hidden: true}

	role := func(r string, opts ...entities.RoleOption) entities.RoleSelector {
		return entities.Role(r, opts...).(entities.RoleSelector)
	}

	assert.True(t, matchesRole(role("button"), named))
	assert.True(t, matchesRole(role("button"), nameless))
	assert.True(t, matchesRole(role("button", entities.WithName("Submit")), named))
	assert.False(t, matchesRole(role("button", entities.WithName("submit")), named))
	assert.False(t, matchesRole(role("button", entities.WithName("")), nameless))
	assert.False(t, matchesRole(role("link"), named))
	assert.True(t, matchesRole(role("heading", entities.WithLevel(1)), heading))
	assert.False(t, matchesRole(role("heading", entities.WithLevel(2)), heading))
	assert.False(t, matchesRole(role("button"), hidden))
	assert.True(t, matchesRole(role("button", entities.IncludeHidden()), hidden))
}
