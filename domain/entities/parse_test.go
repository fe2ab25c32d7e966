package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelector(t *testing.T) {
	tests := []struct {
		raw  string
		want Selector
	}{
		{"#fullName", CSSSelector{Expr: "#fullName"}},
		{"css=div > p", CSSSelector{Expr: "div > p"}},
		{`//input[@id="join"]`, XPathSelector{Expr: `//input[@id="join"]`}},
		{`(//input)[2]`, XPathSelector{Expr: `(//input)[2]`}},
		{"xpath=.//a", XPathSelector{Expr: ".//a"}},
		{`[name="formContainer"]`, AttributeSelector{Name: "name", Value: "formContainer", HasValue: true}},
		{`input[placeholder='Enter']`, AttributeSelector{Tag: "input", Name: "placeholder", Value: "Enter", HasValue: true}},
		{`[readonly]`, AttributeSelector{Name: "readonly"}},
		{"text=Learn more", TextSelector{Text: "Learn more"}},
		{`text="Learn More"`, TextSelector{Text: "Learn More", Exact: true}},
		{"role=button", RoleSelector{Role: "button"}},
		{`role=button[name="Submit"]`, RoleSelector{Role: "button", Name: "Submit", HasName: true}},
		{`role=heading[name='Main Content'][level=2]`, RoleSelector{Role: "heading", Name: "Main Content", HasName: true, Level: 2}},
		{`role=textbox[include-hidden]`, RoleSelector{Role: "textbox", IncludeHidden: true}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseSelector(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSelectorErrors(t *testing.T) {
	for _, raw := range []string{"", "   ", "role=", `role=button[name="x"`, "role=heading[level=0]", "role=button[pressed=true]"} {
		_, err := ParseSelector(raw)
		assert.ErrorIs(t, err, ErrUnsupportedSelector, raw)
	}
}

func TestSelectorStringRoundTrip(t *testing.T) {
	for _, sel := range []Selector{
		Role("heading", WithName(`say "hi"`), WithLevel(3), IncludeHidden()),
		ExactText("Submit"),
		XPath("//a"),
		CSS("nav a"),
	} {
		parsed, err := ParseSelector(sel.String())
		require.NoError(t, err, sel.String())
		assert.Equal(t, sel, parsed)
	}
}

func TestAssertionErrorUnwrap(t *testing.T) {
	err := &AssertionError{Locator: "css=#x", Property: "visible", Expected: true, Observed: false, Cause: ErrNotFound}
	assert.ErrorIs(t, err, ErrAssertionFailed)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "css=#x")
	assert.True(t, IsResolutionError(ErrAmbiguous))
	assert.False(t, IsResolutionError(ErrTimeout))
}
