package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// SelectorKind identifies a Selector variant
type SelectorKind string

const (
	SelectorCSS       SelectorKind = "css"
	SelectorXPath     SelectorKind = "xpath"
	SelectorAttribute SelectorKind = "attribute"
	SelectorText      SelectorKind = "text"
	SelectorRole      SelectorKind = "role"
)

// Selector is the matching rule behind a locator. The set of variants is
// closed: CSSSelector, XPathSelector, AttributeSelector, TextSelector and
// RoleSelector.
type Selector interface {
	Kind() SelectorKind
	String() string
	selector()
}

// CSSSelector matches elements with a CSS selector
type CSSSelector struct {
	Expr string
}

// XPathSelector matches elements with an XPath 1.0 expression
type XPathSelector struct {
	Expr string
}

// AttributeSelector matches elements carrying an attribute, optionally with
// an exact value and restricted to a tag name.
type AttributeSelector struct {
	Tag      string
	Name     string
	Value    string
	HasValue bool
}

// TextSelector matches the deepest elements whose whitespace-normalized text
// contains Text ignoring ASCII letter case, or equals it exactly when Exact
// is set.
type TextSelector struct {
	Text  string
	Exact bool
}

// RoleSelector matches elements by computed ARIA role, accessible name and
// heading level.
type RoleSelector struct {
	Role          string
	Name          string
	HasName       bool
	Level         int
	IncludeHidden bool
}

func (CSSSelector) Kind() SelectorKind       { return SelectorCSS }
func (XPathSelector) Kind() SelectorKind     { return SelectorXPath }
func (AttributeSelector) Kind() SelectorKind { return SelectorAttribute }
func (TextSelector) Kind() SelectorKind      { return SelectorText }
func (RoleSelector) Kind() SelectorKind      { return SelectorRole }

func (CSSSelector) selector()       {}
func (XPathSelector) selector()     {}
func (AttributeSelector) selector() {}
func (TextSelector) selector()      {}
func (RoleSelector) selector()      {}

func (s CSSSelector) String() string   { return "css=" + s.Expr }
func (s XPathSelector) String() string { return "xpath=" + s.Expr }

func (s AttributeSelector) String() string {
	if !s.HasValue {
		return fmt.Sprintf("%s[%s]", s.Tag, s.Name)
	}
	return fmt.Sprintf("%s[%s=%s]", s.Tag, s.Name, strconv.Quote(s.Value))
}

func (s TextSelector) String() string {
	if s.Exact {
		return "text=" + strconv.Quote(s.Text)
	}
	return "text=" + s.Text
}

func (s RoleSelector) String() string {
	var b strings.Builder
	b.WriteString("role=")
	b.WriteString(s.Role)
	if s.HasName {
		fmt.Fprintf(&b, "[name=%s]", strconv.Quote(s.Name))
	}
	if s.Level > 0 {
		fmt.Fprintf(&b, "[level=%d]", s.Level)
	}
	if s.IncludeHidden {
		b.WriteString("[include-hidden]")
	}
	return b.String()
}

// CSS creates a CSS selector
func CSS(expr string) Selector {
	return CSSSelector{Expr: expr}
}

// XPath creates an XPath selector
func XPath(expr string) Selector {
	return XPathSelector{Expr: expr}
}

// Attr matches any element whose attribute name equals value
func Attr(name, value string) Selector {
	return AttributeSelector{Name: name, Value: value, HasValue: true}
}

// TagAttr matches tag elements whose attribute name equals value
func TagAttr(tag, name, value string) Selector {
	return AttributeSelector{Tag: tag, Name: name, Value: value, HasValue: true}
}

// HasAttr matches any element carrying the attribute, whatever its value
func HasAttr(name string) Selector {
	return AttributeSelector{Name: name}
}

// Text matches elements containing text, ignoring ASCII case and extra
// whitespace
func Text(text string) Selector {
	return TextSelector{Text: text}
}

// ExactText matches elements whose normalized text equals text
func ExactText(text string) Selector {
	return TextSelector{Text: text, Exact: true}
}

// RoleOption narrows a role selector
type RoleOption func(*RoleSelector)

// WithName requires the accessible name to equal name exactly
func WithName(name string) RoleOption {
	return func(s *RoleSelector) {
		s.Name = name
		s.HasName = true
	}
}

// WithLevel requires the heading level to equal level
func WithLevel(level int) RoleOption {
	return func(s *RoleSelector) {
		s.Level = level
	}
}

// IncludeHidden also matches elements excluded from the accessibility tree
func IncludeHidden() RoleOption {
	return func(s *RoleSelector) {
		s.IncludeHidden = true
	}
}

// Role creates an ARIA role selector
func Role(role string, opts ...RoleOption) Selector {
	s := RoleSelector{Role: role}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
