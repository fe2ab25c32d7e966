package facade

import (
	"context"
	"fmt"
	"strings"

	"e2e_locators/domain/entities"
	"e2e_locators/domain/interfaces"
)

// matchFilter narrows the raw query result of a selector
type matchFilter func(ctx context.Context, engine interfaces.Engine, el interfaces.Element) (bool, error)

const (
	upperASCII = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerASCII = "abcdefghijklmnopqrstuvwxyz"
)

// compile turns a selector into an engine query plus an optional filter.
// scoped is true when the query runs inside a parent match.
func compile(sel entities.Selector, scoped bool) (interfaces.Query, matchFilter, error) {
	switch s := sel.(type) {
	case entities.CSSSelector:
		return interfaces.Query{Language: interfaces.QueryCSS, Expr: s.Expr}, nil, nil

	case entities.XPathSelector:
		expr := s.Expr
		if scoped {
			expr = relativeXPath(expr)
		}
		return interfaces.Query{Language: interfaces.QueryXPath, Expr: expr}, nil, nil

	case entities.AttributeSelector:
		return interfaces.Query{Language: interfaces.QueryCSS, Expr: attributeCSS(s)}, nil, nil

	case entities.TextSelector:
		return interfaces.Query{Language: interfaces.QueryXPath, Expr: textXPath(s, scoped)}, nil, nil

	case entities.RoleSelector:
		if s.Role == "" {
			return interfaces.Query{}, nil, fmt.Errorf("%w: role selector without a role", entities.ErrUnsupportedSelector)
		}
		return interfaces.Query{Language: interfaces.QueryCSS, Expr: "*"}, roleFilter(s), nil

	default:
		return interfaces.Query{}, nil, fmt.Errorf("%w: %T", entities.ErrUnsupportedSelector, sel)
	}
}

func roleFilter(s entities.RoleSelector) matchFilter {
	return func(ctx context.Context, engine interfaces.Engine, el interfaces.Element) (bool, error) {
		ax, err := engine.Accessibility(ctx, el)
		if err != nil {
			return false, err
		}
		return matchesRole(s, ax), nil
	}
}

// matchesRole applies the role resolution policy. A name filter never
// matches an element without a discoverable accessible name.
func matchesRole(s entities.RoleSelector, ax entities.AXNode) bool {
	if ax.Hidden && !s.IncludeHidden {
		return false
	}
	if ax.Role != s.Role {
		return false
	}
	if s.HasName && (!ax.HasName || ax.Name != s.Name) {
		return false
	}
	if s.Level > 0 && ax.Level != s.Level {
		return false
	}
	return true
}

func relativeXPath(expr string) string {
	switch {
	case strings.HasPrefix(expr, "/"):
		return "." + expr
	case strings.HasPrefix(expr, "(/"):
		return "(." + expr[1:]
	}
	return expr
}

func attributeCSS(s entities.AttributeSelector) string {
	if !s.HasValue {
		return fmt.Sprintf("%s[%s]", s.Tag, s.Name)
	}
	return fmt.Sprintf("%s[%s=%s]", s.Tag, s.Name, cssString(s.Value))
}

func cssString(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\a `)
	return `"` + r.Replace(v) + `"`
}

func textXPath(s entities.TextSelector, scoped bool) string {
	needle := strings.Join(strings.Fields(s.Text), " ")

	var pred string
	if s.Exact {
		pred = fmt.Sprintf("normalize-space(.) = %s", xpathString(needle))
	} else {
		pred = fmt.Sprintf("contains(translate(normalize-space(.), '%s', '%s'), %s)",
			upperASCII, lowerASCII, xpathString(toLowerASCII(needle)))
	}

	prefix := "//"
	if scoped {
		prefix = ".//"
	}
	return fmt.Sprintf("%s*[not(self::html or self::head or self::script or self::style or self::title)][%s][not(*[%s])]",
		prefix, pred, pred)
}

// toLowerASCII folds A-Z only, the same folding translate() applies to the
// document text. Other letters must match case exactly.
func toLowerASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

// xpathString quotes v as an XPath 1.0 string literal
func xpathString(v string) string {
	if !strings.Contains(v, `'`) {
		return "'" + v + "'"
	}
	if !strings.Contains(v, `"`) {
		return `"` + v + `"`
	}
	parts := strings.Split(v, `'`)
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		quoted = append(quoted, "'"+p+"'")
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
