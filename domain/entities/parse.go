package entities

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	attributeSelectorRe = regexp.MustCompile(`^([a-zA-Z][\w-]*)?\[\s*([\w:-]+)\s*(?:=\s*(?:"([^"]*)"|'([^']*)'|([^\]"'\s]+)))?\s*\]$`)
	roleFilterRe        = regexp.MustCompile(`^\[\s*([\w-]+)\s*(?:=\s*(?:"((?:[^"\\]|\\.)*)"|'([^']*)'|([^\]"'\s]+)))?\s*\]`)
)

// ParseSelector maps a Playwright-style selector string onto a Selector
// variant: "css=", "xpath=", "text=" and "role=" prefixes, XPath
// expressions starting with "//" or "..", single attribute predicates
// such as `[name="q"]` and plain CSS otherwise.
func ParseSelector(raw string) (Selector, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("%w: empty selector", ErrUnsupportedSelector)
	}

	switch {
	case strings.HasPrefix(s, "css="):
		return CSS(strings.TrimPrefix(s, "css=")), nil
	case strings.HasPrefix(s, "xpath="):
		return XPath(strings.TrimPrefix(s, "xpath=")), nil
	case strings.HasPrefix(s, "text="):
		return parseText(strings.TrimPrefix(s, "text=")), nil
	case strings.HasPrefix(s, "role="):
		return parseRole(strings.TrimPrefix(s, "role="))
	case strings.HasPrefix(s, "//"), strings.HasPrefix(s, ".."), strings.HasPrefix(s, "(//"):
		return XPath(s), nil
	}

	if m := attributeSelectorRe.FindStringSubmatch(s); m != nil {
		sel := AttributeSelector{Tag: m[1], Name: m[2]}
		if i := strings.Index(s, "="); i >= 0 {
			sel.HasValue = true
			sel.Value = m[3] + m[4] + m[5]
		}
		return sel, nil
	}

	return CSS(s), nil
}

func parseText(body string) Selector {
	if len(body) >= 2 {
		first, last := body[0], body[len(body)-1]
		if (first == '"' || first == '\'') && first == last {
			return ExactText(body[1 : len(body)-1])
		}
	}
	return Text(body)
}

func parseRole(body string) (Selector, error) {
	end := strings.IndexByte(body, '[')
	if end < 0 {
		end = len(body)
	}
	sel := RoleSelector{Role: strings.TrimSpace(body[:end])}
	if sel.Role == "" {
		return nil, fmt.Errorf("%w: role selector without a role", ErrUnsupportedSelector)
	}

	rest := body[end:]
	for rest != "" {
		m := roleFilterRe.FindStringSubmatch(rest)
		if m == nil {
			return nil, fmt.Errorf("%w: malformed role filter %q", ErrUnsupportedSelector, rest)
		}
		rest = strings.TrimSpace(rest[len(m[0]):])

		value := m[2] + m[3] + m[4]
		if m[2] != "" {
			if unq, err := strconv.Unquote(`"` + m[2] + `"`); err == nil {
				value = unq
			}
		}

		switch m[1] {
		case "name":
			sel.Name = value
			sel.HasName = true
		case "level":
			level, err := strconv.Atoi(value)
			if err != nil || level < 1 {
				return nil, fmt.Errorf("%w: invalid heading level %q", ErrUnsupportedSelector, value)
			}
			sel.Level = level
		case "include-hidden":
			sel.IncludeHidden = value == "" || value == "true"
		default:
			return nil, fmt.Errorf("%w: unknown role filter %q", ErrUnsupportedSelector, m[1])
		}
	}
	return sel, nil
}
