package htmldoc

import (
	"strconv"
	"strings"

	"e2e_locators/domain/entities"

	"golang.org/x/net/html"
)

var textInputTypes = map[string]bool{
	"": true, "text": true, "email": true, "tel": true, "url": true,
	"password": true, "search": true, "number": true,
	"date": true, "datetime-local": true, "month": true, "time": true, "week": true,
}

var nonRendered = map[string]bool{
	"head": true, "script": true, "style": true, "template": true,
	"noscript": true, "title": true, "meta": true, "link": true,
}

var sectioningContent = map[string]bool{
	"article": true, "aside": true, "main": true, "nav": true, "section": true,
}

var genericTags = map[string]bool{
	"div": true, "span": true, "b": true, "i": true, "u": true, "small": true,
	"bdi": true, "bdo": true, "data": true, "pre": true, "q": true, "samp": true,
	"body": true, "hgroup": true,
}

// computeRole returns the explicit role when it names a known ARIA role,
// the implicit HTML role otherwise.
func computeRole(n *html.Node) string {
	if v, ok := attr(n, "role"); ok {
		for _, token := range strings.Fields(strings.ToLower(v)) {
			if entities.IsKnownRole(token) {
				return token
			}
		}
	}
	return implicitRole(n)
}

func implicitRole(n *html.Node) string {
	switch n.Data {
	case "a", "area":
		if hasAttr(n, "href") {
			return "link"
		}
		return "generic"
	case "article":
		return "article"
	case "aside":
		return "complementary"
	case "blockquote":
		return "blockquote"
	case "button":
		return "button"
	case "caption":
		return "caption"
	case "code":
		return "code"
	case "datalist":
		return "listbox"
	case "dd":
		return "definition"
	case "del", "s":
		return "deletion"
	case "details", "fieldset", "optgroup":
		return "group"
	case "dfn", "dt":
		return "term"
	case "dialog":
		return "dialog"
	case "em":
		return "emphasis"
	case "figure":
		return "figure"
	case "footer":
		if insideSectioning(n) {
			return "generic"
		}
		return "contentinfo"
	case "header":
		if insideSectioning(n) {
			return "generic"
		}
		return "banner"
	case "form":
		return "form"
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return "heading"
	case "hr":
		return "separator"
	case "html":
		return "document"
	case "img":
		if alt, ok := attr(n, "alt"); ok && alt == "" {
			return "presentation"
		}
		return "img"
	case "input":
		return inputRole(n)
	case "ins":
		return "insertion"
	case "li":
		return "listitem"
	case "main":
		return "main"
	case "math":
		return "math"
	case "menu", "ol", "ul":
		return "list"
	case "meter":
		return "meter"
	case "nav":
		return "navigation"
	case "option":
		return "option"
	case "output":
		return "status"
	case "p":
		return "paragraph"
	case "progress":
		return "progressbar"
	case "search":
		return "search"
	case "section":
		if hasAttr(n, "aria-label") || hasAttr(n, "aria-labelledby") || hasAttr(n, "title") {
			return "region"
		}
		return "generic"
	case "select":
		if hasAttr(n, "multiple") {
			return "listbox"
		}
		if size, err := strconv.Atoi(attrOr(n, "size", "0")); err == nil && size > 1 {
			return "listbox"
		}
		return "combobox"
	case "strong":
		return "strong"
	case "sub":
		return "subscript"
	case "sup":
		return "superscript"
	case "table":
		return "table"
	case "tbody", "thead", "tfoot":
		return "rowgroup"
	case "td":
		if t := closest(n, "table"); t != nil {
			if r := computeRole(t); r == "grid" || r == "treegrid" {
				return "gridcell"
			}
		}
		return "cell"
	case "th":
		if attrOr(n, "scope", "") == "row" {
			return "rowheader"
		}
		return "columnheader"
	case "tr":
		return "row"
	case "textarea":
		return "textbox"
	case "time":
		return "time"
	}
	if genericTags[n.Data] {
		return "generic"
	}
	return ""
}

func inputRole(n *html.Node) string {
	typ := strings.ToLower(attrOr(n, "type", ""))
	switch typ {
	case "button", "submit", "reset", "image":
		return "button"
	case "checkbox":
		return "checkbox"
	case "radio":
		return "radio"
	case "range":
		return "slider"
	case "number":
		return "spinbutton"
	case "hidden", "color", "file", "date", "datetime-local", "month", "time", "week":
		return ""
	case "search":
		if hasAttr(n, "list") {
			return "combobox"
		}
		return "searchbox"
	}
	if hasAttr(n, "list") {
		return "combobox"
	}
	return "textbox"
}

// headingLevel returns aria-level when valid, the hN digit for native
// headings and 2 for other role=heading elements.
func headingLevel(n *html.Node, role string) int {
	if role != "heading" {
		return 0
	}
	if v, ok := attr(n, "aria-level"); ok {
		if level, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && level > 0 {
			return level
		}
	}
	if len(n.Data) == 2 && n.Data[0] == 'h' && n.Data[1] >= '1' && n.Data[1] <= '6' {
		return int(n.Data[1] - '0')
	}
	return 2
}

// renderHidden reports whether n is not rendered: hidden attribute,
// display:none or visibility:hidden inline styles, hidden inputs and
// elements that are never rendered.
func renderHidden(n *html.Node) bool {
	if isElement(n, "input") && strings.EqualFold(attrOr(n, "type", ""), "hidden") {
		return true
	}
	visibilityDecided := false
	for p := n; p != nil && p.Type == html.ElementNode; p = p.Parent {
		if nonRendered[p.Data] || hasAttr(p, "hidden") {
			return true
		}
		style := inlineStyle(p)
		if style["display"] == "none" {
			return true
		}
		if v, ok := style["visibility"]; ok && !visibilityDecided {
			visibilityDecided = true
			if v == "hidden" || v == "collapse" {
				return true
			}
		}
	}
	return false
}

// axHidden reports whether n is excluded from the accessibility tree
func axHidden(n *html.Node) bool {
	if renderHidden(n) {
		return true
	}
	for p := n; p != nil && p.Type == html.ElementNode; p = p.Parent {
		if strings.EqualFold(attrOr(p, "aria-hidden", ""), "true") {
			return true
		}
	}
	return false
}

var disableable = map[string]bool{
	"button": true, "input": true, "select": true, "textarea": true,
	"optgroup": true, "option": true, "fieldset": true,
}

func disabled(n *html.Node) bool {
	if strings.EqualFold(attrOr(n, "aria-disabled", ""), "true") {
		return true
	}
	if !disableable[n.Data] {
		return false
	}
	if hasAttr(n, "disabled") {
		return true
	}
	for p := n.Parent; p != nil && p.Type == html.ElementNode; p = p.Parent {
		if p.Data == "fieldset" && hasAttr(p, "disabled") {
			return true
		}
	}
	return false
}

func textControl(n *html.Node) bool {
	if isElement(n, "textarea") {
		return true
	}
	if isElement(n, "input") {
		return textInputTypes[strings.ToLower(attrOr(n, "type", ""))]
	}
	return false
}

func contentEditable(n *html.Node) bool {
	v, ok := attr(n, "contenteditable")
	return ok && (v == "" || strings.EqualFold(v, "true") || strings.EqualFold(v, "plaintext-only"))
}

func editable(n *html.Node) bool {
	if disabled(n) || strings.EqualFold(attrOr(n, "aria-readonly", ""), "true") {
		return false
	}
	if textControl(n) {
		return !hasAttr(n, "readonly")
	}
	return contentEditable(n)
}

func checkable(n *html.Node) bool {
	if !isElement(n, "input") {
		return false
	}
	typ := strings.ToLower(attrOr(n, "type", ""))
	return typ == "checkbox" || typ == "radio"
}

func inlineStyle(n *html.Node) map[string]string {
	v, ok := attr(n, "style")
	if !ok {
		return nil
	}
	out := make(map[string]string)
	for _, decl := range strings.Split(v, ";") {
		prop, val, found := strings.Cut(decl, ":")
		if !found {
			continue
		}
		val = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(val), "!important"))
		out[strings.ToLower(strings.TrimSpace(prop))] = strings.ToLower(val)
	}
	return out
}

func insideSectioning(n *html.Node) bool {
	for p := n.Parent; p != nil && p.Type == html.ElementNode; p = p.Parent {
		if sectioningContent[p.Data] {
			return true
		}
	}
	return false
}

func closest(n *html.Node, tag string) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if isElement(p, tag) {
			return p
		}
	}
	return nil
}

func attrOr(n *html.Node, name, def string) string {
	if v, ok := attr(n, name); ok {
		return v
	}
	return def
}
