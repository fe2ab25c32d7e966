package htmldoc

import (
	"strings"

	"golang.org/x/net/html"
)

// nameFromContent lists roles whose accessible name may come from their
// subtree text.
var nameFromContent = map[string]bool{
	"button": true, "cell": true, "checkbox": true, "columnheader": true,
	"gridcell": true, "heading": true, "link": true, "menuitem": true,
	"menuitemcheckbox": true, "menuitemradio": true, "option": true,
	"radio": true, "row": true, "rowheader": true, "switch": true,
	"tab": true, "tooltip": true, "treeitem": true, "caption": true,
}

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"fieldset": true, "figcaption": true, "figure": true, "footer": true,
	"form": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "header": true, "hr": true, "li": true, "main": true,
	"nav": true, "ol": true, "p": true, "section": true, "table": true,
	"td": true, "th": true, "tr": true, "ul": true,
}

// accessibleName computes a text alternative for n following the
// precedence aria-labelledby, aria-label, native labelling, subtree
// content, title, placeholder.
func (d *Document) accessibleName(n *html.Node, role string) string {
	return normalizeSpace(d.nameOf(n, role, false, map[*html.Node]bool{}))
}

func (d *Document) nameOf(n *html.Node, role string, traversal bool, visited map[*html.Node]bool) string {
	if visited[n] {
		return ""
	}
	visited[n] = true

	if !traversal {
		if ids, ok := attr(n, "aria-labelledby"); ok {
			var parts []string
			for _, id := range strings.Fields(ids) {
				if ref := d.elementByID(id); ref != nil {
					if s := d.nameOf(ref, computeRole(ref), true, visited); strings.TrimSpace(s) != "" {
						parts = append(parts, s)
					}
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, " ")
			}
		}
	}

	if v := strings.TrimSpace(attrOr(n, "aria-label", "")); v != "" {
		return v
	}

	if s := d.nativeName(n, visited); s != "" {
		return s
	}

	if traversal || nameFromContent[role] {
		if s := d.contentName(n, visited); strings.TrimSpace(s) != "" {
			return s
		}
	}

	if v := strings.TrimSpace(attrOr(n, "title", "")); v != "" {
		return v
	}
	if role == "textbox" || role == "searchbox" || role == "combobox" {
		if v := strings.TrimSpace(attrOr(n, "placeholder", "")); v != "" {
			return v
		}
	}
	return ""
}

func (d *Document) nativeName(n *html.Node, visited map[*html.Node]bool) string {
	switch n.Data {
	case "input":
		typ := strings.ToLower(attrOr(n, "type", ""))
		switch typ {
		case "submit", "reset", "button":
			if v, ok := attr(n, "value"); ok {
				return v
			}
			switch typ {
			case "submit":
				return "Submit"
			case "reset":
				return "Reset"
			}
			return ""
		case "image":
			if v := attrOr(n, "alt", ""); v != "" {
				return v
			}
			return attrOr(n, "value", "")
		}
		return d.labelText(n, visited)
	case "textarea", "select", "button", "meter", "output", "progress":
		return d.labelText(n, visited)
	case "img", "area":
		return attrOr(n, "alt", "")
	case "fieldset":
		return d.firstChildText(n, "legend", visited)
	case "table":
		return d.firstChildText(n, "caption", visited)
	case "figure":
		return d.firstChildText(n, "figcaption", visited)
	}
	return ""
}

// labelText joins the content of <label for=id> elements and an enclosing
// <label>, skipping the labelled control itself.
func (d *Document) labelText(n *html.Node, visited map[*html.Node]bool) string {
	var parts []string
	if id, ok := attr(n, "id"); ok && id != "" {
		walk(d.root, func(l *html.Node) bool {
			if l.Data == "label" && attrOr(l, "for", "") == id {
				if s := strings.TrimSpace(d.contentName(l, visited)); s != "" {
					parts = append(parts, s)
				}
			}
			return true
		})
	}
	if l := closest(n, "label"); l != nil && !hasAttr(l, "for") {
		if s := strings.TrimSpace(d.contentName(l, visited)); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func (d *Document) firstChildText(n *html.Node, tag string, visited map[*html.Node]bool) string {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c, tag) {
			return d.contentName(c, visited)
		}
	}
	return ""
}

func (d *Document) contentName(n *html.Node, visited map[*html.Node]bool) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			b.WriteString(c.Data)
		case html.ElementNode:
			if visited[c] || axHidden(c) {
				continue
			}
			if blockTags[c.Data] {
				b.WriteString(" ")
			}
			switch {
			case c.Data == "img":
				b.WriteString(attrOr(c, "alt", ""))
			case textControl(c) || c.Data == "select":
				b.WriteString(d.valueOf(c))
			default:
				b.WriteString(d.nameOf(c, computeRole(c), true, visited))
			}
			if blockTags[c.Data] {
				b.WriteString(" ")
			}
		}
	}
	return b.String()
}
