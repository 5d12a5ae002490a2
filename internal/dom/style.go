package dom

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Style is an ordered list of CSS declarations as found in a style attribute.
type Style struct {
	decls []declaration
}

type declaration struct {
	prop  string
	value string
}

// ParseStyle parses the contents of a style attribute.
// Malformed declarations are dropped.
func ParseStyle(s string) Style {
	var st Style

	for _, part := range strings.Split(s, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}

		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)

		if prop == "" || value == "" {
			continue
		}

		st.Set(prop, value)
	}

	return st
}

// NewStyle builds a style from alternating property/value pairs.
func NewStyle(pairs ...string) Style {
	var st Style

	for i := 0; i+1 < len(pairs); i += 2 {
		st.Set(pairs[i], pairs[i+1])
	}

	return st
}

// Get returns the value of a property, or "" when unset.
func (s Style) Get(prop string) string {
	for _, d := range s.decls {
		if d.prop == prop {
			return d.value
		}
	}

	return ""
}

// Set replaces the value of a property, appending it when unset.
func (s *Style) Set(prop, value string) {
	for i := range s.decls {
		if s.decls[i].prop == prop {
			s.decls[i].value = value

			return
		}
	}

	s.decls = append(s.decls, declaration{prop: prop, value: value})
}

// Remove deletes a property.
func (s *Style) Remove(prop string) {
	kept := s.decls[:0]

	for _, d := range s.decls {
		if d.prop != prop {
			kept = append(kept, d)
		}
	}

	s.decls = kept
}

// Len returns the number of declarations.
func (s Style) Len() int {
	return len(s.decls)
}

// String renders the declarations in attribute form.
func (s Style) String() string {
	parts := make([]string, 0, len(s.decls))

	for _, d := range s.decls {
		parts = append(parts, d.prop+": "+d.value)
	}

	return strings.Join(parts, "; ")
}

// pixels reads a "NNpx" length, returning 0 for anything else.
func (s Style) pixels(prop string) int {
	v := strings.TrimSuffix(s.Get(prop), "px")

	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}

	return n
}

// StyleOf returns the parsed style attribute of an element.
func StyleOf(n *html.Node) Style {
	return ParseStyle(Attr(n, "style"))
}

// SetStyle writes st back to n, removing the attribute when empty.
func SetStyle(n *html.Node, st Style) {
	if st.Len() == 0 {
		RemoveAttr(n, "style")

		return
	}

	SetAttr(n, "style", st.String())
}

// Attr returns the value of the named attribute.
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}

	return ""
}

// SetAttr sets or replaces the named attribute.
func SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = val

			return
		}
	}

	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes the named attribute.
func RemoveAttr(n *html.Node, key string) {
	kept := n.Attr[:0]

	for _, a := range n.Attr {
		if a.Namespace != "" || a.Key != key {
			kept = append(kept, a)
		}
	}

	n.Attr = kept
}

// HasClass reports whether the element carries the class name.
func HasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c == class {
			return true
		}
	}

	return false
}
