// pkg/dom/attr.go
package dom

import (
	"sort"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
)

// --- Attributes ---

// Attr returns the value of the named attribute, or "" when absent.
func Attr(n *html.Node, key string) string {
	if !IsElement(n) {
		return ""
	}
	return htmlquery.SelectAttr(n, strings.ToLower(key))
}

// GetAttr returns the value of the named attribute and whether it exists.
func GetAttr(n *html.Node, key string) (string, bool) {
	if !IsElement(n) {
		return "", false
	}
	key = strings.ToLower(key)
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether the named attribute exists.
func HasAttr(n *html.Node, key string) bool {
	_, ok := GetAttr(n, key)
	return ok
}

// SetAttr sets an attribute, updating it in place when it exists.
func SetAttr(n *html.Node, key, value string) {
	if !IsElement(n) {
		return
	}
	key = strings.ToLower(key)
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

// RemoveAttr removes an attribute if present.
func RemoveAttr(n *html.Node, key string) {
	if !IsElement(n) {
		return
	}
	key = strings.ToLower(key)
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// --- Class List ---

// Classes returns the element's class tokens.
func Classes(n *html.Node) []string {
	return strings.Fields(Attr(n, "class"))
}

// HasClass reports whether the class token is present.
func HasClass(n *html.Node, class string) bool {
	for _, c := range Classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass adds a class token if missing.
func AddClass(n *html.Node, class string) {
	if class == "" || HasClass(n, class) {
		return
	}
	SetAttr(n, "class", strings.Join(append(Classes(n), class), " "))
}

// RemoveClass removes every occurrence of a class token.
func RemoveClass(n *html.Node, class string) {
	if !HasAttr(n, "class") {
		return
	}
	var kept []string
	for _, c := range Classes(n) {
		if c != class {
			kept = append(kept, c)
		}
	}
	SetAttr(n, "class", strings.Join(kept, " "))
}

// ToggleClass flips a class token and reports whether it is now present.
func ToggleClass(n *html.Node, class string) bool {
	if HasClass(n, class) {
		RemoveClass(n, class)
		return false
	}
	AddClass(n, class)
	return true
}

// --- Style ---

// parseStyle reads a style attribute into declarations. Property names are
// lowercased. ok is false when the attribute is not valid CSS.
func parseStyle(raw string) (decls []*css.Declaration, ok bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, true
	}
	decls, err := parser.ParseDeclarations(raw)
	if err != nil {
		return nil, false
	}
	kept := decls[:0]
	for _, d := range decls {
		d.Property = strings.ToLower(strings.TrimSpace(d.Property))
		if d.Property != "" {
			kept = append(kept, d)
		}
	}
	return kept, true
}

func renderStyle(decls []*css.Declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.String())
	}
	return strings.Join(parts, " ")
}

// Style returns a style property by its camelCase (or hyphenated) name,
// without any !important flag.
func Style(n *html.Node, prop string) string {
	name := KebabCase(prop)
	decls, _ := parseStyle(Attr(n, "style"))
	for _, d := range decls {
		if d.Property == name {
			return d.Value
		}
	}
	return ""
}

// SetStyle sets a style property by its camelCase (or hyphenated) name. A
// trailing !important in value is kept as the declaration's priority. An
// empty value removes the declaration.
func SetStyle(n *html.Node, prop, value string) {
	if !IsElement(n) {
		return
	}
	name := KebabCase(prop)
	raw := Attr(n, "style")
	decls, ok := parseStyle(raw)

	var next *css.Declaration
	if value != "" {
		parsed, err := parser.ParseDeclarations(name + ": " + value)
		if err != nil || len(parsed) != 1 {
			return
		}
		next = parsed[0]
		next.Property = name
	}
	if !ok {
		// Unparseable styles are kept verbatim.
		if next != nil {
			SetAttr(n, "style", strings.TrimSpace(raw+" "+next.String()))
		}
		return
	}

	found := false
	kept := decls[:0]
	for _, d := range decls {
		if d.Property != name {
			kept = append(kept, d)
			continue
		}
		if next != nil && !found {
			kept = append(kept, next)
		}
		found = true
	}
	if !found && next != nil {
		kept = append(kept, next)
	}
	if len(kept) == 0 {
		RemoveAttr(n, "style")
		return
	}
	SetAttr(n, "style", renderStyle(kept))
}

// Styles returns every declared property keyed by its camelCase name.
func Styles(n *html.Node) map[string]string {
	out := make(map[string]string)
	decls, _ := parseStyle(Attr(n, "style"))
	for _, d := range decls {
		out[CamelCase(d.Property)] = d.Value
	}
	return out
}

// --- Dataset ---

// Data returns a dataset value by camelCase key.
func Data(n *html.Node, key string) (string, bool) {
	return GetAttr(n, "data-"+KebabCase(key))
}

// SetData writes a dataset value by camelCase key.
func SetData(n *html.Node, key, value string) {
	SetAttr(n, "data-"+KebabCase(key), value)
}

// Dataset returns every data-* attribute keyed by its camelCase name.
func Dataset(n *html.Node) map[string]string {
	out := make(map[string]string)
	if !IsElement(n) {
		return out
	}
	for _, a := range n.Attr {
		if strings.HasPrefix(a.Key, "data-") {
			out[CamelCase(strings.TrimPrefix(a.Key, "data-"))] = a.Val
		}
	}
	return out
}

// --- Names ---

// CamelCase converts a hyphenated name to camelCase: "background-color"
// becomes "backgroundColor". Custom properties ("--x") are returned as is.
func CamelCase(s string) string {
	if strings.HasPrefix(s, "--") || !strings.Contains(s, "-") {
		return s
	}
	var sb strings.Builder
	upper := false
	for i, r := range s {
		if r == '-' {
			upper = i > 0
			continue
		}
		if upper && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		upper = false
		sb.WriteRune(r)
	}
	return sb.String()
}

// KebabCase converts a camelCase name to its hyphenated form: "backgroundColor"
// becomes "background-color" and "WebkitTransform" becomes "-webkit-transform".
func KebabCase(s string) string {
	if strings.HasPrefix(s, "--") {
		return s
	}
	var sb strings.Builder
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			sb.WriteByte('-')
			r += 'a' - 'A'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// SortedKeys returns the keys of m in lexical order. Builders iterate maps
// through it so output is deterministic.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
