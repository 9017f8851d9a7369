// pkg/dom/controls.go
package dom

import (
	"strings"
	"time"

	"golang.org/x/net/html"
)

// File describes one entry of a file input's selection.
type File struct {
	Name         string
	Size         int64
	Type         string // MIME type
	LastModified time.Time
	// Path locates the file's bytes for a persist.FileReader.
	Path string
}

// controlState is the live, non-attribute state of a form control. A nil
// pointer field means "never set programmatically"; the attribute default
// applies.
type controlState struct {
	value    *string
	checked  *bool
	selected *bool
	files    []File
}

func (d *Document) peek(n *html.Node) controlState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if s, ok := d.state[n]; ok {
		return *s
	}
	return controlState{}
}

func (d *Document) mutate(n *html.Node, fn func(s *controlState)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.state[n]
	if !ok {
		s = &controlState{}
		d.state[n] = s
	}
	fn(s)
}

func ptr[T any](v T) *T { return &v }

// --- Classification ---

// IsFormControl reports whether n is an input, select or textarea element.
func IsFormControl(n *html.Node) bool {
	if !IsElement(n) {
		return false
	}
	switch n.Data {
	case "input", "select", "textarea":
		return true
	}
	return false
}

// ControlType returns the control's type the way the DOM reports it:
// the lowercased input type ("text" by default), "select-one" or
// "select-multiple", "textarea", or the button type. Non-controls return "".
func ControlType(n *html.Node) string {
	if !IsElement(n) {
		return ""
	}
	switch n.Data {
	case "input":
		if t := strings.ToLower(strings.TrimSpace(Attr(n, "type"))); t != "" {
			return t
		}
		return "text"
	case "select":
		if HasAttr(n, "multiple") {
			return "select-multiple"
		}
		return "select-one"
	case "textarea":
		return "textarea"
	case "button":
		if t := strings.ToLower(Attr(n, "type")); t != "" {
			return t
		}
		return "submit"
	}
	return ""
}

// IsCheckable reports whether n is a checkbox or radio input.
func IsCheckable(n *html.Node) bool {
	if !IsElement(n) || n.Data != "input" {
		return false
	}
	t := ControlType(n)
	return t == "checkbox" || t == "radio"
}

// IsMultiple reports whether n is a multi-select.
func IsMultiple(n *html.Node) bool {
	return IsElement(n) && n.Data == "select" && HasAttr(n, "multiple")
}

// Disabled reports whether n is disabled directly or through a disabled
// fieldset or optgroup ancestor.
func Disabled(n *html.Node) bool {
	if !IsElement(n) {
		return false
	}
	if HasAttr(n, "disabled") {
		return true
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if !IsElement(p) {
			continue
		}
		if (p.Data == "fieldset" || p.Data == "optgroup") && HasAttr(p, "disabled") {
			return true
		}
	}
	return false
}

// --- Options ---

// Options returns the option elements of a select in document order,
// including those inside optgroups.
func Options(sel *html.Node) []*html.Node {
	var out []*html.Node
	for c := sel.FirstChild; c != nil; c = c.NextSibling {
		walk(c, func(n *html.Node) bool {
			if IsElement(n) && n.Data == "option" {
				out = append(out, n)
				return false
			}
			return IsElement(n) && n.Data == "optgroup"
		})
	}
	return out
}

// OptionValue returns an option's value attribute, or its whitespace
// collapsed text when the attribute is absent.
func OptionValue(opt *html.Node) string {
	if v, ok := GetAttr(opt, "value"); ok {
		return v
	}
	return strings.Join(strings.Fields(TextContent(opt)), " ")
}

func owningSelect(opt *html.Node) *html.Node {
	for p := opt.Parent; p != nil; p = p.Parent {
		if IsElement(p) && p.Data == "select" {
			return p
		}
	}
	return nil
}

// rawSelected is the option's own selectedness before single-select
// resolution.
func (d *Document) rawSelected(opt *html.Node) (selected, explicit bool) {
	if s := d.peek(opt); s.selected != nil {
		return *s.selected, true
	}
	return HasAttr(opt, "selected"), false
}

// SelectedOptions returns the selected options of sel. A single-select
// resolves to at most one option: the last one marked selected, else the
// first enabled option when nothing was ever explicitly chosen.
func (d *Document) SelectedOptions(sel *html.Node) []*html.Node {
	opts := Options(sel)
	if IsMultiple(sel) {
		var out []*html.Node
		for _, o := range opts {
			if on, _ := d.rawSelected(o); on {
				out = append(out, o)
			}
		}
		return out
	}
	var picked *html.Node
	anyExplicit := false
	for _, o := range opts {
		on, explicit := d.rawSelected(o)
		anyExplicit = anyExplicit || explicit
		if on {
			picked = o
		}
	}
	if picked == nil && !anyExplicit {
		for _, o := range opts {
			if !Disabled(o) {
				picked = o
				break
			}
		}
	}
	if picked == nil {
		return nil
	}
	return []*html.Node{picked}
}

// Selected reports an option's effective selectedness.
func (d *Document) Selected(opt *html.Node) bool {
	sel := owningSelect(opt)
	if sel == nil {
		on, _ := d.rawSelected(opt)
		return on
	}
	for _, o := range d.SelectedOptions(sel) {
		if o == opt {
			return true
		}
	}
	return false
}

// SetSelected sets an option's selectedness. Selecting an option of a
// single-select deselects its siblings.
func (d *Document) SetSelected(opt *html.Node, selected bool) {
	if !IsElement(opt) || opt.Data != "option" {
		return
	}
	if sel := owningSelect(opt); selected && sel != nil && !IsMultiple(sel) {
		for _, o := range Options(sel) {
			if o != opt {
				d.mutate(o, func(s *controlState) { s.selected = ptr(false) })
			}
		}
	}
	d.mutate(opt, func(s *controlState) { s.selected = ptr(selected) })
}

// --- Value ---

// Value returns the live value of a control.
func (d *Document) Value(n *html.Node) string {
	if !IsElement(n) {
		return ""
	}
	switch n.Data {
	case "input":
		if ControlType(n) == "file" {
			if files := d.peek(n).files; len(files) > 0 {
				return files[0].Name
			}
			return ""
		}
		if s := d.peek(n); s.value != nil {
			return *s.value
		}
		if v, ok := GetAttr(n, "value"); ok {
			return v
		}
		if IsCheckable(n) {
			return "on"
		}
		return ""
	case "textarea":
		if s := d.peek(n); s.value != nil {
			return *s.value
		}
		return TextContent(n)
	case "select":
		if opts := d.SelectedOptions(n); len(opts) > 0 {
			return OptionValue(opts[0])
		}
		return ""
	case "option":
		return OptionValue(n)
	case "button", "output", "data", "li", "meter", "progress", "param":
		return Attr(n, "value")
	}
	return ""
}

// SetValue sets the live value of a control. For a select, the first option
// with a matching value becomes the only selected one; no match leaves
// nothing selected. Setting a file input to "" clears its selection.
func (d *Document) SetValue(n *html.Node, value string) {
	if !IsElement(n) {
		return
	}
	switch n.Data {
	case "input":
		if ControlType(n) == "file" {
			if value == "" {
				d.mutate(n, func(s *controlState) { s.files = nil })
			}
			return
		}
		d.mutate(n, func(s *controlState) { s.value = ptr(value) })
	case "textarea":
		d.mutate(n, func(s *controlState) { s.value = ptr(value) })
	case "select":
		matched := false
		for _, o := range Options(n) {
			on := !matched && OptionValue(o) == value
			matched = matched || on
			d.mutate(o, func(s *controlState) { s.selected = ptr(on) })
		}
	case "option", "button", "output", "data", "li", "meter", "progress", "param":
		SetAttr(n, "value", value)
	}
}

// --- Checked ---

// Checked reports the live checkedness of a checkbox or radio.
func (d *Document) Checked(n *html.Node) bool {
	if !IsCheckable(n) {
		return false
	}
	if s := d.peek(n); s.checked != nil {
		return *s.checked
	}
	return HasAttr(n, "checked")
}

// SetChecked sets the live checkedness of a checkbox or radio. Checking a
// named radio unchecks the other radios of its group, scoped to the owning
// form or, outside a form, to the tree the radio lives in.
func (d *Document) SetChecked(n *html.Node, checked bool) {
	if !IsCheckable(n) {
		return
	}
	if checked && ControlType(n) == "radio" {
		if name := Attr(n, "name"); name != "" {
			for _, other := range radioGroup(n, name) {
				if other != n {
					d.mutate(other, func(s *controlState) { s.checked = ptr(false) })
				}
			}
		}
	}
	d.mutate(n, func(s *controlState) { s.checked = ptr(checked) })
}

func radioGroup(n *html.Node, name string) []*html.Node {
	scope := n
	for p := n.Parent; p != nil; p = p.Parent {
		scope = p
		if IsElement(p) && p.Data == "form" {
			break
		}
	}
	var group []*html.Node
	walk(scope, func(c *html.Node) bool {
		if IsElement(c) && c.Data == "input" && ControlType(c) == "radio" && Attr(c, "name") == name {
			group = append(group, c)
		}
		return true
	})
	return group
}

// --- Files ---

// Files returns a copy of a file input's current selection.
func (d *Document) Files(n *html.Node) []File {
	files := d.peek(n).files
	if len(files) == 0 {
		return nil
	}
	out := make([]File, len(files))
	copy(out, files)
	return out
}

// SetFiles replaces a file input's selection. It is how embedders model a
// user picking files before dispatching "change".
func (d *Document) SetFiles(n *html.Node, files []File) {
	if !IsElement(n) || n.Data != "input" || ControlType(n) != "file" {
		return
	}
	cp := make([]File, len(files))
	copy(cp, files)
	d.mutate(n, func(s *controlState) { s.files = cp })
}
