// pkg/dom/clone.go
package dom

import (
	"golang.org/x/net/html"
)

// formControls returns n (when it is a control) followed by its control
// descendants, in document order.
func formControls(n *html.Node) []*html.Node {
	var out []*html.Node
	walk(n, func(c *html.Node) bool {
		if IsFormControl(c) {
			out = append(out, c)
		}
		return true
	})
	return out
}

// CloneWithState deep clones n and copies the live state a structural clone
// loses: option selectedness, checkedness and input/textarea values. A cloned
// textarea also carries its value as text.
func (d *Document) CloneWithState(n *html.Node) *html.Node {
	clone := Clone(n)
	if clone == nil {
		return nil
	}
	src, dst := formControls(n), formControls(clone)
	// Clone preserves structure, so both walks yield the same sequence.
	for i := 0; i < len(src) && i < len(dst); i++ {
		d.copyState(src[i], dst[i])
	}
	return clone
}

func (d *Document) copyState(from, to *html.Node) {
	switch from.Data {
	case "select":
		fromOpts, toOpts := Options(from), Options(to)
		selected := make(map[*html.Node]bool, len(fromOpts))
		for _, o := range d.SelectedOptions(from) {
			selected[o] = true
		}
		for i := 0; i < len(fromOpts) && i < len(toOpts); i++ {
			on := selected[fromOpts[i]]
			d.mutate(toOpts[i], func(s *controlState) { s.selected = ptr(on) })
		}
	case "textarea":
		value := d.Value(from)
		d.mutate(to, func(s *controlState) { s.value = ptr(value) })
		SetTextContent(to, value)
	case "input":
		if IsCheckable(from) {
			// Written directly so the clone does not steal the group's
			// checked radio from the original.
			checked := d.Checked(from)
			d.mutate(to, func(s *controlState) { s.checked = ptr(checked) })
		}
		if ControlType(from) == "file" {
			return
		}
		if s := d.peek(from); s.value != nil {
			value := *s.value
			d.mutate(to, func(s *controlState) { s.value = ptr(value) })
		}
	}
}

// SettleRadios applies the radio group rule to a freshly inserted subtree:
// each checked radio under n unchecks the rest of its group.
func (d *Document) SettleRadios(n *html.Node) {
	for _, c := range formControls(n) {
		if ControlType(c) == "radio" && d.Checked(c) {
			d.SetChecked(c, true)
		}
	}
}

// ReflectState writes the live state of every control under n into its
// attributes and text so that serializing n captures it.
func (d *Document) ReflectState(n *html.Node) {
	for _, c := range formControls(n) {
		switch c.Data {
		case "select":
			selected := make(map[*html.Node]bool)
			for _, o := range d.SelectedOptions(c) {
				selected[o] = true
			}
			for _, o := range Options(c) {
				if selected[o] {
					SetAttr(o, "selected", "")
				} else {
					RemoveAttr(o, "selected")
				}
			}
		case "textarea":
			SetTextContent(c, d.Value(c))
		case "input":
			switch {
			case IsCheckable(c):
				if d.Checked(c) {
					SetAttr(c, "checked", "")
				} else {
					RemoveAttr(c, "checked")
				}
			case ControlType(c) == "file":
			default:
				if s := d.peek(c); s.value != nil {
					SetAttr(c, "value", *s.value)
				}
			}
		}
	}
}
