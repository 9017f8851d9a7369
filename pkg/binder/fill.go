// pkg/binder/fill.go
package binder

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/xkilldash9x/domunify/pkg/dom"
)

// FillOptions tunes Fill.
type FillOptions struct {
	// ClearMissing resets every bindable control at a visited level whose
	// key is absent from that level's data, and every control inside a
	// container the data has no record for.
	ClearMissing bool
}

// Fill writes data into root. Nested objects descend into the first
// container of the same name; lists of objects are skipped. Other values go
// to every direct target bound to the key by key attribute or name, falling
// back to the first element with a matching id.
func (b *Binder) Fill(root *html.Node, data Data, opts FillOptions) {
	if root == nil || data == nil {
		return
	}
	for _, key := range dom.SortedKeys(data) {
		value := data[key]
		if value == nil {
			continue
		}
		if sub, ok := asData(value); ok {
			if c := b.firstContainer(root, key); c != nil {
				b.Fill(c, sub, opts)
			}
			continue
		}
		if isRecordList(value) {
			continue
		}
		for _, target := range b.targets(root, key) {
			b.assign(target, value)
		}
	}
	if opts.ClearMissing {
		b.clearMissing(root, data)
	}
}

func (b *Binder) firstContainer(root *html.Node, name string) *html.Node {
	matches := withAttr(b.queryAll(root, fmt.Sprintf("[%s]", b.attrs.Container)), b.attrs.Container, name)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

func (b *Binder) targets(root *html.Node, key string) []*html.Node {
	var out []*html.Node
	seen := make(map[*html.Node]struct{})
	add := func(nodes []*html.Node) {
		for _, n := range nodes {
			if _, dup := seen[n]; !dup {
				seen[n] = struct{}{}
				out = append(out, n)
			}
		}
	}
	add(withAttr(b.findDirect(root, fmt.Sprintf("[%s]", b.attrs.Key)), b.attrs.Key, key))
	add(withAttr(b.findDirect(root, "[name]"), "name", key))
	if len(out) == 0 {
		if byID := withAttr(b.queryAll(root, "[id]"), "id", key); len(byID) > 0 {
			out = append(out, byID[0])
		}
	}
	return out
}

// assign writes one value with control-aware rules.
func (b *Binder) assign(el *html.Node, value any) {
	if !dom.IsFormControl(el) {
		dom.SetTextContent(el, toString(value))
		return
	}
	switch {
	case dom.ControlType(el) == "radio":
		b.doc.SetChecked(el, toString(value) == b.doc.Value(el))
	case dom.ControlType(el) == "checkbox":
		if list, ok := toList(value); ok {
			b.doc.SetChecked(el, contains(list, b.doc.Value(el)))
		} else if on, ok := value.(bool); ok {
			b.doc.SetChecked(el, on)
		} else {
			b.doc.SetChecked(el, toString(value) == b.doc.Value(el))
		}
	case dom.IsMultiple(el):
		list, ok := toList(value)
		if !ok {
			list = []string{toString(value)}
		}
		for _, o := range dom.Options(el) {
			b.doc.SetSelected(o, contains(list, dom.OptionValue(o)))
		}
	default:
		v := toString(value)
		if list, ok := toList(value); ok {
			v = ""
			if len(list) > 0 {
				v = list[0]
			}
		}
		b.doc.SetValue(el, v)
		if el.Data == "textarea" {
			dom.SetTextContent(el, v)
		}
	}
}

func (b *Binder) clearMissing(root *html.Node, data Data) {
	selector := fmt.Sprintf("[%s], input[name], select[name], textarea[name]", b.attrs.Key)
	for _, el := range b.findDirect(root, selector) {
		if !dom.IsFormControl(el) {
			continue
		}
		if _, present := data[b.keyOf(el)]; present {
			continue
		}
		b.reset(el)
	}

	// A container the data has no record for is cleared as a whole.
	for _, c := range b.findDirect(root, fmt.Sprintf("[%s]", b.attrs.Container)) {
		if c == root {
			continue
		}
		if _, ok := asData(data[dom.Attr(c, b.attrs.Container)]); ok {
			continue
		}
		for _, el := range b.queryAll(c, selector) {
			if dom.IsFormControl(el) {
				b.reset(el)
			}
		}
	}
}

// ApplyOptions tunes Apply.
type ApplyOptions struct {
	ClearMissing bool
}

// Apply writes data into the form controls of elements (and the elements
// themselves when they are controls), matching keys against the name
// attribute only and ignoring containers.
func (b *Binder) Apply(elements []*html.Node, data Data, opts ApplyOptions) {
	if data == nil {
		return
	}
	var controls []*html.Node
	seen := make(map[*html.Node]struct{})
	add := func(n *html.Node) {
		if _, dup := seen[n]; !dup {
			seen[n] = struct{}{}
			controls = append(controls, n)
		}
	}
	for _, el := range elements {
		for _, c := range b.queryAll(el, "input,select,textarea") {
			add(c)
		}
		if dom.IsFormControl(el) {
			add(el)
		}
	}

	for _, el := range controls {
		key := dom.Attr(el, "name")
		value, present := data[key]
		switch {
		case key != "" && present:
			if value == nil {
				continue
			}
			b.applyValue(el, value)
		case opts.ClearMissing:
			b.reset(el)
		}
	}
}

// applyValue matches strictly: only string values check radios and only
// exact option values select.
func (b *Binder) applyValue(el *html.Node, value any) {
	s, isString := value.(string)
	switch {
	case dom.ControlType(el) == "radio":
		b.doc.SetChecked(el, isString && s == b.doc.Value(el))
	case dom.ControlType(el) == "checkbox":
		if list, ok := toList(value); ok {
			b.doc.SetChecked(el, contains(list, b.doc.Value(el)))
		} else {
			b.doc.SetChecked(el, isString && s == b.doc.Value(el))
		}
	case dom.IsMultiple(el):
		list, isList := toList(value)
		for _, o := range dom.Options(el) {
			v := dom.OptionValue(o)
			b.doc.SetSelected(o, (isList && contains(list, v)) || (isString && s == v))
		}
	default:
		v := value
		if list, ok := toList(value); ok {
			v = ""
			if len(list) > 0 {
				v = list[0]
			}
		}
		text := ""
		if v != false && v != "" {
			text = toString(v)
		}
		b.doc.SetValue(el, text)
		if el.Data == "textarea" {
			dom.SetTextContent(el, text)
		}
	}
}
