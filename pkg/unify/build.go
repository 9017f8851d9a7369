// pkg/unify/build.go
package unify

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/domunify/pkg/binder"
	"github.com/xkilldash9x/domunify/pkg/dom"
)

// AddOptions tunes how data passed to Add and Set is applied.
type AddOptions struct {
	ClearMissing bool
}

// Add builds src into every context element. src is anything the element
// factory accepts, including another Cursor. An optional data argument
// shapes the result: a list of records yields one filled copy per record,
// a single record is applied to the context and the new elements.
func (c *Cursor) Add(src any, data ...any) *Cursor {
	var d any
	if len(data) > 0 {
		d = data[0]
	}
	return c.AddWith(src, d, AddOptions{})
}

// AddWith is Add with explicit options.
func (c *Cursor) AddWith(src any, data any, opts AddOptions) *Cursor {
	var added []*html.Node

	if items, ok := asList(data); ok {
		for _, target := range c.current {
			for _, item := range items {
				created := c.build(target, src)
				if rec, ok := binder.AsData(item); ok {
					for _, el := range created {
						c.binder.Fill(el, rec, binder.FillOptions{})
					}
				}
				added = append(added, created...)
			}
		}
		c.lastAdded = added
		c.logStep("add")
		return c
	}

	for _, target := range c.current {
		added = append(added, c.build(target, src)...)
	}
	if rec, ok := binder.AsData(data); ok {
		all := append(clone(c.current), added...)
		c.binder.Apply(all, rec, binder.ApplyOptions{ClearMissing: opts.ClearMissing})
	} else if data != nil {
		c.logger.Warn("Unsupported add data; ignoring.", zap.String("type", typeName(data)))
	}
	c.lastAdded = added
	c.logStep("add")
	return c
}

// build creates src inside a fragment, appends it to target and returns the
// created elements.
func (c *Cursor) build(target *html.Node, src any) []*html.Node {
	frag := c.doc.CreateFragment()
	created := c.factory.FromSource(src, frag)
	dom.AppendChild(target, frag)
	return elements(created)
}

// asList returns the items of a record-list argument.
func asList(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []binder.Data:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out, true
	}
	return nil, false
}

// SetProps lists the changes Set applies to every context element. Class
// replaces the class list unless it starts with a modifier: "+a -b !c"
// adds, removes and toggles.
type SetProps struct {
	Text    *string
	HTML    *string
	Class   *string
	ID      *string
	Style   map[string]string
	Attr    map[string]any
	Dataset map[string]string

	// Data, when set, is applied to the context's form controls.
	Data         binder.Data
	ClearMissing bool
}

// Set changes every element in the context.
func (c *Cursor) Set(props SetProps) *Cursor {
	for _, el := range c.current {
		if !dom.IsElement(el) {
			continue
		}
		if props.Text != nil {
			dom.SetTextContent(el, *props.Text)
		}
		if props.HTML != nil {
			if err := dom.SetInnerHTML(el, *props.HTML); err != nil {
				c.logger.Warn("Failed to parse HTML; content unchanged.", zap.Error(err))
			}
		}
		if props.Class != nil {
			setClass(el, *props.Class)
		}
		if props.ID != nil {
			dom.SetAttr(el, "id", *props.ID)
		}
		for _, prop := range dom.SortedKeys(props.Style) {
			dom.SetStyle(el, prop, props.Style[prop])
		}
		for _, key := range dom.SortedKeys(props.Attr) {
			switch v := props.Attr[key].(type) {
			case nil:
			case bool:
				if v {
					dom.SetAttr(el, key, "")
				}
			default:
				dom.SetAttr(el, key, stringValue(v))
			}
		}
		for _, key := range dom.SortedKeys(props.Dataset) {
			dom.SetData(el, key, props.Dataset[key])
		}
	}
	if props.Data != nil {
		c.binder.Apply(c.current, props.Data, binder.ApplyOptions{ClearMissing: props.ClearMissing})
	}
	c.logStep("set")
	return c
}

func setClass(el *html.Node, raw string) {
	value := strings.TrimSpace(raw)
	if value == "" || !strings.ContainsRune("+-!", rune(value[0])) {
		dom.SetAttr(el, "class", value)
		return
	}
	for _, part := range strings.Fields(value) {
		op, cls := part[0], part[1:]
		if cls == "" {
			continue
		}
		switch op {
		case '+':
			dom.AddClass(el, cls)
		case '-':
			dom.RemoveClass(el, cls)
		case '!':
			dom.ToggleClass(el, cls)
		}
	}
}

// Fill writes data into the context. A list of records is distributed one
// record per context element, a single record goes to every element.
func (c *Cursor) Fill(data any, opts ...binder.FillOptions) *Cursor {
	var o binder.FillOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	c.fillTargets(c.current, data, o)
	c.logStep("fill")
	return c
}

func (c *Cursor) fillTargets(targets []*html.Node, data any, opts binder.FillOptions) {
	if data == nil {
		return
	}
	if rec, ok := binder.AsData(data); ok {
		for _, el := range targets {
			c.binder.Fill(el, rec, opts)
		}
		return
	}
	if list, ok := asList(data); ok {
		for i := 0; i < len(list) && i < len(targets); i++ {
			if rec, ok := binder.AsData(list[i]); ok {
				c.binder.Fill(targets[i], rec, opts)
			}
		}
		return
	}
	c.logger.Warn("Unsupported fill data; ignoring.", zap.String("type", typeName(data)))
}

// stringValue renders an attribute value the way the DOM stringifies it.
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
