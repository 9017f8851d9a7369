// pkg/unify/get.go
package unify

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/domunify/pkg/binder"
	"github.com/xkilldash9x/domunify/pkg/dom"
)

// Mode collects the bound data of one context element.
type Mode func(root *html.Node) (any, error)

func (c *Cursor) builtinModes() map[string]Mode {
	return map[string]Mode{
		"flat": func(root *html.Node) (any, error) {
			return c.binder.CollectFlat(root, binder.CollectOptions{}), nil
		},
		"nested": func(root *html.Node) (any, error) {
			return c.binder.CollectNested(root, binder.CollectOptions{}), nil
		},
		"form": func(root *html.Node) (any, error) {
			return c.binder.CollectForm(root, c.formOpts)
		},
	}
}

// GetFlat collects every context element, ignoring containers.
func (c *Cursor) GetFlat(opts ...binder.CollectOptions) []binder.Data {
	var o binder.CollectOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	out := make([]binder.Data, len(c.current))
	for i, el := range c.current {
		out[i] = c.binder.CollectFlat(el, o)
	}
	return out
}

// GetNested collects every context element, scoping containers.
func (c *Cursor) GetNested(opts ...binder.CollectOptions) []binder.Data {
	var o binder.CollectOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	out := make([]binder.Data, len(c.current))
	for i, el := range c.current {
		out[i] = c.binder.CollectNested(el, o)
	}
	return out
}

// GetForm collects the form controls of every context element. It uses the
// cursor's form defaults unless opts is given.
func (c *Cursor) GetForm(opts ...binder.FormOptions) ([]binder.Data, error) {
	o := c.formOpts
	if len(opts) > 0 {
		o = opts[0]
	}
	out := make([]binder.Data, len(c.current))
	for i, el := range c.current {
		data, err := c.binder.CollectForm(el, o)
		if err != nil {
			return nil, err
		}
		out[i] = data
	}
	return out, nil
}

// Get collects every context element with the named mode.
func (c *Cursor) Get(mode string) ([]any, error) {
	m, ok := c.modes[mode]
	if !ok {
		c.logger.Warn("Unknown collection mode.", zap.String("mode", mode))
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}
	out := make([]any, len(c.current))
	for i, el := range c.current {
		v, err := m(el)
		if err != nil {
			return nil, fmt.Errorf("mode %s failed: %w", mode, err)
		}
		out[i] = v
	}
	return out, nil
}

// HTML renders the context with live control state written back into
// attributes. The live tree is not modified.
func (c *Cursor) HTML() string {
	var sb strings.Builder
	for _, el := range c.current {
		cl := c.doc.CloneWithState(el)
		c.doc.ReflectState(cl)
		if dom.IsFragment(cl) {
			sb.WriteString(dom.InnerHTML(cl))
		} else {
			sb.WriteString(dom.OuterHTML(cl))
		}
		c.doc.Release(cl)
	}
	return sb.String()
}

// Selection exposes the context as a goquery selection over the document.
func (c *Cursor) Selection() *goquery.Selection {
	root := c.doc.Root()
	if root == nil {
		root = c.doc.CreateFragment()
	}
	return goquery.NewDocumentFromNode(root).Selection.Slice(0, 0).AddNodes(c.current...)
}
