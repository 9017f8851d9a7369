// pkg/unify/clipboard.go
package unify

import (
	"golang.org/x/net/html"

	"github.com/xkilldash9x/domunify/pkg/dom"
)

// Copy puts a state-preserving clone of every context element on the
// clipboard. The originals are untouched.
func (c *Cursor) Copy() *Cursor {
	c.buffer = make([]*html.Node, 0, len(c.current))
	for _, el := range c.current {
		c.buffer = append(c.buffer, c.doc.CloneWithState(el))
	}
	c.logStep("copy")
	return c
}

// Paste inserts a fresh clone of the clipboard into every context element.
// position is "before", "after", "prepend" (or "start"), "append" (or "end",
// the default) or an int child index, negative counting from the end. The
// clipboard survives, so it can be pasted again.
func (c *Cursor) Paste(position ...any) *Cursor {
	if len(c.buffer) == 0 {
		return c
	}
	var pos any = "append"
	if len(position) > 0 {
		pos = position[0]
	}

	var pasted []*html.Node
	for _, ctx := range c.current {
		frag := c.doc.CreateFragment()
		var clones []*html.Node
		for _, n := range c.buffer {
			cl := c.doc.CloneWithState(n)
			if dom.IsFragment(cl) {
				clones = append(clones, dom.ChildNodes(cl)...)
			} else {
				clones = append(clones, cl)
			}
			dom.AppendChild(frag, cl)
		}
		if c.insert(ctx, frag, pos) {
			for _, cl := range clones {
				c.doc.SettleRadios(cl)
			}
			pasted = append(pasted, clones...)
		}
	}

	c.lastAdded = pasted
	c.logStep("paste")
	return c
}

// insert places frag relative to ctx and reports whether it was placed.
func (c *Cursor) insert(ctx, frag *html.Node, pos any) bool {
	switch v := pos.(type) {
	case int:
		kids := dom.ChildNodes(ctx)
		i := v
		if i < 0 {
			i += len(kids)
		}
		var ref *html.Node
		if i >= 0 && i < len(kids) {
			ref = kids[i]
		}
		dom.InsertBefore(ctx, frag, ref)
		return true
	case string:
		switch v {
		case "before":
			if ctx.Parent == nil {
				return false
			}
			dom.InsertBefore(ctx.Parent, frag, ctx)
			return true
		case "after":
			if ctx.Parent == nil {
				return false
			}
			dom.InsertBefore(ctx.Parent, frag, ctx.NextSibling)
			return true
		case "prepend", "start":
			dom.InsertBefore(ctx, frag, ctx.FirstChild)
			return true
		}
	}
	dom.AppendChild(ctx, frag)
	return true
}

// Duplicate inserts a state-preserving clone of every context element right
// after it, or right before it for "prepend". Elements without a parent are
// skipped.
func (c *Cursor) Duplicate(position ...string) *Cursor {
	before := len(position) > 0 && position[0] == "prepend"
	var dups []*html.Node
	for _, orig := range c.current {
		parent := orig.Parent
		if parent == nil {
			continue
		}
		cl := c.doc.CloneWithState(orig)
		if before {
			dom.InsertBefore(parent, cl, orig)
		} else {
			dom.InsertBefore(parent, cl, orig.NextSibling)
		}
		c.doc.SettleRadios(cl)
		dups = append(dups, cl)
	}
	c.lastAdded = dups
	c.logStep("duplicate")
	return c
}
