// pkg/unify/navigate.go
package unify

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/domunify/pkg/dom"
)

// Enter descends one level. An int picks one child per context element
// (negative counts from the end) and a string keeps the children matching a
// selector. With no argument the nodes last added become the context, or
// else every child. When nothing is found the context stays as it was.
func (c *Cursor) Enter(index ...any) *Cursor {
	var arg any
	if len(index) > 0 {
		arg = index[0]
	}
	c.pushHistory()

	var entered []*html.Node
	switch v := arg.(type) {
	case int:
		for _, el := range c.current {
			kids := dom.Children(el)
			i := v
			if i < 0 {
				i += len(kids)
			}
			if i >= 0 && i < len(kids) {
				entered = append(entered, kids[i])
			}
		}
	case string:
		for _, el := range c.current {
			kids, err := dom.ChildrenMatching(el, v)
			if err != nil {
				c.logger.Warn("Invalid selector; treating as no match.", zap.String("operation", "enter"), zap.Error(err))
				break
			}
			entered = append(entered, kids...)
		}
	default:
		if arg != nil {
			c.logger.Warn("Unsupported enter argument; entering children.", zap.String("type", typeName(arg)))
		}
		if len(c.current) > 0 && len(c.lastAdded) > 0 {
			entered = c.lastAdded
			c.lastAdded = nil
			break
		}
		for _, el := range c.current {
			entered = append(entered, dom.Children(el)...)
		}
	}

	if len(entered) == 0 {
		entered = clone(c.current)
	}
	c.current = entered
	c.logStep("enter")
	return c
}

// Up ascends. With no argument the context becomes the unique parents; an
// int climbs that many levels (a negative int climbs to the body or the top
// of a detached tree) and a string moves to the closest match.
func (c *Cursor) Up(arg ...any) *Cursor {
	var a any
	if len(arg) > 0 {
		a = arg[0]
	}
	switch a.(type) {
	case nil, int, string:
	default:
		c.logger.Warn("Unsupported up argument; context unchanged.", zap.String("type", typeName(a)))
		return c
	}
	c.pushHistory()

	var result []*html.Node
	body := c.doc.Body()
	for _, el := range c.current {
		var target *html.Node
		switch v := a.(type) {
		case nil:
			target = dom.ParentElement(el)
		case int:
			target = el
			if v < 0 {
				for target != body && dom.ParentElement(target) != nil {
					target = dom.ParentElement(target)
				}
			} else {
				for i := 0; i < v && dom.ParentElement(target) != nil; i++ {
					target = dom.ParentElement(target)
				}
			}
		case string:
			found, err := dom.Closest(el, v)
			if err != nil {
				c.logger.Warn("Invalid selector; treating as no match.", zap.String("operation", "up"), zap.Error(err))
			}
			target = found
		}
		if target != nil {
			result = appendUnique(result, target)
		}
	}

	c.current = result
	c.lastAdded = nil
	c.logStep("up")
	return c
}

// Back restores an earlier context. Right after Delete or Cut emptied the
// context it restores the removed elements' parents once and ignores steps.
// Otherwise a non-negative steps pops that many frames and a negative steps
// jumps to the absolute frame |steps|-1, discarding it and every later frame.
func (c *Cursor) Back(steps ...int) *Cursor {
	n := 1
	if len(steps) > 0 {
		n = steps[0]
	}
	if len(c.current) == 0 && len(c.lastParents) > 0 {
		c.current = c.lastParents
		c.lastParents = nil
		c.lastAdded = nil
		c.logStep("back")
		return c
	}
	if len(c.history) == 0 {
		return c
	}

	var index int
	if n >= 0 {
		index = max(0, len(c.history)-n)
	} else {
		index = max(0, -n-1)
	}
	if index >= len(c.history) {
		return c
	}

	c.current = clone(c.history[index])
	c.history = c.history[:index]
	c.lastAdded = nil
	c.logStep("back")
	return c
}

// Find queries the descendants of every context element. No selector empties
// the context and "*" selects every direct child.
func (c *Cursor) Find(selector ...string) *Cursor {
	sel := ""
	if len(selector) > 0 {
		sel = selector[0]
	}
	c.pushHistory()
	c.lastAdded = nil

	var results []*html.Node
	switch sel {
	case "":
	case "*":
		for _, el := range c.current {
			results = append(results, dom.Children(el)...)
		}
	default:
		for _, el := range c.current {
			found, err := dom.QueryAll(el, sel)
			if err != nil {
				c.logger.Warn("Invalid selector; treating as no match.", zap.String("operation", "find"), zap.Error(err))
				results = nil
				break
			}
			results = append(results, found...)
		}
	}

	c.current = results
	c.logStep("find")
	return c
}

// Mark saves the nodes last added, or else the context, under name,
// replacing any earlier mark of that name.
func (c *Cursor) Mark(name string) *Cursor {
	if strings.TrimSpace(name) == "" {
		return c
	}
	saved := c.current
	if len(c.lastAdded) > 0 {
		saved = c.lastAdded
	}
	kept := c.marks[:0]
	for _, m := range c.marks {
		if m.name != name {
			kept = append(kept, m)
		}
	}
	c.marks = append(kept, mark{name: name, elements: clone(saved)})
	c.logStep("mark")
	return c
}

// GetMark restores the context saved under name. Unknown names are ignored.
func (c *Cursor) GetMark(name string) *Cursor {
	if strings.TrimSpace(name) == "" {
		return c
	}
	for i := len(c.marks) - 1; i >= 0; i-- {
		if c.marks[i].name == name {
			c.current = clone(c.marks[i].elements)
			break
		}
	}
	c.logStep("getMark")
	return c
}

// Marks lists the saved mark names in save order.
func (c *Cursor) Marks() []string {
	names := make([]string, len(c.marks))
	for i, m := range c.marks {
		names[i] = m.name
	}
	return names
}

// Delete removes every context element from the tree and drops the
// per-node state held for it. The parents are kept for one Back.
func (c *Cursor) Delete() *Cursor {
	c.pushHistory()
	c.lastParents = parents(c.current)
	for _, el := range c.current {
		dom.Remove(el)
		c.release(el)
	}
	c.current = nil
	c.lastAdded = nil
	c.logStep("delete")
	return c
}

// Cut removes every context element and moves it, unchanged, onto the
// clipboard.
func (c *Cursor) Cut() *Cursor {
	c.pushHistory()
	c.buffer = clone(c.current)
	c.lastParents = parents(c.current)
	for _, el := range c.current {
		dom.Remove(el)
	}
	c.current = nil
	c.lastAdded = nil
	c.logStep("cut")
	return c
}

func parents(nodes []*html.Node) []*html.Node {
	var out []*html.Node
	for _, n := range nodes {
		if p := dom.ParentElement(n); p != nil {
			out = appendUnique(out, p)
		}
	}
	return out
}

// release drops document and cursor side-table entries for a removed subtree.
func (c *Cursor) release(n *html.Node) {
	dom.Walk(n, func(node *html.Node) bool {
		delete(c.handlers, node)
		return true
	})
	c.doc.Release(n)
}
