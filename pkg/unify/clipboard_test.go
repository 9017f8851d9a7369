package unify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/domunify/pkg/dom"
	"github.com/xkilldash9x/domunify/pkg/unify"
)

func TestPaste(t *testing.T) {
	t.Run("should do nothing with an empty clipboard", func(t *testing.T) {
		c, doc := setupCursor(t, navHTML)
		before := dom.OuterHTML(doc.Body())
		c.Find("#list").Paste().Paste("before").Paste(0)
		assert.Equal(t, before, dom.OuterHTML(doc.Body()))
		assert.Empty(t, c.LastAdded())
		assert.Equal(t, []string{"ul#list"}, labels(c.Elements()))
	})

	t.Run("should carry live control values", func(t *testing.T) {
		c, doc := setupCursor(t, `<form><input name="q" value="default"></form><div id="dest"></div>`)
		doc.SetValue(mustQuery(t, doc, "input"), "live")

		c.Find("input").Copy().GetMark(unify.RootMark).Find("#dest").Paste()
		pasted := c.LastAdded()
		require.Len(t, pasted, 1)
		assert.Equal(t, "live", doc.Value(pasted[0]))
		assert.Equal(t, "default", dom.Attr(pasted[0], "value"))
	})

	t.Run("should reclone the clipboard on every paste", func(t *testing.T) {
		c, _ := setupCursor(t, navHTML)
		c.Find("#note").Copy().GetMark(unify.RootMark).Find("#list")
		first := c.Paste().LastAdded()
		second := c.Paste().LastAdded()
		require.Len(t, first, 1)
		require.Len(t, second, 1)
		assert.NotSame(t, first[0], second[0])
		assert.Equal(t, 1, c.BufferLen())
	})

	t.Run("should give every context its own clones", func(t *testing.T) {
		c, _ := setupCursor(t, navHTML)
		c.Find("#note").Copy().GetMark(unify.RootMark).Find("li").Paste()
		pasted := c.LastAdded()
		require.Len(t, pasted, 3)
		assert.NotSame(t, pasted[0], pasted[1])
		assert.NotSame(t, pasted[1], pasted[2])
		for i, li := range c.Elements() {
			assert.Same(t, pasted[i], li.LastChild)
		}
	})

	t.Run("should honor positions", func(t *testing.T) {
		tests := []struct {
			name     string
			position any
			want     []string
		}{
			{"append", "append", []string{"li.a", "li.b", "li.c", "p#note"}},
			{"end", "end", []string{"li.a", "li.b", "li.c", "p#note"}},
			{"prepend", "prepend", []string{"p#note", "li.a", "li.b", "li.c"}},
			{"start", "start", []string{"p#note", "li.a", "li.b", "li.c"}},
			{"index", 1, []string{"li.a", "p#note", "li.b", "li.c"}},
			{"negative index", -1, []string{"li.a", "li.b", "p#note", "li.c"}},
			{"index past the end", 9, []string{"li.a", "li.b", "li.c", "p#note"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				c, doc := setupCursor(t, navHTML)
				c.Find("#note").Copy().GetMark(unify.RootMark).Find("#list").Paste(tt.position)
				assert.Equal(t, tt.want, labels(dom.Children(mustQuery(t, doc, "#list"))))
			})
		}
	})

	t.Run("should insert siblings before and after", func(t *testing.T) {
		c, doc := setupCursor(t, navHTML)
		c.Find("li.a").Copy().GetMark(unify.RootMark).Find("#note").Paste("before").Paste("after")
		assert.Equal(t, []string{"ul#list", "li.a", "p#note", "li.a"}, labels(dom.Children(mustQuery(t, doc, "#app"))))
	})

	t.Run("should skip sibling inserts without a parent", func(t *testing.T) {
		_, doc := setupCursor(t, navHTML)
		frag := unify.Detached(doc).Add("<i>x</i>").Enter().Copy().Back()
		require.Equal(t, []string{"#fragment"}, labels(frag.Elements()))

		frag.Paste("before")
		assert.Empty(t, frag.LastAdded())
		frag.Paste("after")
		assert.Empty(t, frag.LastAdded())
		frag.Paste()
		assert.Equal(t, []string{"i"}, labels(frag.LastAdded()))
	})
}

func TestCut(t *testing.T) {
	t.Run("should move elements onto the clipboard", func(t *testing.T) {
		c, doc := setupCursor(t, navHTML)
		note := mustQuery(t, doc, "#note")
		c.Find("#note").Cut()
		assert.Zero(t, c.Len())
		assert.Equal(t, 1, c.BufferLen())
		assert.Nil(t, note.Parent)

		c.Back().Paste("prepend")
		assert.Equal(t, []string{"p#note", "ul#list"}, labels(dom.Children(mustQuery(t, doc, "#app"))))
	})
}

func TestDelete(t *testing.T) {
	t.Run("should drop listeners held for removed nodes", func(t *testing.T) {
		c, doc := setupCursor(t, navHTML)
		note := mustQuery(t, doc, "#note")
		c.Find("#note").On("click", unify.NewHandler(func(*dom.Event, ...any) {}))
		require.Equal(t, 1, doc.ListenerCount(note, "click"))

		c.Delete()
		assert.Zero(t, doc.ListenerCount(note, "click"))
		assert.Nil(t, note.Parent)
	})
}

func TestDuplicate(t *testing.T) {
	t.Run("should insert independent clones after the originals", func(t *testing.T) {
		c, doc := setupCursor(t, navHTML)
		orig := mustQuery(t, doc, "li.a")
		c.Find("li.a").Duplicate()
		dups := c.LastAdded()
		require.Len(t, dups, 1)
		dup := dups[0]
		assert.NotSame(t, orig, dup)
		assert.Same(t, dup, orig.NextSibling)

		dom.SetTextContent(orig, "changed")
		dom.SetAttr(dup, "title", "copy")
		assert.Equal(t, "1", dom.TextContent(dup))
		assert.False(t, dom.HasAttr(orig, "title"))
	})

	t.Run("should insert before for prepend", func(t *testing.T) {
		c, doc := setupCursor(t, navHTML)
		c.Find("li.c").Duplicate("prepend")
		assert.Equal(t, []string{"li.a", "li.b", "li.c", "li.c"}, labels(dom.Children(mustQuery(t, doc, "#list"))))
		assert.Same(t, c.LastAdded()[0], mustQuery(t, doc, "li.b").NextSibling)
	})

	t.Run("should preserve checked state", func(t *testing.T) {
		c, doc := setupCursor(t, `<div><input type="checkbox" name="ok" value="y"></div>`)
		box := mustQuery(t, doc, "input")
		doc.SetChecked(box, true)
		c.Find("div").Duplicate()
		dup, err := dom.Query(c.LastAdded()[0], "input")
		require.NoError(t, err)
		assert.True(t, doc.Checked(dup))
	})

	t.Run("should keep one checked radio per group", func(t *testing.T) {
		c, doc := setupCursor(t, `<form><label><input type="radio" name="r" value="a"></label><input type="radio" name="r" value="b"></form>`)
		orig := mustQuery(t, doc, "[value=a]")
		other := mustQuery(t, doc, "[value=b]")
		doc.SetChecked(orig, true)

		c.Find("label").Duplicate()
		dup, err := dom.Query(c.LastAdded()[0], "input")
		require.NoError(t, err)
		assert.True(t, doc.Checked(dup))
		assert.False(t, doc.Checked(orig))
		assert.False(t, doc.Checked(other))

		c.Back().Find("label").Copy().Back().Find("form").Paste()
		checked := 0
		for _, radio := range c.Back().Find("input").Elements() {
			if doc.Checked(radio) {
				checked++
			}
		}
		assert.Equal(t, 1, checked)
	})

	t.Run("should skip elements without a parent", func(t *testing.T) {
		_, doc := setupCursor(t, navHTML)
		c := unify.Detached(doc).Duplicate()
		assert.Empty(t, c.LastAdded())
	})
}
