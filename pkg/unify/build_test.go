package unify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/domunify/pkg/binder"
	"github.com/xkilldash9x/domunify/pkg/dom"
	"github.com/xkilldash9x/domunify/pkg/factory"
	"github.com/xkilldash9x/domunify/pkg/unify"
)

func TestAdd(t *testing.T) {
	row := map[string]any{
		"tag":      "li",
		"children": []any{map[string]any{"tag": "span", "attrs": map[string]any{"data-key": "name"}}},
	}

	t.Run("should build one filled copy per record", func(t *testing.T) {
		c, doc := setupCursor(t, `<ul id="list"></ul>`)
		c.Find("#list").Add(row, []any{
			map[string]any{"name": "A"},
			map[string]any{"name": "B"},
			map[string]any{"name": "C"},
		})

		require.Len(t, c.LastAdded(), 3)
		items := dom.Children(mustQuery(t, doc, "#list"))
		require.Len(t, items, 3)
		var names []string
		for _, li := range items {
			names = append(names, dom.TextContent(li))
		}
		assert.Equal(t, []string{"A", "B", "C"}, names)
		assert.Equal(t, []string{"ul#list"}, labels(c.Elements()))
	})

	t.Run("should apply a single record to context and new elements", func(t *testing.T) {
		c, doc := setupCursor(t, `<form id="f"><input name="user"></form>`)
		c.Find("#f").Add(factory.Config{Tag: "input", Attrs: map[string]any{"name": "email"}}, binder.Data{
			"user":  "ann",
			"email": "a@b.c",
		})
		assert.Equal(t, "ann", doc.Value(mustQuery(t, doc, "[name=user]")))
		require.Len(t, c.LastAdded(), 1)
		assert.Equal(t, "a@b.c", doc.Value(c.LastAdded()[0]))
	})

	t.Run("should sanitize html strings", func(t *testing.T) {
		c, doc := setupCursor(t, `<div id="box"></div>`)
		c.Find("#box").Add(`<b onclick="steal()">hi</b><script>alert(1)</script>`)
		box := mustQuery(t, doc, "#box")
		assert.Equal(t, `<b>hi</b>`, dom.InnerHTML(box))
		assert.Equal(t, []string{"b"}, labels(c.LastAdded()))
	})

	t.Run("should replicate another cursor", func(t *testing.T) {
		c, doc := setupCursor(t, navHTML+`<div id="dest"></div>`)
		src := unify.New(doc, "li.b")
		c.Find("#dest").Add(src).Add(src)
		assert.Equal(t, []string{"li.b", "li.b"}, labels(dom.Children(mustQuery(t, doc, "#dest"))))
		assert.Len(t, dom.Children(mustQuery(t, doc, "#list")), 3)
	})

	t.Run("should warn on unsupported data", func(t *testing.T) {
		logger, logs := observed()
		c, _ := setupCursor(t, `<div id="box"></div>`, unify.WithLogger(logger))
		c.Find("#box").Add(factory.Config{Tag: "p"}, 42)
		assert.Len(t, c.LastAdded(), 1)
		assert.Equal(t, 1, logs.FilterMessage("Unsupported add data; ignoring.").Len())
	})

	t.Run("should clear missing controls when asked", func(t *testing.T) {
		c, doc := setupCursor(t, `<form id="f"><input name="keep" value="k"><input name="drop" value="d"></form>`)
		c.Find("#f").AddWith(nil, binder.Data{"keep": "new"}, unify.AddOptions{ClearMissing: true})
		assert.Equal(t, "new", doc.Value(mustQuery(t, doc, "[name=keep]")))
		assert.Equal(t, "", doc.Value(mustQuery(t, doc, "[name=drop]")))
	})
}

func TestSet(t *testing.T) {
	t.Run("should apply class modifiers", func(t *testing.T) {
		c, doc := setupCursor(t, `<p id="p" class="a b"></p>`)
		c.Find("#p").Set(unify.SetProps{Class: factory.Ptr("+c -a !b")})
		assert.Equal(t, []string{"c"}, dom.Classes(mustQuery(t, doc, "#p")))

		c.Set(unify.SetProps{Class: factory.Ptr("x y")})
		assert.Equal(t, "x y", dom.Attr(mustQuery(t, doc, "#p"), "class"))
	})

	t.Run("should set text id style attributes and dataset", func(t *testing.T) {
		c, doc := setupCursor(t, `<p id="p"></p>`)
		c.Find("#p").Set(unify.SetProps{
			Text:    factory.Ptr("hello"),
			Style:   map[string]string{"backgroundColor": "red"},
			Attr:    map[string]any{"hidden": true, "draggable": false, "tabindex": 3.0, "title": "t"},
			Dataset: map[string]string{"userId": "7"},
			ID:      factory.Ptr("q"),
		})
		el := mustQuery(t, doc, "#q")
		assert.Equal(t, "hello", dom.TextContent(el))
		assert.Equal(t, "red", dom.Style(el, "background-color"))
		assert.True(t, dom.HasAttr(el, "hidden"))
		assert.False(t, dom.HasAttr(el, "draggable"))
		assert.Equal(t, "3", dom.Attr(el, "tabindex"))
		assert.Equal(t, "t", dom.Attr(el, "title"))
		assert.Equal(t, "7", dom.Attr(el, "data-user-id"))
	})

	t.Run("should replace inner html", func(t *testing.T) {
		c, doc := setupCursor(t, `<div id="d">old</div>`)
		c.Find("#d").Set(unify.SetProps{HTML: factory.Ptr(`<em>new</em>`)})
		assert.Equal(t, `<em>new</em>`, dom.InnerHTML(mustQuery(t, doc, "#d")))
	})

	t.Run("should apply data with clear missing", func(t *testing.T) {
		c, doc := setupCursor(t, `<form id="f"><input name="a" value="1"><input name="b" value="2"></form>`)
		c.Find("#f").Set(unify.SetProps{Data: binder.Data{"a": "x"}, ClearMissing: true})
		assert.Equal(t, "x", doc.Value(mustQuery(t, doc, "[name=a]")))
		assert.Equal(t, "", doc.Value(mustQuery(t, doc, "[name=b]")))
	})
}

func TestFill(t *testing.T) {
	markup := `<div class="card"><span data-key="name"></span></div><div class="card"><span data-key="name"></span></div>`

	t.Run("should distribute records over the context", func(t *testing.T) {
		c, _ := setupCursor(t, markup)
		c.Find(".card").Fill([]any{map[string]any{"name": "one"}, map[string]any{"name": "two"}, map[string]any{"name": "extra"}})
		els := c.Elements()
		assert.Equal(t, "one", dom.TextContent(els[0]))
		assert.Equal(t, "two", dom.TextContent(els[1]))
	})

	t.Run("should broadcast a single record", func(t *testing.T) {
		c, _ := setupCursor(t, markup)
		c.Find(".card").Fill(binder.Data{"name": "same"})
		for _, el := range c.Elements() {
			assert.Equal(t, "same", dom.TextContent(el))
		}
	})

	t.Run("should round trip through get", func(t *testing.T) {
		c, _ := setupCursor(t, `<form id="f"><input name="user"><input type="checkbox" name="tags" value="a"><input type="checkbox" name="tags" value="b"></form>`)
		data := binder.Data{"user": "ann", "tags": []any{"a", "b"}}
		got := c.Find("#f").Fill(data).GetNested()
		require.Len(t, got, 1)
		assert.Equal(t, data, got[0])
	})

	t.Run("should warn on unsupported data", func(t *testing.T) {
		logger, logs := observed()
		c, _ := setupCursor(t, markup, unify.WithLogger(logger))
		c.Fill("nope")
		assert.Equal(t, 1, logs.FilterMessage("Unsupported fill data; ignoring.").Len())
	})
}
