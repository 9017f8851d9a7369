package unify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/domunify/pkg/dom"
	"github.com/xkilldash9x/domunify/pkg/factory"
	"github.com/xkilldash9x/domunify/pkg/unify"
)

func TestOn(t *testing.T) {
	t.Run("should pass bound arguments and bubble", func(t *testing.T) {
		c, _ := setupCursor(t, navHTML)
		var got []any
		var targets []string
		h := unify.NewHandler(func(e *dom.Event, args ...any) {
			got = append(got, args...)
			targets = append(targets, dom.Describe(e.Target))
		})
		c.Find("#list").On("click", h, "list", 1)
		c.GetMark(unify.RootMark).Find("li.b").Trigger("click")

		assert.Equal(t, []any{"list", 1}, got)
		assert.Equal(t, []string{"li.b"}, targets)
	})

	t.Run("should carry trigger detail", func(t *testing.T) {
		c, _ := setupCursor(t, navHTML)
		var detail any
		c.Find("#note").On("ping", unify.NewHandler(func(e *dom.Event, _ ...any) { detail = e.Detail })).Trigger("ping", map[string]any{"n": 1})
		assert.Equal(t, map[string]any{"n": 1}, detail)
	})

	t.Run("should target the nodes last added", func(t *testing.T) {
		c, doc := setupCursor(t, `<div id="box"></div>`)
		box := mustQuery(t, doc, "#box")
		c.Find("#box").Add(factory.Config{Tag: "button"}).On("click", unify.NewHandler(func(*dom.Event, ...any) {}))
		added := c.LastAdded()
		require.Len(t, added, 1)
		assert.Equal(t, 1, doc.ListenerCount(added[0], "click"))
		assert.Zero(t, doc.ListenerCount(box, "click"))
	})

	t.Run("should ignore blank events and nil handlers", func(t *testing.T) {
		c, doc := setupCursor(t, navHTML)
		note := mustQuery(t, doc, "#note")
		c.Find("#note").On(" ", unify.NewHandler(func(*dom.Event, ...any) {})).On("click", nil)
		assert.Zero(t, doc.ListenerCount(note, "click"))
	})
}

func TestOff(t *testing.T) {
	t.Run("should remove one handler and keep others", func(t *testing.T) {
		c, doc := setupCursor(t, navHTML)
		note := mustQuery(t, doc, "#note")
		var a, b int
		ha := unify.NewHandler(func(*dom.Event, ...any) { a++ })
		hb := unify.NewHandler(func(*dom.Event, ...any) { b++ })
		c.Find("#note").On("click", ha).On("click", ha).On("click", hb)
		require.Equal(t, 3, doc.ListenerCount(note, "click"))

		c.Off("click", ha).Trigger("click")
		assert.Equal(t, 0, a)
		assert.Equal(t, 1, b)
		assert.Equal(t, 1, doc.ListenerCount(note, "click"))
	})

	t.Run("should remove every handler for an event", func(t *testing.T) {
		c, doc := setupCursor(t, navHTML)
		note := mustQuery(t, doc, "#note")
		noop := func(*dom.Event, ...any) {}
		c.Find("#note").On("click", unify.NewHandler(noop)).On("click", unify.NewHandler(noop)).On("input", unify.NewHandler(noop))
		c.OffAll("click")
		assert.Zero(t, doc.ListenerCount(note, "click"))
		assert.Equal(t, 1, doc.ListenerCount(note, "input"))
	})

	t.Run("should leave listeners added elsewhere", func(t *testing.T) {
		c, doc := setupCursor(t, navHTML)
		note := mustQuery(t, doc, "#note")
		doc.AddEventListener(note, "click", func(*dom.Event) {})
		c.Find("#note").On("click", unify.NewHandler(func(*dom.Event, ...any) {})).OffAll("click")
		assert.Equal(t, 1, doc.ListenerCount(note, "click"))
	})
}

func TestNamedHandlers(t *testing.T) {
	t.Run("should resolve names through the registry", func(t *testing.T) {
		calls := 0
		registry := unify.Handlers{"save": unify.NewHandler(func(*dom.Event, ...any) { calls++ })}
		c, doc := setupCursor(t, navHTML, unify.WithHandlers(registry))
		note := mustQuery(t, doc, "#note")

		c.Find("#note").OnNamed("click", "save").Trigger("click")
		assert.Equal(t, 1, calls)

		c.OffNamed("click", "save").Trigger("click")
		assert.Equal(t, 1, calls)
		assert.Zero(t, doc.ListenerCount(note, "click"))
	})

	t.Run("should warn on unknown names", func(t *testing.T) {
		logger, logs := observed()
		c, doc := setupCursor(t, navHTML, unify.WithLogger(logger), unify.WithHandlers(unify.Handlers{}))
		c.Find("#note").OnNamed("click", "missing")
		assert.Zero(t, doc.ListenerCount(mustQuery(t, doc, "#note"), "click"))
		assert.Equal(t, 1, logs.FilterMessage("Unknown handler name.").Len())
	})

	t.Run("should warn without a registry", func(t *testing.T) {
		logger, logs := observed()
		c, _ := setupCursor(t, navHTML, unify.WithLogger(logger))
		c.Find("#note").OnNamed("click", "save").OffNamed("click", "save")
		assert.Equal(t, 2, logs.FilterMessage("No handler registry; ignoring named handler.").Len())
	})
}
