package unify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/domunify/pkg/dom"
	"github.com/xkilldash9x/domunify/pkg/unify"
)

const navHTML = `<div id="app"><ul id="list"><li class="a">1</li><li class="b">2</li><li class="c">3</li></ul><p id="note">n</p></div>`

func TestNew(t *testing.T) {
	t.Run("should normalize roots", func(t *testing.T) {
		c, doc := setupCursor(t, navHTML)
		assert.Equal(t, []string{"body"}, labels(c.Elements()))

		assert.Equal(t, []string{"li.a", "li.b", "li.c"}, labels(unify.New(doc, "li").Elements()))
		assert.Equal(t, []string{"body"}, labels(unify.New(doc, doc).Elements()))
		assert.Equal(t, []string{"body"}, labels(unify.New(doc, doc.Root()).Elements()))

		list := mustQuery(t, doc, "#list")
		text := list.FirstChild.FirstChild
		assert.Equal(t, []string{"ul#list"}, labels(unify.New(doc, []*html.Node{list, text}).Elements()))
	})

	t.Run("should start empty on a bad selector", func(t *testing.T) {
		logger, logs := observed()
		_, doc := setupCursor(t, navHTML)
		c := unify.New(doc, "li[", unify.WithLogger(logger))
		assert.Zero(t, c.Len())
		assert.Equal(t, 1, logs.Len())
	})

	t.Run("should seed a root mark", func(t *testing.T) {
		c, _ := setupCursor(t, navHTML)
		assert.Equal(t, []string{unify.RootMark}, c.Marks())
		c.Find("li").GetMark(unify.RootMark)
		assert.Equal(t, []string{"body"}, labels(c.Elements()))
	})

	t.Run("should start detached from a fragment", func(t *testing.T) {
		_, doc := setupCursor(t, navHTML)
		c := unify.Detached(doc)
		assert.Equal(t, []string{"#fragment"}, labels(c.Elements()))
	})
}

func TestEnter(t *testing.T) {
	t.Run("should pick children by index", func(t *testing.T) {
		c, _ := setupCursor(t, navHTML)
		c.Find("#list").Enter(0)
		assert.Equal(t, []string{"li.a"}, labels(c.Elements()))
		c.Back().Enter(-1)
		assert.Equal(t, []string{"li.c"}, labels(c.Elements()))
	})

	t.Run("should filter direct children by selector", func(t *testing.T) {
		c, _ := setupCursor(t, navHTML)
		c.Find("#app").Enter("p")
		assert.Equal(t, []string{"p#note"}, labels(c.Elements()))
	})

	t.Run("should enter every child without an argument", func(t *testing.T) {
		c, _ := setupCursor(t, navHTML)
		c.Find("#list").Enter()
		assert.Equal(t, []string{"li.a", "li.b", "li.c"}, labels(c.Elements()))
	})

	t.Run("should prefer and consume the nodes last added", func(t *testing.T) {
		c, _ := setupCursor(t, navHTML)
		c.Find("#list").Add(map[string]any{"tag": "li", "class": "new"}).Enter()
		assert.Equal(t, []string{"li.new"}, labels(c.Elements()))
		assert.Empty(t, c.LastAdded())
	})

	t.Run("should keep the context when nothing matches", func(t *testing.T) {
		c, _ := setupCursor(t, navHTML)
		c.Find("#note").Enter(5)
		assert.Equal(t, []string{"p#note"}, labels(c.Elements()))
		assert.Equal(t, 2, c.HistoryDepth())
	})
}

func TestUp(t *testing.T) {
	t.Run("should move to unique parents", func(t *testing.T) {
		c, _ := setupCursor(t, navHTML)
		c.Find("li").Up()
		assert.Equal(t, []string{"ul#list"}, labels(c.Elements()))
	})

	t.Run("should climb levels and to the top", func(t *testing.T) {
		c, _ := setupCursor(t, navHTML)
		c.Find("li").Up(2)
		assert.Equal(t, []string{"div#app"}, labels(c.Elements()))
		c.Find("li").Up(-1)
		assert.Equal(t, []string{"body"}, labels(c.Elements()))
		c.Find("li").Up(0)
		assert.Len(t, c.Elements(), 3)
	})

	t.Run("should move to the closest match", func(t *testing.T) {
		c, _ := setupCursor(t, navHTML)
		c.Find("li.b").Up("div")
		assert.Equal(t, []string{"div#app"}, labels(c.Elements()))
		c.Find("li").Up("li")
		assert.Equal(t, []string{"li.a", "li.b", "li.c"}, labels(c.Elements()))
	})

	t.Run("should stop at the top of a detached tree", func(t *testing.T) {
		_, doc := setupCursor(t, navHTML)
		c := unify.Detached(doc)
		c.Add(map[string]any{"tag": "section", "children": []any{map[string]any{"tag": "b"}}}).Enter().Find("b").Up(-1)
		assert.Equal(t, []string{"section"}, labels(c.Elements()))
	})

	t.Run("should clear the nodes last added", func(t *testing.T) {
		c, _ := setupCursor(t, navHTML)
		c.Find("#list").Add(map[string]any{"tag": "li"}).Up()
		assert.Empty(t, c.LastAdded())
	})
}

func TestBack(t *testing.T) {
	t.Run("should undo forward calls in reverse order", func(t *testing.T) {
		c, _ := setupCursor(t, navHTML)
		var before [][]string
		record := func() { before = append(before, labels(c.Elements())) }

		record()
		c.Find("#app")
		record()
		c.Enter(0)
		record()
		c.Enter()
		record()
		c.Up()

		for i := len(before) - 1; i >= 0; i-- {
			c.Back(1)
			assert.Equal(t, before[i], labels(c.Elements()), "after back #%d", len(before)-i)
		}
		assert.Zero(t, c.HistoryDepth())

		c.Back(1)
		assert.Equal(t, before[0], labels(c.Elements()))
	})

	t.Run("should pop several frames at once", func(t *testing.T) {
		c, _ := setupCursor(t, navHTML)
		c.Find("#app").Enter(0).Enter(1)
		c.Back(2)
		assert.Equal(t, []string{"div#app"}, labels(c.Elements()))
		assert.Equal(t, 1, c.HistoryDepth())
	})

	t.Run("should jump to an absolute frame for negative steps", func(t *testing.T) {
		c, _ := setupCursor(t, navHTML)
		c.Find("#app").Enter(0).Enter(1)
		c.Back(-2)
		assert.Equal(t, []string{"div#app"}, labels(c.Elements()))
		assert.Equal(t, 1, c.HistoryDepth())

		c.Find("li").Back(-1)
		assert.Equal(t, []string{"body"}, labels(c.Elements()))
		assert.Zero(t, c.HistoryDepth())
	})

	t.Run("should ignore zero steps and out of range jumps", func(t *testing.T) {
		c, _ := setupCursor(t, navHTML)
		c.Find("#app")
		c.Back(0)
		assert.Equal(t, []string{"div#app"}, labels(c.Elements()))
		c.Back(-5)
		assert.Equal(t, []string{"div#app"}, labels(c.Elements()))
	})

	t.Run("should restore parents once after delete", func(t *testing.T) {
		c, doc := setupCursor(t, navHTML)
		c.Find("li").Delete()
		assert.Zero(t, c.Len())
		assert.Empty(t, dom.Children(mustQuery(t, doc, "#list")))

		c.Back(3)
		assert.Equal(t, []string{"ul#list"}, labels(c.Elements()))
		c.Back(2)
		assert.Equal(t, []string{"body"}, labels(c.Elements()))
	})
}

func TestFind(t *testing.T) {
	t.Run("should query descendants", func(t *testing.T) {
		c, _ := setupCursor(t, navHTML)
		c.Find("li.b, p")
		assert.Equal(t, []string{"li.b", "p#note"}, labels(c.Elements()))
	})

	t.Run("should select direct children with a star", func(t *testing.T) {
		c, _ := setupCursor(t, navHTML)
		c.Find("#app").Find("*")
		assert.Equal(t, []string{"ul#list", "p#note"}, labels(c.Elements()))
	})

	t.Run("should accept xpath", func(t *testing.T) {
		c, _ := setupCursor(t, navHTML)
		c.Find("//li[@class='c']")
		assert.Equal(t, []string{"li.c"}, labels(c.Elements()))
	})

	t.Run("should empty the context without a selector", func(t *testing.T) {
		c, _ := setupCursor(t, navHTML)
		c.Find()
		assert.Zero(t, c.Len())
		c.Back()
		assert.Equal(t, []string{"body"}, labels(c.Elements()))
	})

	t.Run("should treat a bad selector as no match", func(t *testing.T) {
		logger, logs := observed()
		_, doc := setupCursor(t, navHTML)
		c := unify.New(doc, nil, unify.WithLogger(logger))
		c.Find("li[")
		assert.Zero(t, c.Len())
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "Invalid selector; treating as no match.", logs.All()[0].Message)
	})
}

func TestMarks(t *testing.T) {
	t.Run("should save and restore named contexts", func(t *testing.T) {
		c, _ := setupCursor(t, navHTML)
		c.Find("li").Mark("items").Find().GetMark("items")
		assert.Equal(t, []string{"li.a", "li.b", "li.c"}, labels(c.Elements()))
	})

	t.Run("should prefer the nodes last added", func(t *testing.T) {
		c, _ := setupCursor(t, navHTML)
		c.Find("#list").Add(map[string]any{"tag": "li", "id": "x"}).Mark("new").Up().GetMark("new")
		assert.Equal(t, []string{"li#x"}, labels(c.Elements()))
	})

	t.Run("should overwrite a mark of the same name", func(t *testing.T) {
		c, _ := setupCursor(t, navHTML)
		c.Find("li").Mark("m").GetMark(unify.RootMark).Find("#note").Mark("m")
		assert.Equal(t, []string{unify.RootMark, "m"}, c.Marks())
		c.Find().GetMark("m")
		assert.Equal(t, []string{"p#note"}, labels(c.Elements()))
	})

	t.Run("should ignore unknown and blank names", func(t *testing.T) {
		c, _ := setupCursor(t, navHTML)
		c.Find("#note").GetMark("missing").Mark("  ").GetMark("")
		assert.Equal(t, []string{"p#note"}, labels(c.Elements()))
		assert.Equal(t, []string{unify.RootMark}, c.Marks())
	})
}
