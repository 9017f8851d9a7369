package factory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/domunify/pkg/dom"
	"github.com/xkilldash9x/domunify/pkg/factory"
)

type staticSource []*html.Node

func (s staticSource) SourceNodes() []*html.Node { return s }

func TestFromSource(t *testing.T) {
	t.Run("should fan out JSON arrays", func(t *testing.T) {
		f, doc, _ := setupFactory(t, factory.DefaultOptions())
		frag := doc.CreateFragment()
		created := f.FromSource(`[{"tag":"li","text":"a"},{"tag":"li","text":"b"}]`, frag)
		require.Len(t, created, 2)
		assert.Equal(t, "<li>a</li><li>b</li>", dom.InnerHTML(frag))
	})

	t.Run("should build a JSON object", func(t *testing.T) {
		f, doc, _ := setupFactory(t, factory.DefaultOptions())
		created := f.FromSource(`{"tag":"p","class":"lead"}`, doc.CreateFragment())
		require.Len(t, created, 1)
		assert.Equal(t, "p.lead", dom.Describe(created[0]))
	})

	t.Run("should sanitize non-JSON strings as HTML", func(t *testing.T) {
		f, doc, _ := setupFactory(t, factory.DefaultOptions())
		frag := doc.CreateFragment()
		created := f.FromSource(`<b onclick="x()">hi</b> there`, frag)
		require.Len(t, created, 2)
		assert.Equal(t, `<b>hi</b> there`, dom.InnerHTML(frag))
	})

	t.Run("should clone nodes with live state", func(t *testing.T) {
		f, doc, _ := setupFactory(t, factory.DefaultOptions())
		input := doc.CreateElement("input")
		dom.AppendChild(doc.Body(), input)
		doc.SetValue(input, "typed")

		created := f.FromSource(input, nil)
		require.Len(t, created, 1)
		assert.NotSame(t, input, created[0])
		assert.Equal(t, "typed", doc.Value(created[0]))
		assert.Same(t, doc.Body(), input.Parent)
	})

	t.Run("should replicate a source", func(t *testing.T) {
		f, doc, _ := setupFactory(t, factory.DefaultOptions())
		a, b := doc.CreateElement("span"), doc.CreateElement("em")
		frag := doc.CreateFragment()
		dom.AppendChild(frag, doc.CreateElement("i"))
		created := f.FromSource(staticSource{a, b, frag}, nil)
		assert.Equal(t, []string{"span", "em", "i"}, dom.DescribeAll(created))
	})

	t.Run("should build config slices", func(t *testing.T) {
		f, doc, _ := setupFactory(t, factory.DefaultOptions())
		created := f.FromSource([]factory.Config{{Tag: "dt"}, {Tag: "dd"}}, doc.CreateFragment())
		assert.Equal(t, []string{"dt", "dd"}, dom.DescribeAll(created))
	})

	t.Run("should report unsupported variants", func(t *testing.T) {
		f, doc, logs := setupFactory(t, factory.DefaultOptions())
		assert.Empty(t, f.FromSource(3.5, doc.CreateFragment()))
		assert.Contains(t, warnings(logs), "Unsupported config variant; nothing created.")
	})
}
