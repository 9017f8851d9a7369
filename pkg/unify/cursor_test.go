package unify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/domunify/pkg/unify"
)

func TestDebug(t *testing.T) {
	t.Run("should log the context with locating paths", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		_, doc := setupCursor(t, navHTML)
		c := unify.New(doc, "li", unify.WithLogger(zap.New(core)))
		c.Mark("items").Debug()

		entries := logs.FilterMessage("Cursor state").All()
		require.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Equal(t, []interface{}{"li.a", "li.b", "li.c"}, fields["current"])
		assert.Equal(t, []interface{}{
			"//*[@id='list']/li[1]",
			"//*[@id='list']/li[2]",
			"//*[@id='list']/li[3]",
		}, fields["paths"])
		assert.Equal(t, []interface{}{unify.RootMark, "items"}, fields["marks"])
		assert.Zero(t, logs.FilterMessage("Empty context.").Len())
	})

	t.Run("should warn on an empty context", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		_, doc := setupCursor(t, navHTML)
		unify.New(doc, "table", unify.WithLogger(zap.New(core))).Debug()
		assert.Equal(t, 1, logs.FilterMessage("Empty context.").Len())
	})
}
