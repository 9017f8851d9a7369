package unify_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/domunify/pkg/dom"
	"github.com/xkilldash9x/domunify/pkg/unify"
)

func setupCursor(t *testing.T, body string, opts ...unify.Option) (*unify.Cursor, *dom.Document) {
	t.Helper()
	doc, err := dom.ParseString("<body>"+body+"</body>", zaptest.NewLogger(t))
	require.NoError(t, err)
	opts = append([]unify.Option{unify.WithLogger(zaptest.NewLogger(t))}, opts...)
	c := unify.New(doc, nil, opts...)
	t.Cleanup(func() { _ = c.Close() })
	return c, doc
}

// observed returns a logger that records Warn and above.
func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return zap.New(core), logs
}

func labels(nodes []*html.Node) []string { return dom.DescribeAll(nodes) }

func mustQuery(t *testing.T, doc *dom.Document, selector string) *html.Node {
	t.Helper()
	n, err := doc.QuerySelector(selector)
	require.NoError(t, err)
	require.NotNil(t, n, "no element matches %q", selector)
	return n
}
