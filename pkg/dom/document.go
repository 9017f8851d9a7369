// pkg/dom/document.go
package dom

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/antchfx/htmlquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FragmentName is the Data value carried by detached fragment nodes.
const FragmentName = "#document-fragment"

const blankDocument = "<!DOCTYPE html><html><head></head><body></body></html>"

// Document owns an HTML node tree and the per-node state the node tree itself
// cannot carry: live form-control properties, file selections and event
// listeners. All side tables are keyed by node identity.
type Document struct {
	logger *zap.Logger

	root *html.Node
	body *html.Node

	// Side tables. Access must be protected by mu.
	mu        sync.RWMutex
	state     map[*html.Node]*controlState
	listeners map[*html.Node]map[string][]*registration

	// exclusive serializes Run callers (timer callbacks, async loads).
	exclusive sync.Mutex
}

// NewDocument returns an empty document with html, head and body elements.
func NewDocument(logger *zap.Logger) *Document {
	doc, err := Parse(strings.NewReader(blankDocument), logger)
	if err != nil {
		// The blank document is a constant; parsing it cannot fail.
		panic(fmt.Sprintf("failed to parse blank document: %v", err))
	}
	return doc
}

// Parse reads a full HTML document.
func Parse(r io.Reader, logger *zap.Logger) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return FromNode(root, logger), nil
}

// ParseString is Parse for in-memory markup.
func ParseString(markup string, logger *zap.Logger) (*Document, error) {
	return Parse(strings.NewReader(markup), logger)
}

// FromNode adopts an already parsed tree.
func FromNode(root *html.Node, logger *zap.Logger) *Document {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Document{
		logger:    logger.Named("dom"),
		root:      root,
		state:     make(map[*html.Node]*controlState),
		listeners: make(map[*html.Node]map[string][]*registration),
	}
	if root != nil {
		d.body = htmlquery.FindOne(root, "//body")
	}
	return d
}

// Root returns the document node.
func (d *Document) Root() *html.Node { return d.root }

// Body returns the body element, or nil for a body-less tree.
func (d *Document) Body() *html.Node { return d.body }

// Logger returns the document's named logger.
func (d *Document) Logger() *zap.Logger { return d.logger }

// Run executes fn while holding the document's exclusive lock. Timer and
// async-storage callbacks mutate the tree only through Run; callers mixing
// their own goroutines with those callbacks must do the same.
func (d *Document) Run(fn func()) {
	d.exclusive.Lock()
	defer d.exclusive.Unlock()
	fn()
}

// --- Node Creation ---

// CreateElement creates a new detached element. The DataAtom is kept
// consistent with the tag so the node can serve as a parsing context.
func (d *Document) CreateElement(tag string) *html.Node {
	tag = strings.ToLower(strings.TrimSpace(tag))
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

// CreateTextNode creates a new detached text node.
func (d *Document) CreateTextNode(data string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: data}
}

// CreateFragment creates an empty fragment. Appending a fragment moves its
// children and leaves the fragment empty.
func (d *Document) CreateFragment() *html.Node {
	return &html.Node{Type: html.DocumentNode, Data: FragmentName}
}

// QuerySelector finds the first element in the whole document matching selector.
func (d *Document) QuerySelector(selector string) (*html.Node, error) {
	return Query(d.root, selector)
}

// QuerySelectorAll finds every element in the whole document matching selector.
func (d *Document) QuerySelectorAll(selector string) ([]*html.Node, error) {
	return QueryAll(d.root, selector)
}

// Release drops every side-table entry held for n and its descendants.
// Detached subtrees that will not be reinserted should be released so the
// tables do not grow without bound.
func (d *Document) Release(n *html.Node) {
	if n == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	walk(n, func(c *html.Node) bool {
		delete(d.state, c)
		delete(d.listeners, c)
		return true
	})
}

// tracked reports the number of nodes with side-table entries.
func (d *Document) tracked() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	seen := make(map[*html.Node]struct{}, len(d.state)+len(d.listeners))
	for n := range d.state {
		seen[n] = struct{}{}
	}
	for n := range d.listeners {
		seen[n] = struct{}{}
	}
	return len(seen)
}
