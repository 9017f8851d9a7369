// pkg/unify/cursor.go
package unify

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/domunify/pkg/binder"
	"github.com/xkilldash9x/domunify/pkg/dom"
	"github.com/xkilldash9x/domunify/pkg/factory"
	"github.com/xkilldash9x/domunify/pkg/persist"
)

// RootMark is the mark seeded with the initial context.
const RootMark = "root"

type mark struct {
	name     string
	elements []*html.Node
}

// Cursor is a chainable context over a document. Every operation returns
// the cursor. A Cursor has a single owner and is not safe for concurrent use;
// only its timer and async-store callbacks run elsewhere, inside Document.Run.
type Cursor struct {
	doc     *dom.Document
	logger  *zap.Logger
	factory *factory.Factory
	binder  *binder.Binder

	current     []*html.Node
	lastAdded   []*html.Node
	history     [][]*html.Node
	lastParents []*html.Node
	marks       []mark
	buffer      []*html.Node
	trace       bool

	handlers map[*html.Node]map[string][]handlerEntry
	registry HandlerRegistry
	modes    map[string]Mode
	formOpts binder.FormOptions

	ctx        context.Context
	storages   map[string]persist.Storage
	kv         persist.KV
	downloader persist.Downloader
	reader     persist.FileReader
	sched      persist.Scheduler
	syncOpts   SyncOptions
	syncs      map[string]*syncBinding
	wg         sync.WaitGroup
}

type settings struct {
	logger      *zap.Logger
	factoryOpts factory.Options
	attrs       binder.Attributes
	formOpts    binder.FormOptions
	registry    HandlerRegistry
	modes       map[string]Mode
	ctx         context.Context
	storages    map[string]persist.Storage
	kv          persist.KV
	downloader  persist.Downloader
	reader      persist.FileReader
	sched       persist.Scheduler
	syncOpts    SyncOptions
}

// Option configures a Cursor.
type Option func(*settings)

// WithLogger sets the diagnostics logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithFactoryOptions configures element construction.
func WithFactoryOptions(opts factory.Options) Option {
	return func(s *settings) { s.factoryOpts = opts }
}

// WithAttributes sets the binding marker attributes.
func WithAttributes(attrs binder.Attributes) Option {
	return func(s *settings) { s.attrs = attrs }
}

// WithFormOptions sets the defaults used by the form mode.
func WithFormOptions(opts binder.FormOptions) Option {
	return func(s *settings) { s.formOpts = opts }
}

// WithHandlers sets the registry OnNamed and OffNamed resolve names through.
func WithHandlers(registry HandlerRegistry) Option {
	return func(s *settings) { s.registry = registry }
}

// WithMode registers a named collection mode for Get and Save.
func WithMode(name string, mode Mode) Option {
	return func(s *settings) { s.modes[name] = mode }
}

// WithContext sets the context handed to storage and file adapters.
func WithContext(ctx context.Context) Option {
	return func(s *settings) { s.ctx = ctx }
}

// WithStorage registers a synchronous store under name. The names "local"
// and "session" default to fresh in-memory stores.
func WithStorage(name string, storage persist.Storage) Option {
	return func(s *settings) { s.storages[name] = storage }
}

// WithKV sets the asynchronous store selected by the "kv" storage name.
func WithKV(kv persist.KV) Option {
	return func(s *settings) { s.kv = kv }
}

// WithDownloader sets the adapter DownloadFile and Save hand content to.
func WithDownloader(d persist.Downloader) Option {
	return func(s *settings) { s.downloader = d }
}

// WithFileReader sets the adapter LoadFile and Load read selections with.
func WithFileReader(r persist.FileReader) Option {
	return func(s *settings) { s.reader = r }
}

// WithScheduler sets the timer source for debounced sync writes.
func WithScheduler(sched persist.Scheduler) Option {
	return func(s *settings) { s.sched = sched }
}

// WithSyncDefaults sets the storage, debounce and mode Sync falls back to
// when its options leave them zero.
func WithSyncDefaults(opts SyncOptions) Option {
	return func(s *settings) {
		s.syncOpts = SyncOptions{Storage: opts.Storage, Debounce: opts.Debounce, Mode: opts.Mode}
	}
}

// New creates a cursor over doc. root selects the initial context:
//
//	nil              the body
//	string           every element matching the selector
//	*html.Node       an element or fragment; a document node means its body
//	[]*html.Node     its elements and fragments
//	*dom.Document    the body
func New(doc *dom.Document, root any, opts ...Option) *Cursor {
	c := newCursor(doc, opts)
	c.current = c.normalize(root)
	c.marks = []mark{{name: RootMark, elements: clone(c.current)}}
	return c
}

// Detached creates a cursor whose context is a fresh fragment.
func Detached(doc *dom.Document, opts ...Option) *Cursor {
	c := newCursor(doc, opts)
	c.current = []*html.Node{doc.CreateFragment()}
	c.marks = []mark{{name: RootMark, elements: clone(c.current)}}
	return c
}

func newCursor(doc *dom.Document, opts []Option) *Cursor {
	s := &settings{
		factoryOpts: factory.DefaultOptions(),
		attrs:       binder.DefaultAttributes(),
		formOpts:    binder.DefaultFormOptions(),
		modes:       make(map[string]Mode),
		ctx:         context.Background(),
		storages:    make(map[string]persist.Storage),
		sched:       persist.RealScheduler{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	for _, name := range []string{"local", "session"} {
		if _, ok := s.storages[name]; !ok {
			s.storages[name] = persist.NewMemoryStorage()
		}
	}

	c := &Cursor{
		doc:        doc,
		logger:     s.logger.Named("cursor"),
		factory:    factory.New(doc, s.logger, s.factoryOpts),
		binder:     binder.New(doc, s.logger, s.attrs),
		handlers:   make(map[*html.Node]map[string][]handlerEntry),
		registry:   s.registry,
		formOpts:   s.formOpts,
		ctx:        s.ctx,
		storages:   s.storages,
		kv:         s.kv,
		downloader: s.downloader,
		reader:     s.reader,
		sched:      s.sched,
		syncOpts:   s.syncOpts,
		syncs:      make(map[string]*syncBinding),
	}
	c.modes = c.builtinModes()
	for name, m := range s.modes {
		c.modes[name] = m
	}
	return c
}

func (c *Cursor) normalize(root any) []*html.Node {
	switch v := root.(type) {
	case nil:
		return c.body()
	case string:
		nodes, err := c.doc.QuerySelectorAll(v)
		if err != nil {
			c.logger.Warn("Invalid root selector; starting with an empty context.", zap.String("selector", v), zap.Error(err))
			return nil
		}
		return nodes
	case *dom.Document:
		return c.body()
	case *html.Node:
		if v == nil {
			return c.body()
		}
		switch {
		case dom.IsElement(v), dom.IsFragment(v):
			return []*html.Node{v}
		case v.Type == html.DocumentNode:
			return c.body()
		}
		return nil
	case []*html.Node:
		var out []*html.Node
		for _, n := range v {
			if n != nil && (dom.IsElement(n) || dom.IsFragment(n)) {
				out = append(out, n)
			}
		}
		return out
	}
	c.logger.Warn("Unsupported root; starting with an empty context.", zap.String("type", typeName(root)))
	return nil
}

func (c *Cursor) body() []*html.Node {
	if b := c.doc.Body(); b != nil {
		return []*html.Node{b}
	}
	return nil
}

// Document returns the document the cursor operates on.
func (c *Cursor) Document() *dom.Document { return c.doc }

// Elements returns a copy of the current context.
func (c *Cursor) Elements() []*html.Node { return clone(c.current) }

// LastAdded returns a copy of the nodes created by the most recent mutation.
func (c *Cursor) LastAdded() []*html.Node { return clone(c.lastAdded) }

// At returns the context element at i, counting from the end when negative,
// or nil when out of range.
func (c *Cursor) At(i int) *html.Node {
	n := len(c.current)
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return nil
	}
	return c.current[i]
}

// Len reports the size of the current context.
func (c *Cursor) Len() int { return len(c.current) }

// HistoryDepth reports the number of saved history frames.
func (c *Cursor) HistoryDepth() int { return len(c.history) }

// BufferLen reports the number of nodes on the clipboard.
func (c *Cursor) BufferLen() int { return len(c.buffer) }

// SourceNodes makes a cursor usable as an Add source: the nodes it last
// added, otherwise its context.
func (c *Cursor) SourceNodes() []*html.Node {
	if len(c.lastAdded) > 0 {
		return clone(c.lastAdded)
	}
	return clone(c.current)
}

// --- Diagnostics ---

// Trace toggles logging a state line after every step.
func (c *Cursor) Trace(on bool) *Cursor {
	c.trace = on
	return c
}

// Debug logs a snapshot of the cursor state and warns on an empty context.
func (c *Cursor) Debug() *Cursor {
	names := make([]string, len(c.marks))
	for i, m := range c.marks {
		names[i] = m.name
	}
	c.logger.Info("Cursor state",
		zap.Strings("current", dom.DescribeAll(c.current)),
		zap.Strings("paths", dom.PathsOf(c.current)),
		zap.Strings("last_added", dom.DescribeAll(c.lastAdded)),
		zap.Int("history_depth", len(c.history)),
		zap.Strings("marks", names),
		zap.Int("buffer", len(c.buffer)),
	)
	if len(c.current) == 0 {
		c.logger.Warn("Empty context.")
	}
	return c
}

func (c *Cursor) logStep(method string) {
	if !c.trace {
		return
	}
	c.logger.Info("Step",
		zap.String("method", method),
		zap.Strings("current", dom.DescribeAll(c.current)),
		zap.Strings("last_added", dom.DescribeAll(c.lastAdded)),
		zap.Int("history", len(c.history)),
		zap.Int("buffer", len(c.buffer)),
	)
}

// --- Helpers ---

func clone(nodes []*html.Node) []*html.Node {
	if len(nodes) == 0 {
		return nil
	}
	return append([]*html.Node(nil), nodes...)
}

// elements drops non-element nodes.
func elements(nodes []*html.Node) []*html.Node {
	var out []*html.Node
	for _, n := range nodes {
		if dom.IsElement(n) {
			out = append(out, n)
		}
	}
	return out
}

// appendUnique appends n unless it is already present.
func appendUnique(list []*html.Node, n *html.Node) []*html.Node {
	for _, have := range list {
		if have == n {
			return list
		}
	}
	return append(list, n)
}

func (c *Cursor) pushHistory() {
	c.history = append(c.history, clone(c.current))
}

func typeName(v any) string { return fmt.Sprintf("%T", v) }
