// pkg/unify/sync.go
package unify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/domunify/pkg/binder"
	"github.com/xkilldash9x/domunify/pkg/dom"
	"github.com/xkilldash9x/domunify/pkg/persist"
)

// DefaultSyncDelay is the quiet period before a sync write.
const DefaultSyncDelay = 300 * time.Millisecond

// StorageKV is the storage name that selects the cursor's KV store.
const StorageKV = "kv"

// SyncOptions configures Sync. Zero fields fall back to the cursor's
// WithSyncDefaults, then to the built-in defaults.
type SyncOptions struct {
	Storage string // "local" (default), "session", "kv" or a registered name
	// Debounce is the quiet period before a write: zero means
	// DefaultSyncDelay, negative means write on the next tick.
	Debounce time.Duration
	Mode     string // "nested" (default) or "flat"
	OnSync   func(data any)
	// OnLoad receives stored data once it has been filled in.
	OnLoad  func(data any)
	OnError func(error)
}

type listenerRef struct {
	node  *html.Node
	event string
	id    uuid.UUID
}

type syncBinding struct {
	listeners []listenerRef
	debouncer *persist.Debouncer
	cancel    context.CancelFunc
}

// Sync keeps the context and a stored document under key in step. Stored
// data is filled in first, then input and change events anywhere in the
// context schedule a debounced write of the freshly collected data. Reads
// from the kv store happen in the background.
func (c *Cursor) Sync(key string, opts SyncOptions) *Cursor {
	if strings.TrimSpace(key) == "" {
		return c
	}
	c.unsync(key)

	if opts.Storage == "" {
		opts.Storage = c.syncOpts.Storage
	}
	if opts.Storage == "" {
		opts.Storage = "local"
	}
	if opts.Mode == "" {
		opts.Mode = c.syncOpts.Mode
	}
	if opts.Debounce == 0 {
		opts.Debounce = c.syncOpts.Debounce
	}
	switch {
	case opts.Debounce == 0:
		opts.Debounce = DefaultSyncDelay
	case opts.Debounce < 0:
		opts.Debounce = 0
	}

	var store persist.Storage
	useKV := opts.Storage == StorageKV
	if useKV {
		if c.kv == nil {
			c.report(opts.OnError, "sync", ErrNoKV)
			return c
		}
	} else {
		var ok bool
		if store, ok = c.storages[opts.Storage]; !ok {
			c.report(opts.OnError, "sync", fmt.Errorf("%w: %s", ErrUnknownStorage, opts.Storage))
			return c
		}
	}

	targets := clone(c.current)
	ctx, cancel := context.WithCancel(c.ctx)
	b := &syncBinding{cancel: cancel}

	if useKV {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			raw, found, err := c.kv.Get(ctx, key)
			if err != nil {
				if ctx.Err() == nil {
					c.report(opts.OnError, "sync", err)
				}
				return
			}
			if !found {
				return
			}
			data, ok := c.decodeStored(key, raw)
			if !ok {
				return
			}
			c.doc.Run(func() { c.fillTargets(targets, data, binder.FillOptions{}) })
			if opts.OnLoad != nil {
				opts.OnLoad(data)
			}
		}()
	} else if raw, ok := store.Get(key); ok {
		if data, ok := c.decodeStored(key, []byte(raw)); ok {
			c.fillTargets(targets, data, binder.FillOptions{})
			if opts.OnLoad != nil {
				opts.OnLoad(data)
			}
		}
	}

	write := func() {
		var data any
		c.doc.Run(func() { data = c.collectTargets(targets, opts.Mode) })
		encoded, err := persist.MarshalJSON(data, 0)
		if err != nil {
			c.report(opts.OnError, "sync", err)
			return
		}
		if useKV {
			if err := c.kv.Put(ctx, key, encoded); err != nil {
				if ctx.Err() == nil {
					c.report(opts.OnError, "sync", err)
				}
				return
			}
		} else {
			store.Set(key, string(encoded))
		}
		if opts.OnSync != nil {
			opts.OnSync(data)
		}
	}
	b.debouncer = persist.NewDebouncer(c.sched, opts.Debounce, write)

	for _, el := range targets {
		for _, event := range []string{"input", "change"} {
			id := c.doc.AddEventListener(el, event, func(*dom.Event) { b.debouncer.Trigger() })
			b.listeners = append(b.listeners, listenerRef{node: el, event: event, id: id})
		}
	}
	c.syncs[key] = b
	c.logStep("sync")
	return c
}

// Unsync detaches the listeners Sync attached for key and drops any pending
// write.
func (c *Cursor) Unsync(key string) *Cursor {
	c.unsync(key)
	c.logStep("unsync")
	return c
}

func (c *Cursor) unsync(key string) {
	b, ok := c.syncs[key]
	if !ok {
		return
	}
	b.debouncer.Stop()
	for _, l := range b.listeners {
		c.doc.RemoveEventListener(l.node, l.event, l.id)
	}
	b.cancel()
	delete(c.syncs, key)
}

// Close ends every sync and waits for background reads to finish.
func (c *Cursor) Close() error {
	for key := range c.syncs {
		c.unsync(key)
	}
	c.wg.Wait()
	return nil
}

// decodeStored parses persisted JSON. Malformed data counts as no data.
func (c *Cursor) decodeStored(key string, raw []byte) (any, bool) {
	data, err := persist.DecodeJSON(raw)
	if err != nil {
		c.logger.Warn("Ignoring malformed stored data.", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return data, data != nil
}

// collectTargets gathers the data of targets with the flat or nested mode,
// unwrapping a single result.
func (c *Cursor) collectTargets(targets []*html.Node, mode string) any {
	out := make([]binder.Data, len(targets))
	for i, el := range targets {
		if mode == "flat" {
			out[i] = c.binder.CollectFlat(el, binder.CollectOptions{})
		} else {
			out[i] = c.binder.CollectNested(el, binder.CollectOptions{})
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}
