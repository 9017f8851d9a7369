// pkg/unify/events.go
package unify

import (
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/domunify/pkg/dom"
)

// HandlerFunc receives the extra arguments given to On followed by the event.
type HandlerFunc func(e *dom.Event, args ...any)

// Handler is an event callback with identity, so Off can find what On added.
type Handler struct {
	fn HandlerFunc
}

// NewHandler wraps fn.
func NewHandler(fn HandlerFunc) *Handler { return &Handler{fn: fn} }

// HandlerRegistry resolves handler names for OnNamed and OffNamed.
type HandlerRegistry interface {
	Lookup(name string) (*Handler, bool)
}

// Handlers is a map-backed HandlerRegistry.
type Handlers map[string]*Handler

func (h Handlers) Lookup(name string) (*Handler, bool) {
	handler, ok := h[name]
	return handler, ok && handler != nil
}

type handlerEntry struct {
	handler *Handler
	id      uuid.UUID
}

// targets are the nodes last added, or else the context.
func (c *Cursor) targets() []*html.Node {
	if len(c.lastAdded) > 0 {
		return c.lastAdded
	}
	return c.current
}

// On attaches handler for event to the nodes last added, or else the context.
func (c *Cursor) On(event string, handler *Handler, args ...any) *Cursor {
	if strings.TrimSpace(event) == "" || handler == nil || handler.fn == nil {
		return c
	}
	bound := append([]any(nil), args...)
	for _, el := range c.targets() {
		id := c.doc.AddEventListener(el, event, func(e *dom.Event) {
			handler.fn(e, bound...)
		})
		byEvent := c.handlers[el]
		if byEvent == nil {
			byEvent = make(map[string][]handlerEntry)
			c.handlers[el] = byEvent
		}
		byEvent[event] = append(byEvent[event], handlerEntry{handler: handler, id: id})
	}
	c.logStep("on")
	return c
}

// OnNamed is On with the handler resolved through the registry.
func (c *Cursor) OnNamed(event, name string, args ...any) *Cursor {
	handler, ok := c.lookup(name)
	if !ok {
		return c
	}
	return c.On(event, handler, args...)
}

// Off detaches every registration of handler for event.
func (c *Cursor) Off(event string, handler *Handler) *Cursor {
	if strings.TrimSpace(event) == "" || handler == nil {
		return c
	}
	c.detach(event, func(e handlerEntry) bool { return e.handler == handler })
	c.logStep("off")
	return c
}

// OffNamed is Off with the handler resolved through the registry.
func (c *Cursor) OffNamed(event, name string) *Cursor {
	handler, ok := c.lookup(name)
	if !ok {
		return c
	}
	return c.Off(event, handler)
}

// OffAll detaches every handler this cursor attached for event.
func (c *Cursor) OffAll(event string) *Cursor {
	if strings.TrimSpace(event) == "" {
		return c
	}
	c.detach(event, func(handlerEntry) bool { return true })
	c.logStep("off")
	return c
}

func (c *Cursor) detach(event string, match func(handlerEntry) bool) {
	for _, el := range c.targets() {
		byEvent := c.handlers[el]
		if byEvent == nil {
			continue
		}
		kept := byEvent[event][:0]
		for _, entry := range byEvent[event] {
			if match(entry) {
				c.doc.RemoveEventListener(el, event, entry.id)
				continue
			}
			kept = append(kept, entry)
		}
		if len(kept) == 0 {
			delete(byEvent, event)
		} else {
			byEvent[event] = kept
		}
		if len(byEvent) == 0 {
			delete(c.handlers, el)
		}
	}
}

func (c *Cursor) lookup(name string) (*Handler, bool) {
	if c.registry == nil {
		c.logger.Warn("No handler registry; ignoring named handler.", zap.String("handler", name))
		return nil, false
	}
	handler, ok := c.registry.Lookup(name)
	if !ok {
		c.logger.Warn("Unknown handler name.", zap.String("handler", name))
	}
	return handler, ok
}

// Trigger dispatches a bubbling event of the given type at every context
// element.
func (c *Cursor) Trigger(event string, detail ...any) *Cursor {
	for _, el := range c.current {
		e := dom.NewEvent(event)
		if len(detail) > 0 {
			e.Detail = detail[0]
		}
		c.doc.Dispatch(el, e)
	}
	return c
}
