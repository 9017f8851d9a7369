// pkg/dom/events.go
package dom

import (
	"github.com/google/uuid"
	"golang.org/x/net/html"
)

// Event is a synchronous DOM event. It bubbles from Target through every
// ancestor unless a listener stops propagation.
type Event struct {
	Type          string
	Target        *html.Node
	CurrentTarget *html.Node
	// Detail carries an optional caller payload.
	Detail any

	stopped bool
}

// NewEvent creates an event of the given type.
func NewEvent(eventType string) *Event {
	return &Event{Type: eventType}
}

// StopPropagation prevents the event from reaching further ancestors.
func (e *Event) StopPropagation() { e.stopped = true }

// Stopped reports whether propagation was stopped.
func (e *Event) Stopped() bool { return e.stopped }

// Listener handles a dispatched event.
type Listener func(e *Event)

// ListenerOption configures a registration.
type ListenerOption func(r *registration)

// Once removes the listener after its first invocation.
func Once() ListenerOption {
	return func(r *registration) { r.once = true }
}

type registration struct {
	id   uuid.UUID
	fn   Listener
	once bool
}

// AddEventListener registers fn for eventType on n and returns the
// registration id used to remove it.
func (d *Document) AddEventListener(n *html.Node, eventType string, fn Listener, opts ...ListenerOption) uuid.UUID {
	if n == nil || fn == nil || eventType == "" {
		return uuid.Nil
	}
	r := &registration{id: uuid.New(), fn: fn}
	for _, opt := range opts {
		opt(r)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	byType, ok := d.listeners[n]
	if !ok {
		byType = make(map[string][]*registration)
		d.listeners[n] = byType
	}
	byType[eventType] = append(byType[eventType], r)
	return r.id
}

// RemoveEventListener removes one registration and reports whether it existed.
func (d *Document) RemoveEventListener(n *html.Node, eventType string, id uuid.UUID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.removeLocked(n, eventType, id)
}

func (d *Document) removeLocked(n *html.Node, eventType string, id uuid.UUID) bool {
	byType := d.listeners[n]
	regs := byType[eventType]
	for i, r := range regs {
		if r.id != id {
			continue
		}
		regs = append(regs[:i:i], regs[i+1:]...)
		if len(regs) == 0 {
			delete(byType, eventType)
		} else {
			byType[eventType] = regs
		}
		if len(byType) == 0 {
			delete(d.listeners, n)
		}
		return true
	}
	return false
}

// RemoveAllEventListeners removes every listener for eventType on n.
func (d *Document) RemoveAllEventListeners(n *html.Node, eventType string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	byType := d.listeners[n]
	delete(byType, eventType)
	if len(byType) == 0 {
		delete(d.listeners, n)
	}
}

// ListenerCount returns the number of listeners for eventType on n.
func (d *Document) ListenerCount(n *html.Node, eventType string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[n][eventType])
}

// Dispatch delivers e to target and then to each ancestor. Listeners run
// without the side-table lock held, so they may mutate the document freely.
func (d *Document) Dispatch(target *html.Node, e *Event) {
	if target == nil || e == nil {
		return
	}
	e.Target = target
	for n := target; n != nil && !e.stopped; n = n.Parent {
		e.CurrentTarget = n
		for _, r := range d.take(n, e.Type) {
			r.fn(e)
		}
	}
	e.CurrentTarget = nil
}

// take snapshots the registrations for a node and drops the one-shot ones.
func (d *Document) take(n *html.Node, eventType string) []*registration {
	d.mu.Lock()
	defer d.mu.Unlock()
	regs := d.listeners[n][eventType]
	if len(regs) == 0 {
		return nil
	}
	snapshot := make([]*registration, len(regs))
	copy(snapshot, regs)
	for _, r := range snapshot {
		if r.once {
			d.removeLocked(n, eventType, r.id)
		}
	}
	return snapshot
}
