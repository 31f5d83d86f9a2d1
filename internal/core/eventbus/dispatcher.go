// Package eventbus implements the engine's typed, synchronous
// publish/subscribe bus: one Dispatcher per event family (Window, Mouse,
// Key, Collision), fanning out to handlers in registration order on the
// calling goroutine. Grounded on EventHandler.h/Event.h from the original
// engine this core was distilled from, with one deliberate departure: the
// original's RemoveListener compares handler identity by reinterpreting a
// std::function's internal bytes as a long, which is undefined behavior in
// C++ and has no Go equivalent anyway. Handles here are an opaque counter
// assigned at registration, never a compared function pointer.
package eventbus

// HandleID is the opaque token AddListener returns and RemoveListener
// accepts. Ids are never reused within a Dispatcher's lifetime.
type HandleID uint64

// Handled is implemented by the pointer type of every event a Dispatcher
// can carry: handlers can short-circuit the rest of a Send by marking the
// event handled.
type Handled interface {
	IsHandled() bool
	SetHandled(bool)
}

// Keyed is implemented by the pointer type of every event a Dispatcher can
// carry: EventKind reports which bucket of listeners a Send should invoke.
type Keyed[K comparable] interface {
	EventKind() K
}

// Event is the full constraint a Dispatcher's event pointer type must
// satisfy.
type Event[K comparable] interface {
	Keyed[K]
	Handled
}

// Handler is a synchronous event callback.
type Handler[K comparable, E Event[K]] func(E)

type listenerEntry[K comparable, E Event[K]] struct {
	handle HandleID
	fn     Handler[K, E]
}

// Dispatcher is one event family's bus. It never queues: Send invokes
// listeners synchronously, in registration order, on the calling goroutine.
type Dispatcher[K comparable, E Event[K]] struct {
	listeners  map[K][]listenerEntry[K, E]
	handleKind map[HandleID]K
	next       HandleID
}

// NewDispatcher creates an empty Dispatcher for event kind K and pointer
// type E.
func NewDispatcher[K comparable, E Event[K]]() *Dispatcher[K, E] {
	return &Dispatcher[K, E]{
		listeners:  make(map[K][]listenerEntry[K, E]),
		handleKind: make(map[HandleID]K),
	}
}

// AddListener registers fn for events of kind k and returns a handle for
// later removal. O(1).
func (d *Dispatcher[K, E]) AddListener(k K, fn Handler[K, E]) HandleID {
	d.next++
	h := d.next
	d.listeners[k] = append(d.listeners[k], listenerEntry[K, E]{handle: h, fn: fn})
	d.handleKind[h] = k
	return h
}

// RemoveListener unregisters handle. Removing an unknown or already-removed
// handle is a no-op, tolerating double-removal.
func (d *Dispatcher[K, E]) RemoveListener(handle HandleID) {
	k, ok := d.handleKind[handle]
	if !ok {
		return
	}
	bucket := d.listeners[k]
	for i, e := range bucket {
		if e.handle == handle {
			d.listeners[k] = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	delete(d.handleKind, handle)
}

// Send invokes every listener registered for event's kind, in registration
// order, on the calling goroutine. A listener that calls
// event.SetHandled(true) stops the remaining listeners of this Send from
// running. The listener set is snapshotted before dispatch begins, so a
// listener removed mid-dispatch (by itself or another handler) still runs
// for the remainder of this Send; the removal only takes effect starting
// with the next Send.
func (d *Dispatcher[K, E]) Send(event E) {
	bucket := d.listeners[event.EventKind()]
	if len(bucket) == 0 {
		return
	}
	snapshot := make([]listenerEntry[K, E], len(bucket))
	copy(snapshot, bucket)

	for _, entry := range snapshot {
		if event.IsHandled() {
			break
		}
		entry.fn(event)
	}
}
