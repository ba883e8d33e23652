package event

import "log/slog"

// Topic names an event family for logging and filtering.
type Topic string

// Event is a fire-and-forget broadcast. Packages that produce events
// declare their own concrete types; subscribers type-switch on them.
type Event interface {
	Topic() Topic
}

// Handler receives published events synchronously.
type Handler func(Event)

type subscriber struct {
	name string
	fn   Handler
}

// Bus delivers events to subscribers in registration order.
// A Bus belongs to one simulation step loop and is not safe for concurrent use.
// A nil *Bus discards everything.
type Bus struct {
	subs []subscriber
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn under name. Subscribing an already registered name
// is a no-op that keeps the existing handler and position; it returns false.
func (b *Bus) Subscribe(name string, fn Handler) bool {
	if b == nil || fn == nil {
		return false
	}
	for _, s := range b.subs {
		if s.name == name {
			return false
		}
	}
	b.subs = append(b.subs, subscriber{name: name, fn: fn})
	return true
}

// Unsubscribe removes the handler registered under name. Unknown names are ignored.
func (b *Bus) Unsubscribe(name string) bool {
	if b == nil {
		return false
	}
	for i, s := range b.subs {
		if s.name == name {
			// copy-on-write: a Publish in progress keeps iterating its own snapshot
			next := make([]subscriber, 0, len(b.subs)-1)
			next = append(next, b.subs[:i]...)
			next = append(next, b.subs[i+1:]...)
			b.subs = next
			return true
		}
	}
	return false
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	if b == nil {
		return 0
	}
	return len(b.subs)
}

// Publish delivers e to every subscriber registered before the call.
func (b *Bus) Publish(e Event) {
	if b == nil || e == nil {
		return
	}
	subs := b.subs
	for _, s := range subs {
		s.fn(e)
	}
	if len(subs) == 0 {
		slog.Debug("event dropped, no subscribers", "topic", e.Topic())
	}
}
