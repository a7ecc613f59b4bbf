// ABOUTME: Typed event bus fanning intent transitions out to independent consumers
// ABOUTME: Subscribe returns an unsubscribe func; Close drops every handler on teardown

package eventbus

import "sync"

// Handler is a callback function for events.
type Handler[T any] func(T)

// Bus is a typed event bus that delivers events to registered handlers in
// subscription order.
type Bus[T any] struct {
	mu       sync.RWMutex
	handlers map[int]Handler[T]
	order    []int
	nextID   int
	closed   bool
}

// New creates a new event bus.
func New[T any]() *Bus[T] {
	return &Bus[T]{
		handlers: make(map[int]Handler[T]),
	}
}

// Subscribe registers a handler and returns an unsubscribe function.
// Subscribing to a closed bus is a no-op.
func (b *Bus[T]) Subscribe(handler Handler[T]) func() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return func() {}
	}
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler
	b.order = append(b.order, id)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.handlers[id]; !ok {
			return
		}
		delete(b.handlers, id)
		for i, v := range b.order {
			if v == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

// Publish sends an event to all registered handlers synchronously.
// Handlers may subscribe or unsubscribe while being called.
func (b *Bus[T]) Publish(event T) {
	b.mu.RLock()
	snapshot := make([]Handler[T], 0, len(b.order))
	for _, id := range b.order {
		snapshot = append(snapshot, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, h := range snapshot {
		h(event)
	}
}

// Count returns the number of registered handlers.
func (b *Bus[T]) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

// Close removes every handler; later publishes and subscriptions do nothing.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.handlers = make(map[int]Handler[T])
	b.order = nil
}
