package event

import (
	"reflect"
	"sync"
)

// Bus is a double-buffered event bus. Events emitted during frame N are
// delivered at the start of frame N+1: the frame loop calls SwapBuffers then
// DispatchAll before the first phase runs. Emit and dispatch are
// single-threaded (the frame loop); only handler registration takes the
// mutex, because hosts subscribe from setup code.
type Bus struct {
	mu       sync.Mutex
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	handlers map[reflect.Type][]func(any)
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]func(any)),
	}
}

// Emit queues an event into the back buffer; it becomes visible to handlers
// on the next frame.
func Emit[T any](b *Bus, ev T) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.back[t] = append(b.back[t], ev)
}

// Subscribe registers a typed handler for events of type T. The handler is
// wrapped once here so dispatch needs no reflection.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.handlers[t] = append(b.handlers[t], func(v any) { fn(v.(T)) })
}

// SwapBuffers rotates back to front and clears the new back buffer. Called
// once at frame start, before DispatchAll.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// DispatchAll delivers every front-buffer event to its subscribed handlers.
// Events emitted by a handler land in the back buffer for the next frame,
// so dispatch always terminates.
func (b *Bus) DispatchAll() {
	for t, events := range b.front {
		b.mu.Lock()
		handlers := b.handlers[t]
		b.mu.Unlock()
		for _, ev := range events {
			for _, h := range handlers {
				h(ev)
			}
		}
	}
}

// Pending reports how many events sit in the back buffer awaiting the next
// swap.
func (b *Bus) Pending() int {
	n := 0
	for _, events := range b.back {
		n += len(events)
	}
	return n
}
