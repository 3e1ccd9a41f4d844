// ABOUTME: Typed fan-out of chat exchanges to named subscribers (persistence, audit, stats)
// ABOUTME: Delivery is synchronous in subscription order; a panicking subscriber is logged and skipped

package eventbus

import (
	"sync"

	pilog "github.com/mauromedda/medsupport-go/internal/log"
)

// Handler receives one event.
type Handler[T any] func(T)

type subscriber[T any] struct {
	id   uint64
	name string
	fn   Handler[T]
}

// Bus delivers events of type T to its subscribers.
type Bus[T any] struct {
	mu     sync.RWMutex
	subs   []subscriber[T]
	nextID uint64
}

// New creates an empty bus.
func New[T any]() *Bus[T] {
	return &Bus[T]{}
}

// Subscribe appends a named handler and returns a function that removes it.
// The name only appears in logs.
func (b *Bus[T]) Subscribe(name string, fn Handler[T]) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber[T]{id: id, name: name, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish calls every subscriber with event, in the order they subscribed.
// It returns the number of subscribers that panicked.
func (b *Bus[T]) Publish(event T) int {
	b.mu.RLock()
	snapshot := make([]subscriber[T], len(b.subs))
	copy(snapshot, b.subs)
	b.mu.RUnlock()

	failed := 0
	for _, s := range snapshot {
		if !deliver(s, event) {
			failed++
		}
	}
	return failed
}

func deliver[T any](s subscriber[T], event T) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			pilog.Error("eventbus: subscriber %s panicked: %v", s.name, r)
			ok = false
		}
	}()
	s.fn(event)
	return true
}

// Count returns the number of subscribers.
func (b *Bus[T]) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
