// Package events is the in-process notification bus between the transfer
// engine, the listing enumerator and the user interface.
package events

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/drivesync/internal/client/models"
)

// Handler receives events. It runs on the publisher's goroutine and must not
// block.
type Handler func(models.Event)

type subscription struct {
	id    uint64
	kinds []models.EventKind
	fn    Handler
}

func (s *subscription) wants(k models.EventKind) bool {
	return len(s.kinds) == 0 || slices.Contains(s.kinds, k)
}

// Bus fans events out to subscribers. The zero value is ready to use.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []*subscription

	dropped atomic.Uint64
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn for the given kinds (all kinds when none are
// given). The returned func removes the subscription and is safe to call
// more than once.
func (b *Bus) Subscribe(fn Handler, kinds ...models.EventKind) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	s := &subscription{id: b.nextID, kinds: kinds, fn: fn}
	b.subs = append(b.subs, s)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.subs = slices.DeleteFunc(b.subs, func(x *subscription) bool { return x.id == s.id })
		})
	}
}

// Channel subscribes a buffered channel. Delivery never blocks the
// publisher: events that do not fit in the buffer are dropped and counted
// in Dropped. Size the buffer for the burst a reader may lag behind. The
// channel is not closed by unsubscribe.
func (b *Bus) Channel(size int, kinds ...models.EventKind) (<-chan models.Event, func()) {
	ch := make(chan models.Event, size)
	unsub := b.Subscribe(func(e models.Event) {
		select {
		case ch <- e:
		default:
			b.dropped.Add(1)
		}
	}, kinds...)
	return ch, unsub
}

// Publish delivers e to every matching subscriber in subscription order.
func (b *Bus) Publish(e models.Event) {
	b.mu.RLock()
	subs := slices.Clone(b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		if s.wants(e.Kind) {
			s.fn(e)
		}
	}
}

// Dropped is the number of events Channel subscribers missed because their
// buffer was full.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
