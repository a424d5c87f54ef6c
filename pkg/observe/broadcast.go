package observe

import (
	"context"
	"sync"
)

// DefaultBroadcastBuffer is the per-subscriber queue length.
const DefaultBroadcastBuffer = 16

// Broadcast fans every emission out to the subscribers attached at that moment.
// Nothing is replayed to later subscribers.
type Broadcast[T any] struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]*subscriber[T]
	buffer int
}

type subscriber[T any] struct {
	ch   chan T
	done <-chan struct{}
}

// NewBroadcast returns a Broadcast whose subscribers queue up to buffer events.
func NewBroadcast[T any](buffer int) *Broadcast[T] {
	if buffer < 0 {
		buffer = 0
	}
	return &Broadcast[T]{subs: make(map[int]*subscriber[T]), buffer: buffer}
}

// Subscribe receives every emission made after the call until ctx is done.
func (b *Broadcast[T]) Subscribe(ctx context.Context) <-chan T {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	sub := &subscriber[T]{ch: make(chan T, b.buffer), done: ctx.Done()}
	b.subs[id] = sub
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
		close(sub.ch)
	}()

	return sub.ch
}

// Emit delivers value to every current subscriber, waiting for room in full
// queues. It returns early with ctx's error; detached subscribers are skipped.
func (b *Broadcast[T]) Emit(ctx context.Context, value T) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		select {
		case sub.ch <- value:
		case <-sub.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Subscribers reports how many subscriptions are attached.
func (b *Broadcast[T]) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
