// Package observe provides the two observable shapes the display layer consumes:
// a current-value holder and a no-replay broadcast.
package observe

import (
	"context"
	"sync"
)

// Value holds a current value. Subscribers get it immediately, then every
// later value; a slow subscriber only sees the most recent one.
type Value[T any] struct {
	mu      sync.Mutex
	current T
	nextID  int
	subs    map[int]chan T
	onFirst func()
	started bool
}

// NewValue returns a Value starting at initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{current: initial, subs: make(map[int]chan T)}
}

// NewLazyValue returns a Value whose start func runs once, on the first
// Subscribe or Get.
func NewLazyValue[T any](initial T, start func()) *Value[T] {
	v := NewValue(initial)
	v.onFirst = start
	return v
}

func (v *Value[T]) activate() {
	if v.started || v.onFirst == nil {
		return
	}
	v.started = true
	go v.onFirst()
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.activate()
	return v.current
}

// Set replaces the current value and publishes it.
func (v *Value[T]) Set(value T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.current = value
	for _, ch := range v.subs {
		// Only Set writes to ch and it holds the lock, so after the drain the send cannot block.
		select {
		case <-ch:
		default:
		}
		ch <- value
	}
}

// Subscribe streams the current value and its updates until ctx is done.
func (v *Value[T]) Subscribe(ctx context.Context) <-chan T {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.activate()

	id := v.nextID
	v.nextID++
	ch := make(chan T, 1)
	ch <- v.current
	v.subs[id] = ch

	go func() {
		<-ctx.Done()
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.subs, id)
		close(ch)
	}()

	return ch
}

// Subscribers reports how many subscriptions are attached.
func (v *Value[T]) Subscribers() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}
