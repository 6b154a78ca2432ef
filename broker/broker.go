// Package broker is an in-memory publish/subscribe hub feeding subscription
// resolvers.
package broker

import (
	"context"
	"sync"

	"github.com/segmentio/ksuid"
	"go.uber.org/atomic"
)

// DefaultBuffer is the channel capacity of a subscription.
const DefaultBuffer = 16

// Broker fans messages out to the current subscribers. Delivery is
// at-most-once: a subscriber whose buffer is full misses the message, and
// messages published before Subscribe are not replayed.
type Broker[T any] struct {
	buffer int

	mu   sync.RWMutex
	subs map[ksuid.KSUID]*Subscription[T]

	published atomic.Int64
	dropped   atomic.Int64
}

// New creates a broker. A non-positive buffer uses DefaultBuffer.
func New[T any](buffer int) *Broker[T] {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Broker[T]{
		buffer: buffer,
		subs:   make(map[ksuid.KSUID]*Subscription[T]),
	}
}

// Subscription receives the messages published after it was created.
type Subscription[T any] struct {
	ID ksuid.KSUID

	c    chan T
	once sync.Once
}

// C returns the message channel. It is closed on unsubscribe.
func (s *Subscription[T]) C() <-chan T {
	return s.c
}

func (s *Subscription[T]) close() {
	s.once.Do(func() { close(s.c) })
}

// Subscribe registers a subscriber. It is removed when ctx is done.
func (b *Broker[T]) Subscribe(ctx context.Context) *Subscription[T] {
	s := &Subscription[T]{
		ID: ksuid.New(),
		c:  make(chan T, b.buffer),
	}

	b.mu.Lock()
	b.subs[s.ID] = s
	b.mu.Unlock()

	if done := ctx.Done(); done != nil {
		go func() {
			<-done
			b.Unsubscribe(s.ID)
		}()
	}
	return s
}

// Unsubscribe removes a subscriber and closes its channel. Unknown ids are
// ignored.
func (b *Broker[T]) Unsubscribe(id ksuid.KSUID) {
	b.mu.Lock()
	s, ok := b.subs[id]
	delete(b.subs, id)
	b.mu.Unlock()

	if ok {
		s.close()
	}
}

// Publish delivers msg to every subscriber with room in its buffer and
// returns the number of subscribers reached.
func (b *Broker[T]) Publish(msg T) int {
	b.published.Inc()

	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for _, s := range b.subs {
		select {
		case s.c <- msg:
			delivered++
		default:
			b.dropped.Inc()
		}
	}
	return delivered
}

// Len returns the number of subscribers.
func (b *Broker[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Stats are the broker counters since creation.
type Stats struct {
	Published   int64
	Dropped     int64
	Subscribers int
}

func (b *Broker[T]) Stats() Stats {
	return Stats{
		Published:   b.published.Load(),
		Dropped:     b.dropped.Load(),
		Subscribers: b.Len(),
	}
}
