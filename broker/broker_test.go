package broker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishFanOut(t *testing.T) {
	b := New[string](4)
	ctx := context.Background()
	s1 := b.Subscribe(ctx)
	s2 := b.Subscribe(ctx)
	require.NotEqual(t, s1.ID, s2.ID)

	assert.Equal(t, 2, b.Publish("a"))
	assert.Equal(t, "a", <-s1.C())
	assert.Equal(t, "a", <-s2.C())
}

func TestNoReplay(t *testing.T) {
	b := New[int](4)
	assert.Equal(t, 0, b.Publish(1))

	s := b.Subscribe(context.Background())
	b.Publish(2)
	assert.Equal(t, 2, <-s.C())
}

func TestFullBufferDrops(t *testing.T) {
	b := New[int](1)
	s := b.Subscribe(context.Background())

	assert.Equal(t, 1, b.Publish(1))
	assert.Equal(t, 0, b.Publish(2))
	assert.Equal(t, 1, <-s.C())

	stats := b.Stats()
	assert.Equal(t, Stats{Published: 2, Dropped: 1, Subscribers: 1}, stats)
}

func TestUnsubscribe(t *testing.T) {
	b := New[int](0)
	s := b.Subscribe(context.Background())
	b.Unsubscribe(s.ID)
	b.Unsubscribe(s.ID)

	_, ok := <-s.C()
	assert.False(t, ok)
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 0, b.Publish(1))
}

func TestCancelUnsubscribes(t *testing.T) {
	b := New[int](0)
	ctx, cancel := context.WithCancel(context.Background())
	s := b.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-s.C():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription was not closed after cancellation")
	}
	assert.Equal(t, 0, b.Len())
}
