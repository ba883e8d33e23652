package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingEvent struct{ n int }

func (pingEvent) Topic() Topic { return "ping" }

func TestBus_RegistrationOrder(t *testing.T) {
	b := NewBus()
	var order []string

	b.Subscribe("first", func(Event) { order = append(order, "first") })
	b.Subscribe("second", func(Event) { order = append(order, "second") })
	b.Subscribe("third", func(Event) { order = append(order, "third") })

	b.Publish(pingEvent{n: 1})

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestBus_SubscribeIdempotent(t *testing.T) {
	b := NewBus()
	calls := 0

	assert.True(t, b.Subscribe("ui", func(Event) { calls++ }))
	assert.False(t, b.Subscribe("ui", func(Event) { calls += 100 }))
	assert.Equal(t, 1, b.Len())

	b.Publish(pingEvent{})
	assert.Equal(t, 1, calls, "existing handler must be kept")
}

func TestBus_UnsubscribeIdempotent(t *testing.T) {
	b := NewBus()
	calls := 0
	b.Subscribe("ui", func(Event) { calls++ })

	assert.True(t, b.Unsubscribe("ui"))
	assert.False(t, b.Unsubscribe("ui"))
	assert.False(t, b.Unsubscribe("never-registered"))

	b.Publish(pingEvent{})
	assert.Equal(t, 0, calls)
}

func TestBus_UnsubscribeDuringPublish(t *testing.T) {
	b := NewBus()
	var got []string

	b.Subscribe("a", func(Event) {
		got = append(got, "a")
		b.Unsubscribe("b")
	})
	b.Subscribe("b", func(Event) { got = append(got, "b") })

	b.Publish(pingEvent{})
	b.Publish(pingEvent{})

	assert.Equal(t, []string{"a", "b", "a"}, got)
}

func TestBus_NilIsDiscard(t *testing.T) {
	var b *Bus
	assert.NotPanics(t, func() {
		b.Publish(pingEvent{})
		b.Subscribe("x", func(Event) {})
		b.Unsubscribe("x")
	})
	assert.Equal(t, 0, b.Len())
}
