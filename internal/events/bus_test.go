package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_PublishFansOutInOrder(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.Subscribe(TopicCartUpdated, func() { order = append(order, "badge") })
	bus.Subscribe(TopicCartUpdated, func() { order = append(order, "cart") })

	bus.Publish(TopicCartUpdated)

	assert.Equal(t, []string{"badge", "cart"}, order)
}

func TestBus_TopicsAreIndependent(t *testing.T) {
	bus := NewBus()

	calls := 0
	bus.Subscribe(TopicCartUpdated, func() { calls++ })

	bus.Publish("session.changed")
	assert.Zero(t, calls)

	bus.Publish(TopicCartUpdated)
	assert.Equal(t, 1, calls)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	calls := 0
	cancel := bus.Subscribe(TopicCartUpdated, func() { calls++ })

	bus.Publish(TopicCartUpdated)
	cancel()
	cancel() // second cancel is a no-op
	bus.Publish(TopicCartUpdated)

	assert.Equal(t, 1, calls)
}

func TestBus_PublishWithNoSubscribers(t *testing.T) {
	bus := NewBus()
	assert.NotPanics(t, func() { bus.Publish(TopicCartUpdated) })
}

func TestBus_SubscribeDuringPublish(t *testing.T) {
	bus := NewBus()

	calls := 0
	bus.Subscribe(TopicCartUpdated, func() {
		bus.Subscribe(TopicCartUpdated, func() { calls++ })
	})

	assert.NotPanics(t, func() { bus.Publish(TopicCartUpdated) })
	bus.Publish(TopicCartUpdated)
	assert.GreaterOrEqual(t, calls, 1)
}
