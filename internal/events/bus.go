// Package events is the cross-component signaling channel: a minimal
// topic-to-callback bus owned by the composition root. Producers and
// consumers never hold references to each other; a listener that
// hears a topic re-pulls whatever state it cares about.
package events

import (
	"sort"
	"sync"
)

// TopicCartUpdated fires after any cart mutation, guest or
// authenticated, so decoupled UI (item-count badges, cart views) can
// refresh.
const TopicCartUpdated = "cart.updated"

// Bus fans a published topic out to its subscribers synchronously, in
// subscription order. Delivery is fire-and-forget: Publish returns
// once every callback has run, with no guarantee a listener finished
// re-fetching before the next mutation lands.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]func()
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[int]func())}
}

// Subscribe registers fn for topic and returns a function that
// removes the subscription. Unsubscribing twice is harmless.
func (b *Bus) Subscribe(topic string, fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]func())
	}
	id := b.next
	b.next++
	b.subs[topic][id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}
}

// Publish invokes every callback subscribed to topic.
func (b *Bus) Publish(topic string) {
	b.mu.Lock()
	ids := make([]int, 0, len(b.subs[topic]))
	for id := range b.subs[topic] {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	// Copy under the lock, invoke outside it: a callback may
	// subscribe or unsubscribe.
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, b.subs[topic][id])
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
