package event

import (
	"sync"
	"sync/atomic"
)

// Bus distributes canvas mutation events to subscribers.
// Delivery happens synchronously during Publish, in subscription
// order. Safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int64]*subscription
	byType map[string]map[int64]*subscription
	nextID atomic.Int64
	closed atomic.Bool
}

type subscription struct {
	id      int64
	types   []string // empty = all types
	handler Handler
	paused  atomic.Bool
	bus     *Bus
}

// Subscription represents an active subscription.
type Subscription interface {
	// Unsubscribe removes the subscription.
	Unsubscribe()

	// Pause temporarily stops delivery.
	Pause()

	// Resume continues delivery after pause.
	Resume()
}

// NewBus creates a new bus.
func NewBus() *Bus {
	return &Bus{
		subs:   make(map[int64]*subscription),
		byType: make(map[string]map[int64]*subscription),
	}
}

// Publish delivers an event to all matching subscribers, synchronously.
func (b *Bus) Publish(evt Event) {
	if b.closed.Load() {
		return
	}

	b.mu.RLock()
	matched := make([]*subscription, 0, len(b.subs))
	if typeSubs, ok := b.byType[evt.Type]; ok {
		for _, sub := range typeSubs {
			matched = append(matched, sub)
		}
	}
	for _, sub := range b.subs {
		if len(sub.types) == 0 {
			matched = append(matched, sub)
		}
	}
	b.mu.RUnlock()

	for _, sub := range matched {
		if sub.paused.Load() {
			continue
		}
		sub.handler(evt)
	}
}

// Subscribe registers a handler for specific event types.
func (b *Bus) Subscribe(types []string, handler Handler) Subscription {
	return b.subscribe(types, handler)
}

// SubscribeAll registers a handler for all events.
func (b *Bus) SubscribeAll(handler Handler) Subscription {
	return b.subscribe(nil, handler)
}

func (b *Bus) subscribe(types []string, handler Handler) *subscription {
	if b.closed.Load() || handler == nil {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscription{
		id:      b.nextID.Add(1),
		types:   types,
		handler: handler,
		bus:     b,
	}
	b.subs[sub.id] = sub

	for _, t := range types {
		if b.byType[t] == nil {
			b.byType[t] = make(map[int64]*subscription)
		}
		b.byType[t][sub.id] = sub
	}
	return sub
}

// Close shuts down the bus. Further publishes are dropped.
func (b *Bus) Close() error {
	b.closed.Store(true)
	return nil
}

// Unsubscribe removes the subscription.
func (s *subscription) Unsubscribe() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	delete(s.bus.subs, s.id)
	for _, t := range s.types {
		if typeSubs, ok := s.bus.byType[t]; ok {
			delete(typeSubs, s.id)
		}
	}
}

// Pause temporarily stops delivery.
func (s *subscription) Pause() {
	s.paused.Store(true)
}

// Resume continues delivery after pause.
func (s *subscription) Resume() {
	s.paused.Store(false)
}
