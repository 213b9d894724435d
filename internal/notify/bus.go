// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notify carries state-change notifications from the core to the
// presentation layer and other listeners.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// =============================================================================
// EVENT TYPES
// =============================================================================

// Name identifies a notification. The values are the event names the front
// end listens for.
type Name string

const (
	// ModeChanged carries the newly committed mode.Mode.
	ModeChanged Name = "interaction-mode-changed"
	// SizeChanged carries the newly committed character size (int).
	SizeChanged Name = "character-size-changed"
)

// Event is a single notification.
type Event struct {
	ID        string    `json:"id"`
	Name      Name      `json:"name"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent stamps a notification with an id and the current time.
func NewEvent(name Name, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Name:      name,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// Publisher accepts notifications. Implementations must not call back into
// the publisher's owner while holding its locks; callers publish only after
// releasing their own.
type Publisher interface {
	Publish(Event)
}

// PublisherFunc adapts a plain function to Publisher.
type PublisherFunc func(Event)

// Publish calls f(e).
func (f PublisherFunc) Publish(e Event) { f(e) }

// Discard drops every event.
var Discard Publisher = PublisherFunc(func(Event) {})

// =============================================================================
// BUS
// =============================================================================

// Handler receives events from a Bus.
type Handler func(Event)

type subscription struct {
	names   map[Name]struct{}
	handler Handler
}

func (s *subscription) wants(n Name) bool {
	if len(s.names) == 0 {
		return true
	}
	_, ok := s.names[n]
	return ok
}

// Bus fans events out to subscribers synchronously, in subscription order.
// A panicking handler is logged and does not stop delivery to the others.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]*subscription
	order  []int
	nextID int
	closed bool
	logger *zap.Logger
}

// NewBus creates an empty bus. A nil logger is replaced with a no-op one.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		subs:   make(map[int]*subscription),
		logger: logger,
	}
}

// Subscribe registers handler for the given names, or for every event when
// no names are given. The returned function removes the subscription.
func (b *Bus) Subscribe(handler Handler, names ...Name) (unsubscribe func()) {
	sub := &subscription{handler: handler}
	if len(names) > 0 {
		sub.names = make(map[Name]struct{}, len(names))
		for _, n := range names {
			sub.names[n] = struct{}{}
		}
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = sub
	b.order = append(b.order, id)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish delivers e to every matching subscriber. Handlers run on the
// caller's goroutine without the bus lock held.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	targets := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		if sub := b.subs[id]; sub.wants(e.Name) {
			targets = append(targets, sub.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range targets {
		b.deliver(h, e)
	}
}

func (b *Bus) deliver(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("notification handler panicked",
				zap.String("event", string(e.Name)),
				zap.Any("panic", r))
		}
	}()
	h(e)
}

// SubscriberCount returns the number of live subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close stops delivery. Later Publish calls are dropped.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = make(map[int]*subscription)
	b.order = nil
}
