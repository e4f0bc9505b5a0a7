// Package realtime fans resource changes out to live subscribers.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/habmon/habmon/internal/metrics"
	"github.com/habmon/habmon/internal/models"
)

// SubscriberQueueSize is the buffer of each channel subscriber.
const SubscriberQueueSize = 32

// EventType names a realtime event.
type EventType string

const (
	EventInitialState   EventType = "initialState"
	EventResourceUpdate EventType = "resourceUpdate"
	EventCriticalAlert  EventType = "criticalAlert"
	EventBulkUpdate     EventType = "bulkUpdate"
	EventResourceDelete EventType = "resourceDeleted"
)

// ErrSubscriberFull is returned when a subscriber cannot keep up.
var ErrSubscriberFull = errors.New("subscriber queue full")

// Event is one message delivered to subscribers.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent(eventType EventType, data any) Event {
	return Event{Type: eventType, Timestamp: time.Now().UTC(), Data: data}
}

// SubscriberID identifies a subscription.
type SubscriberID int

// Subscriber receives events. Deliver must not block. Close must be
// idempotent.
type Subscriber interface {
	Deliver(Event) error
	Close()
}

type channelSubscriber struct {
	ch     chan Event
	mu     sync.Mutex
	closed bool
}

func newChannelSubscriber(buffer int) *channelSubscriber {
	return &channelSubscriber{ch: make(chan Event, buffer)}
}

func (c *channelSubscriber) Deliver(evt Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	select {
	case c.ch <- evt:
		return nil
	default:
		return ErrSubscriberFull
	}
}

func (c *channelSubscriber) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}

// Hub delivers resource notifications to every subscriber. A subscriber
// whose delivery fails is dropped and closed.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[SubscriberID]Subscriber
	lastID      SubscriberID
	closed      bool

	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger, m *metrics.Metrics) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subscribers: make(map[SubscriberID]Subscriber),
		logger:      logger.With("component", "realtime"),
		metrics:     m,
	}
}

// Subscribe registers a buffered channel subscriber. The channel is closed
// on Unsubscribe, when the subscriber falls behind, or when the hub closes.
func (h *Hub) Subscribe() (SubscriberID, <-chan Event) {
	sub := newChannelSubscriber(SubscriberQueueSize)
	id := h.AddSubscriber(sub)
	return id, sub.ch
}

// AddSubscriber registers sub. If the hub is closed sub is closed at once.
func (h *Hub) AddSubscriber(sub Subscriber) SubscriberID {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		sub.Close()
		return 0
	}
	h.lastID++
	h.subscribers[h.lastID] = sub
	h.metrics.SubscriberAdded()
	return h.lastID
}

// Unsubscribe removes and closes a subscriber. Unknown ids are ignored.
func (h *Hub) Unsubscribe(id SubscriberID) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
		h.metrics.SubscriberRemoved()
	}
	h.mu.Unlock()
	if ok {
		sub.Close()
	}
}

// SubscriberCount returns the number of live subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Publish delivers evt to every subscriber.
func (h *Hub) Publish(evt Event) {
	var failed []SubscriberID

	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return
	}
	for id, sub := range h.subscribers {
		if err := sub.Deliver(evt); err != nil {
			h.logger.Warn("dropping subscriber", "subscriber", id, "event", evt.Type, "error", err)
			h.metrics.DeliveryFailed(string(evt.Type))
			failed = append(failed, id)
		}
	}
	h.mu.RUnlock()

	h.metrics.EventPublished(string(evt.Type))
	for _, id := range failed {
		h.Unsubscribe(id)
	}
}

// Close closes every subscriber. Later publishes are discarded.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	subs := h.subscribers
	h.subscribers = make(map[SubscriberID]Subscriber)
	for range subs {
		h.metrics.SubscriberRemoved()
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}

// OnResourceChanged publishes a resourceUpdate event.
func (h *Hub) OnResourceChanged(_ context.Context, card models.ResourceCard) error {
	h.Publish(NewEvent(EventResourceUpdate, card))
	return nil
}

// OnResourceCritical publishes a criticalAlert event.
func (h *Hub) OnResourceCritical(_ context.Context, card models.ResourceCard) error {
	h.Publish(NewEvent(EventCriticalAlert, CriticalAlert{
		Resource: card,
		Message:  fmt.Sprintf("%s is at %.2f%%, below the critical threshold of %.2f%%", card.Name, card.CurrentPercentage, card.CriticalPercentage),
	}))
	return nil
}

// OnBatch publishes one bulkUpdate event carrying the batch.
func (h *Hub) OnBatch(_ context.Context, cards []models.ResourceCard) error {
	h.Publish(NewEvent(EventBulkUpdate, cards))
	return nil
}

// OnResourceDeleted publishes a resourceDeleted event for code.
func (h *Hub) OnResourceDeleted(_ context.Context, code string) error {
	h.Publish(NewEvent(EventResourceDelete, ResourceDeleted{Code: code}))
	return nil
}

// ResourceDeleted is the payload of a resourceDeleted event.
type ResourceDeleted struct {
	Code string `json:"code"`
}

// CriticalAlert is the payload of a criticalAlert event.
type CriticalAlert struct {
	Resource models.ResourceCard `json:"resource"`
	Message  string              `json:"message"`
}
