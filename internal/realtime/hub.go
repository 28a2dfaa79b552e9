// Package realtime carries notification change events from the write path to
// every live subscriber of the affected user.
package realtime

import (
	"context"
	"sync"

	"github.com/dimitrije/admin-dashboard-api/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Kind string

const (
	KindInsert Kind = "INSERT"
	KindUpdate Kind = "UPDATE"
	KindDelete Kind = "DELETE"
)

type Event struct {
	Kind         Kind                `json:"kind"`
	Notification models.Notification `json:"record"`
}

// Publisher accepts change events from the notification write path.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

const defaultBufferSize = 64

type Subscription struct {
	ID     string
	UserID uuid.UUID

	events chan Event
	hub    *Hub
	once   sync.Once
}

// Events is closed once the subscription is cancelled.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Cancel unregisters the subscription. No event is delivered after Cancel
// returns. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.hub.remove(s)
	})
}

type Hub struct {
	subscribers map[uuid.UUID]map[string]*Subscription
	broadcast   chan Event
	bufferSize  int
	logger      *zap.Logger
	mu          sync.RWMutex
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subscribers: make(map[uuid.UUID]map[string]*Subscription),
		broadcast:   make(chan Event, 256),
		bufferSize:  defaultBufferSize,
		logger:      logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

// deliver never blocks on a subscriber. One whose buffer is full has missed
// the event and gets closed, which tells its owner to resync.
func (h *Hub) deliver(event Event) {
	var slow []*Subscription

	h.mu.RLock()
	for _, sub := range h.subscribers[event.Notification.UserID] {
		select {
		case sub.events <- event:
		default:
			slow = append(slow, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range slow {
		h.logger.Warn("closing slow subscriber",
			zap.String("subscription_id", sub.ID),
			zap.String("kind", string(event.Kind)),
		)
		sub.Cancel()
	}
}

func (h *Hub) Subscribe(userID uuid.UUID) *Subscription {
	sub := &Subscription{
		ID:     uuid.New().String(),
		UserID: userID,
		events: make(chan Event, h.bufferSize),
		hub:    h,
	}

	h.mu.Lock()
	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[string]*Subscription)
	}
	h.subscribers[userID][sub.ID] = sub
	h.mu.Unlock()

	return sub
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.subscribers[sub.UserID]; ok {
		if _, ok := subs[sub.ID]; ok {
			delete(subs, sub.ID)
			close(sub.events)
		}
		if len(subs) == 0 {
			delete(h.subscribers, sub.UserID)
		}
	}
}

// SubscriberCount returns the number of open subscriptions for userID.
func (h *Hub) SubscriberCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}

func (h *Hub) Publish(ctx context.Context, event Event) error {
	select {
	case h.broadcast <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
