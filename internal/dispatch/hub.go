package dispatch

import (
	"sync"

	"github.com/google/uuid"

	"trimline/internal/domain/booking"
)

// subscriptionBuffer bounds how far a slow consumer may lag before updates
// are dropped for it. Every broadcast carries a full snapshot, so a dropped
// frame is superseded by the next one.
const subscriptionBuffer = 8

// Key identifies one resource-day broadcast group.
func Key(resourceID uuid.UUID, date booking.Date) string {
	return resourceID.String() + "|" + date.String()
}

type Subscription struct {
	C   chan []byte
	key string
}

// Hub fans timeline snapshots out to resource-day subscribers and targeted
// events out to per-customer subscribers.
type Hub struct {
	mu        sync.Mutex
	byKey     map[string][]*Subscription
	customers map[uuid.UUID][]*Subscription
}

func NewHub() *Hub {
	return &Hub{
		byKey:     make(map[string][]*Subscription),
		customers: make(map[uuid.UUID][]*Subscription),
	}
}

func (h *Hub) Subscribe(resourceID uuid.UUID, date booking.Date) *Subscription {
	sub := &Subscription{C: make(chan []byte, subscriptionBuffer), key: Key(resourceID, date)}

	h.mu.Lock()
	h.byKey[sub.key] = append(h.byKey[sub.key], sub)
	h.mu.Unlock()
	return sub
}

func (h *Hub) SubscribeCustomer(customerID uuid.UUID) *Subscription {
	sub := &Subscription{C: make(chan []byte, subscriptionBuffer), key: customerID.String()}

	h.mu.Lock()
	h.customers[customerID] = append(h.customers[customerID], sub)
	h.mu.Unlock()
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.byKey[sub.key] = remove(h.byKey[sub.key], sub)
	if len(h.byKey[sub.key]) == 0 {
		delete(h.byKey, sub.key)
	}
	if id, err := uuid.Parse(sub.key); err == nil {
		h.customers[id] = remove(h.customers[id], sub)
		if len(h.customers[id]) == 0 {
			delete(h.customers, id)
		}
	}
	close(sub.C)
}

// Broadcast delivers a snapshot to every subscriber of the resource-day.
// Sends never block: a subscriber whose buffer is full misses this frame.
// The lock is held across the sends so a concurrent Unsubscribe cannot close
// a channel mid-delivery.
func (h *Hub) Broadcast(resourceID uuid.UUID, date booking.Date, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.byKey[Key(resourceID, date)] {
		select {
		case sub.C <- payload:
		default:
		}
	}
}

func (h *Hub) NotifyCustomer(customerID uuid.UUID, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.customers[customerID] {
		select {
		case sub.C <- payload:
		default:
		}
	}
}

func (h *Hub) SubscriberCount(resourceID uuid.UUID, date booking.Date) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.byKey[Key(resourceID, date)])
}

func remove(subs []*Subscription, target *Subscription) []*Subscription {
	out := subs[:0]
	for _, s := range subs {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}
