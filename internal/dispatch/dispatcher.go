package dispatch

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/google/uuid"

	"trimline/internal/domain/booking"
	"trimline/internal/telemetry"
)

// Trigger names the mutation that forced a rebuild. It rides along in the
// broadcast payload so clients can tell a delay shift from a new booking.
type Trigger string

const (
	TriggerCreated       Trigger = "booking_created"
	TriggerStatusChanged Trigger = "status_changed"
	TriggerCancelled     Trigger = "booking_cancelled"
	TriggerDelay         Trigger = "delay_applied"
	TriggerSnapshot      Trigger = "snapshot"
)

type Event struct {
	ResourceID uuid.UUID
	Date       booking.Date
	Trigger    Trigger
	BookingID  uuid.UUID
	CustomerID uuid.UUID
}

// RebuildFunc recomputes the full timeline snapshot for a resource-day and
// returns it already marshaled for the wire.
type RebuildFunc func(ctx context.Context, resourceID uuid.UUID, date booking.Date) ([]byte, error)

type customerEvent struct {
	Type       Trigger   `json:"type"`
	BookingID  uuid.UUID `json:"bookingId"`
	ResourceID uuid.UUID `json:"resourceId"`
	Date       string    `json:"date"`
	OccurredAt time.Time `json:"occurredAt"`
}

// timelineUpdate is the frame resource-day subscribers receive: the mutation
// that triggered the rebuild plus the full rebuilt timeline.
type timelineUpdate struct {
	Type       Trigger         `json:"type"`
	BookingID  *uuid.UUID      `json:"bookingId,omitempty"`
	ResourceID uuid.UUID       `json:"resourceId"`
	Date       string          `json:"date"`
	Timeline   json.RawMessage `json:"timeline"`
}

// UpdateFrame wraps a marshaled timeline in the subscriber wire envelope.
func UpdateFrame(trigger Trigger, bookingID, resourceID uuid.UUID, date booking.Date, timeline []byte) []byte {
	frame := timelineUpdate{
		Type:       trigger,
		ResourceID: resourceID,
		Date:       date.String(),
		Timeline:   timeline,
	}
	if bookingID != uuid.Nil {
		frame.BookingID = &bookingID
	}
	payload, err := json.Marshal(frame)
	if err != nil {
		return timeline
	}
	return payload
}

const (
	snapshotTTL   = 5 * time.Minute
	eventQueueCap = 256
)

// Dispatcher serializes recomputes: every mutation enqueues an event, a
// single loop rebuilds the affected resource-day from scratch, refreshes the
// snapshot cache, and fans the result out. One loop means two near-simultaneous
// mutations cannot interleave their rebuilds.
type Dispatcher struct {
	hub     *Hub
	rebuild RebuildFunc
	cache   *gocache.Cache
	logger  *slog.Logger

	events chan Event
	quit   chan struct{}
	done   chan struct{}
}

func NewDispatcher(hub *Hub, rebuild RebuildFunc, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		hub:     hub,
		rebuild: rebuild,
		cache:   gocache.New(snapshotTTL, 10*time.Minute),
		logger:  logger,
		events:  make(chan Event, eventQueueCap),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	go d.run(ctx)
}

// Stop drains queued events and waits for the loop to exit. The events
// channel is never closed: a request racing shutdown must not panic mid-send.
func (d *Dispatcher) Stop() {
	close(d.quit)
	<-d.done
}

// Publish enqueues a mutation for recompute. It never blocks the caller; if
// the queue is full or the dispatcher has stopped, the event is processed
// inline instead. The stale snapshot is dropped immediately so reads fall
// back to a live build until the rebuild lands.
func (d *Dispatcher) Publish(ctx context.Context, ev Event) {
	d.Invalidate(ev.ResourceID, ev.Date)

	select {
	case <-d.quit:
		d.handle(ctx, ev)
		return
	default:
	}
	select {
	case d.events <- ev:
	default:
		d.handle(ctx, ev)
	}
}

// Snapshot returns the cached timeline payload for a resource-day, if the
// dispatcher has rebuilt it since the last expiry.
func (d *Dispatcher) Snapshot(resourceID uuid.UUID, date booking.Date) ([]byte, bool) {
	v, ok := d.cache.Get(Key(resourceID, date))
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

// Invalidate drops the cached snapshot without rebuilding. Used when a
// mutation path wants the next read to hit the repository.
func (d *Dispatcher) Invalidate(resourceID uuid.UUID, date booking.Date) {
	d.cache.Delete(Key(resourceID, date))
}

func (d *Dispatcher) run(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case ev := <-d.events:
			d.handle(ctx, ev)
		case <-d.quit:
			for {
				select {
				case ev := <-d.events:
					d.handle(ctx, ev)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, ev Event) {
	telemetry.RecomputeCounter.Inc()

	payload, err := d.rebuild(ctx, ev.ResourceID, ev.Date)
	if err != nil {
		telemetry.RecomputeFailures.Inc()
		d.logger.Error("timeline rebuild failed",
			"resource_id", ev.ResourceID,
			"date", ev.Date.String(),
			"trigger", string(ev.Trigger),
			"error", err,
		)
		d.cache.Delete(Key(ev.ResourceID, ev.Date))
		return
	}

	d.cache.Set(Key(ev.ResourceID, ev.Date), payload, snapshotTTL)
	d.hub.Broadcast(ev.ResourceID, ev.Date, UpdateFrame(ev.Trigger, ev.BookingID, ev.ResourceID, ev.Date, payload))
	telemetry.BroadcastCounter.Inc()

	if ev.CustomerID != uuid.Nil {
		msg, err := json.Marshal(customerEvent{
			Type:       ev.Trigger,
			BookingID:  ev.BookingID,
			ResourceID: ev.ResourceID,
			Date:       ev.Date.String(),
			OccurredAt: time.Now().UTC(),
		})
		if err == nil {
			d.hub.NotifyCustomer(ev.CustomerID, msg)
		}
	}

	d.logger.Debug("timeline recomputed",
		"resource_id", ev.ResourceID,
		"date", ev.Date.String(),
		"trigger", string(ev.Trigger),
		"subscribers", d.hub.SubscriberCount(ev.ResourceID, ev.Date),
	)
}
