//go:build unit

package dispatch_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trimline/internal/dispatch"
	"trimline/internal/domain/booking"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, nil))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestDispatcher_RebuildsAndBroadcasts(t *testing.T) {
	hub := dispatch.NewHub()
	resource := uuid.New()
	date := booking.NewDate(2025, time.March, 10)

	var rebuilds atomic.Int32
	rebuild := func(ctx context.Context, resourceID uuid.UUID, d booking.Date) ([]byte, error) {
		rebuilds.Add(1)
		return []byte(`{"entries":[]}`), nil
	}

	disp := dispatch.NewDispatcher(hub, rebuild, discardLogger())
	disp.Start(context.Background())

	sub := hub.Subscribe(resource, date)
	defer hub.Unsubscribe(sub)

	bookingID := uuid.New()
	disp.Publish(context.Background(), dispatch.Event{
		ResourceID: resource,
		Date:       date,
		Trigger:    dispatch.TriggerCreated,
		BookingID:  bookingID,
	})

	select {
	case payload := <-sub.C:
		var frame map[string]any
		require.NoError(t, json.Unmarshal(payload, &frame))
		assert.Equal(t, "booking_created", frame["type"])
		assert.Equal(t, bookingID.String(), frame["bookingId"])
		timeline, err := json.Marshal(frame["timeline"])
		require.NoError(t, err)
		assert.JSONEq(t, `{"entries":[]}`, string(timeline))
	case <-time.After(time.Second):
		t.Fatal("no broadcast after publish")
	}

	disp.Stop()
	assert.Equal(t, int32(1), rebuilds.Load())

	cached, ok := disp.Snapshot(resource, date)
	require.True(t, ok, "rebuild should populate the snapshot cache")
	assert.Equal(t, []byte(`{"entries":[]}`), cached)
}

func TestDispatcher_NotifiesCustomerChannel(t *testing.T) {
	hub := dispatch.NewHub()
	resource := uuid.New()
	customer := uuid.New()
	bookingID := uuid.New()
	date := booking.NewDate(2025, time.March, 10)

	rebuild := func(ctx context.Context, resourceID uuid.UUID, d booking.Date) ([]byte, error) {
		return []byte(`{}`), nil
	}
	disp := dispatch.NewDispatcher(hub, rebuild, discardLogger())
	disp.Start(context.Background())
	defer disp.Stop()

	sub := hub.SubscribeCustomer(customer)
	defer hub.Unsubscribe(sub)

	disp.Publish(context.Background(), dispatch.Event{
		ResourceID: resource,
		Date:       date,
		Trigger:    dispatch.TriggerStatusChanged,
		BookingID:  bookingID,
		CustomerID: customer,
	})

	select {
	case payload := <-sub.C:
		var ev map[string]any
		require.NoError(t, json.Unmarshal(payload, &ev))
		assert.Equal(t, "status_changed", ev["type"])
		assert.Equal(t, bookingID.String(), ev["bookingId"])
	case <-time.After(time.Second):
		t.Fatal("customer event never arrived")
	}
}

func TestDispatcher_InvalidateDropsSnapshot(t *testing.T) {
	hub := dispatch.NewHub()
	resource := uuid.New()
	date := booking.NewDate(2025, time.March, 10)

	rebuild := func(ctx context.Context, resourceID uuid.UUID, d booking.Date) ([]byte, error) {
		return []byte(`{}`), nil
	}
	disp := dispatch.NewDispatcher(hub, rebuild, discardLogger())
	disp.Start(context.Background())

	disp.Publish(context.Background(), dispatch.Event{ResourceID: resource, Date: date, Trigger: dispatch.TriggerCreated})
	disp.Stop()

	_, ok := disp.Snapshot(resource, date)
	require.True(t, ok)

	disp.Invalidate(resource, date)
	_, ok = disp.Snapshot(resource, date)
	assert.False(t, ok)
}

func TestDispatcher_PublishAfterStopRunsInline(t *testing.T) {
	hub := dispatch.NewHub()
	resource := uuid.New()
	date := booking.NewDate(2025, time.March, 10)

	var rebuilds atomic.Int32
	rebuild := func(ctx context.Context, resourceID uuid.UUID, d booking.Date) ([]byte, error) {
		rebuilds.Add(1)
		return []byte(`{}`), nil
	}
	disp := dispatch.NewDispatcher(hub, rebuild, discardLogger())
	disp.Start(context.Background())
	disp.Stop()

	assert.NotPanics(t, func() {
		disp.Publish(context.Background(), dispatch.Event{ResourceID: resource, Date: date, Trigger: dispatch.TriggerCreated})
	})
	assert.Equal(t, int32(1), rebuilds.Load(), "a stopped dispatcher handles the event inline")

	_, ok := disp.Snapshot(resource, date)
	assert.True(t, ok)
}

func TestDispatcher_RebuildFailureDropsCache(t *testing.T) {
	hub := dispatch.NewHub()
	resource := uuid.New()
	date := booking.NewDate(2025, time.March, 10)

	var fail atomic.Bool
	rebuild := func(ctx context.Context, resourceID uuid.UUID, d booking.Date) ([]byte, error) {
		if fail.Load() {
			return nil, errors.New("repository unavailable")
		}
		return []byte(`{}`), nil
	}
	disp := dispatch.NewDispatcher(hub, rebuild, discardLogger())
	disp.Start(context.Background())

	disp.Publish(context.Background(), dispatch.Event{ResourceID: resource, Date: date, Trigger: dispatch.TriggerCreated})

	fail.Store(true)
	disp.Publish(context.Background(), dispatch.Event{ResourceID: resource, Date: date, Trigger: dispatch.TriggerCancelled})
	disp.Stop()

	_, ok := disp.Snapshot(resource, date)
	assert.False(t, ok, "a failed rebuild must not leave a stale snapshot")
}
