//go:build unit

package dispatch_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trimline/internal/dispatch"
	"trimline/internal/domain/booking"
)

func TestHub_BroadcastReachesOnlyMatchingSubscribers(t *testing.T) {
	hub := dispatch.NewHub()
	resource := uuid.New()
	other := uuid.New()
	date := booking.NewDate(2025, time.March, 10)

	sub := hub.Subscribe(resource, date)
	defer hub.Unsubscribe(sub)
	otherSub := hub.Subscribe(other, date)
	defer hub.Unsubscribe(otherSub)

	hub.Broadcast(resource, date, []byte("snapshot"))

	select {
	case got := <-sub.C:
		assert.Equal(t, []byte("snapshot"), got)
	case <-time.After(time.Second):
		t.Fatal("subscriber never received broadcast")
	}

	select {
	case <-otherSub.C:
		t.Fatal("broadcast leaked to another resource")
	default:
	}
}

func TestHub_SameResourceDifferentDateIsSeparate(t *testing.T) {
	hub := dispatch.NewHub()
	resource := uuid.New()

	monday := hub.Subscribe(resource, booking.NewDate(2025, time.March, 10))
	defer hub.Unsubscribe(monday)
	tuesday := hub.Subscribe(resource, booking.NewDate(2025, time.March, 11))
	defer hub.Unsubscribe(tuesday)

	hub.Broadcast(resource, booking.NewDate(2025, time.March, 10), []byte("mon"))

	require.Equal(t, []byte("mon"), <-monday.C)
	select {
	case <-tuesday.C:
		t.Fatal("broadcast leaked across dates")
	default:
	}
}

func TestHub_CustomerChannel(t *testing.T) {
	hub := dispatch.NewHub()
	customer := uuid.New()

	sub := hub.SubscribeCustomer(customer)
	defer hub.Unsubscribe(sub)

	hub.NotifyCustomer(customer, []byte("yours"))
	hub.NotifyCustomer(uuid.New(), []byte("not yours"))

	assert.Equal(t, []byte("yours"), <-sub.C)
	select {
	case <-sub.C:
		t.Fatal("received an event addressed to another customer")
	default:
	}
}

func TestHub_SlowSubscriberDoesNotBlockBroadcast(t *testing.T) {
	hub := dispatch.NewHub()
	resource := uuid.New()
	date := booking.NewDate(2025, time.March, 10)

	sub := hub.Subscribe(resource, date)
	defer hub.Unsubscribe(sub)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Broadcast(resource, date, []byte("frame"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a slow subscriber")
	}
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	hub := dispatch.NewHub()
	resource := uuid.New()
	date := booking.NewDate(2025, time.March, 10)

	sub := hub.Subscribe(resource, date)
	hub.Unsubscribe(sub)

	_, open := <-sub.C
	assert.False(t, open)
	assert.Equal(t, 0, hub.SubscriberCount(resource, date))
}
