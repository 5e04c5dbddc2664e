//go:build unit

package notification

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu      sync.Mutex
	subs    map[uuid.UUID][]Subscription
	deleted []string
}

func (f *fakeSource) FindByCustomer(_ context.Context, customerID uuid.UUID) ([]Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[customerID], nil
}

func (f *fakeSource) DeleteByEndpoint(_ context.Context, endpoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, endpoint)
	return nil
}

type fakeSender struct {
	mu     sync.Mutex
	sent   []string // endpoints
	status int
}

func (f *fakeSender) Send(_ []byte, sub *webpush.Subscription, _ *webpush.Options) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sub.Endpoint)
	status := f.status
	if status == 0 {
		status = http.StatusCreated
	}
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(""))}, nil
}

func (f *fakeSender) endpoints() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition never met")
}

func TestNotifier_DeliversToEveryEndpoint(t *testing.T) {
	customer := uuid.New()
	source := &fakeSource{subs: map[uuid.UUID][]Subscription{
		customer: {
			{CustomerID: customer, Endpoint: "https://push/one"},
			{CustomerID: customer, Endpoint: "https://push/two"},
		},
	}}
	sender := &fakeSender{}

	n := NewNotifier(source, &webpush.Options{}, 2, testLogger()).WithSender(sender)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	n.Start(ctx)

	n.Notify(ctx, customer, Message{Kind: KindDelayApplied, BookingID: uuid.New()})

	waitFor(t, func() bool { return len(sender.endpoints()) == 2 })
	assert.ElementsMatch(t, []string{"https://push/one", "https://push/two"}, sender.endpoints())
}

func TestNotifier_DedupesWithinWindow(t *testing.T) {
	customer := uuid.New()
	bookingID := uuid.New()
	source := &fakeSource{subs: map[uuid.UUID][]Subscription{
		customer: {{CustomerID: customer, Endpoint: "https://push/one"}},
	}}
	sender := &fakeSender{}

	n := NewNotifier(source, &webpush.Options{}, 1, testLogger()).WithSender(sender)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	n.Start(ctx)

	msg := Message{Kind: KindPositionChanged, BookingID: bookingID}
	n.Notify(ctx, customer, msg)
	n.Notify(ctx, customer, msg)
	n.Notify(ctx, customer, msg)

	waitFor(t, func() bool { return len(sender.endpoints()) >= 1 })
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, sender.endpoints(), 1, "repeat of same change must be suppressed")

	// A different kind for the same booking is a different change.
	n.Notify(ctx, customer, Message{Kind: KindBookingCancelled, BookingID: bookingID})
	waitFor(t, func() bool { return len(sender.endpoints()) == 2 })
}

func TestNotifier_PrunesGoneSubscriptions(t *testing.T) {
	customer := uuid.New()
	source := &fakeSource{subs: map[uuid.UUID][]Subscription{
		customer: {{CustomerID: customer, Endpoint: "https://push/stale"}},
	}}
	sender := &fakeSender{status: http.StatusGone}

	n := NewNotifier(source, &webpush.Options{}, 1, testLogger()).WithSender(sender)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	n.Start(ctx)

	n.Notify(ctx, customer, Message{Kind: KindUpNext, BookingID: uuid.New()})

	waitFor(t, func() bool {
		source.mu.Lock()
		defer source.mu.Unlock()
		return len(source.deleted) == 1
	})
	require.Equal(t, "https://push/stale", source.deleted[0])
}
