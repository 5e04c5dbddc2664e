package notification

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"trimline/internal/telemetry"
)

// Kind selects the message template for a push.
type Kind string

const (
	KindBookingConfirmed Kind = "booking_confirmed"
	KindBookingCancelled Kind = "booking_cancelled"
	KindDelayApplied     Kind = "delay_applied"
	KindPositionChanged  Kind = "position_changed"
	KindUpNext           Kind = "up_next"
)

// Message is the JSON body delivered to the push endpoint.
type Message struct {
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	BookingID uuid.UUID `json:"bookingId"`
	Date      string    `json:"date"`
}

// Subscription is one browser push endpoint registered by a customer.
type Subscription struct {
	CustomerID uuid.UUID
	Endpoint   string
	P256DH     string
	Auth       string
}

// Sender abstracts the webpush transport so tests can intercept sends.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

type webPushSender struct{}

func (webPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// SubscriptionSource loads a customer's registered push endpoints and prunes
// the ones the push service reports gone.
type SubscriptionSource interface {
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]Subscription, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) error
}

const (
	dedupeWindow = 10 * time.Minute
	jobQueueCap  = 64
)

type job struct {
	customerID uuid.UUID
	msg        Message
}

// Notifier delivers web pushes through a small worker pool, suppressing
// repeats of the same (customer, booking, kind) within the dedupe window.
type Notifier struct {
	source  SubscriptionSource
	sender  Sender
	options *webpush.Options
	dedupe  *gocache.Cache
	logger  *slog.Logger
	workers int
	jobs    chan job
}

func NewNotifier(source SubscriptionSource, options *webpush.Options, workers int, logger *slog.Logger) *Notifier {
	if workers < 1 {
		workers = 1
	}
	return &Notifier{
		source:  source,
		sender:  webPushSender{},
		options: options,
		dedupe:  gocache.New(dedupeWindow, 2*dedupeWindow),
		logger:  logger,
		workers: workers,
		jobs:    make(chan job, jobQueueCap),
	}
}

// WithSender swaps the transport; test hook.
func (n *Notifier) WithSender(s Sender) *Notifier {
	n.sender = s
	return n
}

func (n *Notifier) Start(ctx context.Context) {
	for i := 0; i < n.workers; i++ {
		go n.worker(ctx)
	}
}

// Notify enqueues a push for the customer. At most one delivery per
// (customer, booking, kind) inside the dedupe window; further calls are
// dropped silently. Never blocks the mutation path: if the queue is full the
// push is skipped with a warning.
func (n *Notifier) Notify(ctx context.Context, customerID uuid.UUID, msg Message) {
	key := customerID.String() + "|" + msg.BookingID.String() + "|" + string(msg.Kind)
	if _, seen := n.dedupe.Get(key); seen {
		telemetry.NotificationsDeduped.Inc()
		return
	}
	n.dedupe.Set(key, struct{}{}, dedupeWindow)

	select {
	case n.jobs <- job{customerID: customerID, msg: msg}:
	default:
		n.logger.Warn("push queue full, dropping notification",
			"customer_id", customerID, "kind", string(msg.Kind))
	}
}

func (n *Notifier) worker(ctx context.Context) {
	for {
		select {
		case j := <-n.jobs:
			n.deliver(ctx, j)
		case <-ctx.Done():
			return
		}
	}
}

func (n *Notifier) deliver(ctx context.Context, j job) {
	subs, err := n.source.FindByCustomer(ctx, j.customerID)
	if err != nil {
		n.logger.Error("failed to load push subscriptions",
			"customer_id", j.customerID, "error", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	payload, err := json.Marshal(j.msg)
	if err != nil {
		n.logger.Error("failed to marshal push payload", "error", err)
		return
	}

	for _, sub := range subs {
		n.send(ctx, sub, payload)
	}
}

func (n *Notifier) send(ctx context.Context, sub Subscription, payload []byte) {
	resp, err := n.sender.Send(payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}, n.options)
	if err != nil {
		telemetry.NotificationsFailed.Inc()
		n.logger.Error("push send failed", "endpoint", sub.Endpoint, "error", err)
		return
	}
	defer resp.Body.Close()

	// 410 Gone means the browser dropped the subscription.
	if resp.StatusCode == http.StatusGone {
		if err := n.source.DeleteByEndpoint(ctx, sub.Endpoint); err != nil {
			n.logger.Error("failed to prune expired subscription",
				"endpoint", sub.Endpoint, "error", err)
		}
		return
	}

	telemetry.NotificationsSent.Inc()
}
