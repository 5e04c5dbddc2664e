package builder

import (
	"time"

	"github.com/google/uuid"

	"trimline/internal/domain/booking"
)

// BookingBuilder assembles valid Booking entities for tests, with fluent
// overrides for the field under test.
type BookingBuilder struct {
	id              uuid.UUID
	resourceID      uuid.UUID
	customerID      uuid.UUID
	date            booking.Date
	mode            booking.Mode
	fixedTime       *int
	queuePosition   *int
	priority        booking.Priority
	durationMinutes int
	status          booking.Status
	createdAt       time.Time
}

func NewBookingBuilder() *BookingBuilder {
	pos := 1
	return &BookingBuilder{
		id:              uuid.New(),
		resourceID:      uuid.New(),
		customerID:      uuid.New(),
		date:            booking.NewDate(2025, time.March, 10),
		mode:            booking.ModeQueue,
		queuePosition:   &pos,
		priority:        booking.PriorityNormal,
		durationMinutes: 30,
		status:          booking.StatusPending,
		createdAt:       time.Date(2025, time.March, 10, 7, 0, 0, 0, time.UTC),
	}
}

func (b *BookingBuilder) WithID(id uuid.UUID) *BookingBuilder {
	b.id = id
	return b
}

func (b *BookingBuilder) WithResourceID(id uuid.UUID) *BookingBuilder {
	b.resourceID = id
	return b
}

func (b *BookingBuilder) WithCustomerID(id uuid.UUID) *BookingBuilder {
	b.customerID = id
	return b
}

func (b *BookingBuilder) WithDate(date booking.Date) *BookingBuilder {
	b.date = date
	return b
}

// Scheduled switches the builder to scheduled mode at the given minute of
// day, clearing the queue position.
func (b *BookingBuilder) Scheduled(fixedTime int) *BookingBuilder {
	b.mode = booking.ModeScheduled
	b.fixedTime = &fixedTime
	b.queuePosition = nil
	b.status = booking.StatusScheduled
	return b
}

// Queued switches the builder to queue mode at the given position, clearing
// the fixed time.
func (b *BookingBuilder) Queued(position int) *BookingBuilder {
	b.mode = booking.ModeQueue
	b.queuePosition = &position
	b.fixedTime = nil
	return b
}

func (b *BookingBuilder) WithMode(mode booking.Mode) *BookingBuilder {
	b.mode = mode
	return b
}

func (b *BookingBuilder) WithFixedTime(fixedTime *int) *BookingBuilder {
	b.fixedTime = fixedTime
	return b
}

func (b *BookingBuilder) WithQueuePosition(position *int) *BookingBuilder {
	b.queuePosition = position
	return b
}

func (b *BookingBuilder) WithPriority(priority booking.Priority) *BookingBuilder {
	b.priority = priority
	return b
}

func (b *BookingBuilder) WithDuration(minutes int) *BookingBuilder {
	b.durationMinutes = minutes
	return b
}

func (b *BookingBuilder) WithStatus(status booking.Status) *BookingBuilder {
	b.status = status
	return b
}

func (b *BookingBuilder) WithCreatedAt(t time.Time) *BookingBuilder {
	b.createdAt = t
	return b
}

func (b *BookingBuilder) BuildDomain() (*booking.Booking, error) {
	return booking.Reconstruct(
		b.id, b.resourceID, b.customerID, b.date, b.mode,
		b.fixedTime, b.queuePosition, b.priority, b.durationMinutes,
		b.status, b.createdAt, b.createdAt,
	)
}

// MustBuild panics on validation failure; for tests that construct known
// valid bookings inline.
func (b *BookingBuilder) MustBuild() *booking.Booking {
	bk, err := b.BuildDomain()
	if err != nil {
		panic(err)
	}
	return bk
}
