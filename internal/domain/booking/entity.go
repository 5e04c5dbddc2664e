package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidMode          = errors.New("mode must be scheduled or queue")
	ErrInvalidPriority      = errors.New("invalid priority")
	ErrFixedTimeRequired    = errors.New("scheduled booking requires a fixed time")
	ErrFixedTimeForbidden   = errors.New("queue booking must not carry a fixed time")
	ErrPositionRequired     = errors.New("queue booking requires a queue position")
	ErrPositionForbidden    = errors.New("scheduled booking must not carry a queue position")
	ErrNonPositiveDuration  = errors.New("duration must be positive")
	ErrNonPositivePosition  = errors.New("queue position must be positive")
	ErrDateRequired         = errors.New("date is required")
	ErrFixedTimeOutOfRange  = errors.New("fixed time must fall within the day")
)

// Booking is the record the engine operates on. Exactly one of fixedTime /
// queuePosition is populated, determined by mode; that invariant is enforced
// here at construction and nowhere re-inferred.
type Booking struct {
	id              uuid.UUID
	resourceID      uuid.UUID
	customerID      uuid.UUID
	date            Date
	mode            Mode
	fixedTime       *int // minutes from midnight, scheduled mode only
	queuePosition   *int // 1-based, queue mode only
	priority        Priority
	durationMinutes int
	status          Status
	createdAt       time.Time
	updatedAt       time.Time
}

type NewBookingParams struct {
	ResourceID      uuid.UUID
	CustomerID      uuid.UUID
	Date            Date
	Mode            Mode
	FixedTime       *int
	QueuePosition   *int
	Priority        Priority
	DurationMinutes int
	Now             time.Time
}

func NewBooking(p NewBookingParams) (*Booking, error) {
	if err := validate(p.Mode, p.FixedTime, p.QueuePosition, p.Priority, p.DurationMinutes, p.Date); err != nil {
		return nil, err
	}

	status := StatusPending
	if p.Mode == ModeScheduled {
		status = StatusScheduled
	}

	return &Booking{
		id:              uuid.New(),
		resourceID:      p.ResourceID,
		customerID:      p.CustomerID,
		date:            p.Date,
		mode:            p.Mode,
		fixedTime:       p.FixedTime,
		queuePosition:   p.QueuePosition,
		priority:        p.Priority,
		durationMinutes: p.DurationMinutes,
		status:          status,
		createdAt:       p.Now,
		updatedAt:       p.Now,
	}, nil
}

// Reconstruct rebuilds an entity from persisted state without re-running
// creation-time defaults.
func Reconstruct(
	id, resourceID, customerID uuid.UUID,
	date Date,
	mode Mode,
	fixedTime, queuePosition *int,
	priority Priority,
	durationMinutes int,
	status Status,
	createdAt, updatedAt time.Time,
) (*Booking, error) {
	if err := validate(mode, fixedTime, queuePosition, priority, durationMinutes, date); err != nil {
		return nil, err
	}
	return &Booking{
		id:              id,
		resourceID:      resourceID,
		customerID:      customerID,
		date:            date,
		mode:            mode,
		fixedTime:       fixedTime,
		queuePosition:   queuePosition,
		priority:        priority,
		durationMinutes: durationMinutes,
		status:          status,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}, nil
}

func validate(mode Mode, fixedTime, queuePosition *int, priority Priority, duration int, date Date) error {
	if !mode.IsValid() {
		return ErrInvalidMode
	}
	if !priority.IsValid() {
		return ErrInvalidPriority
	}
	if duration <= 0 {
		return ErrNonPositiveDuration
	}
	if date.IsZero() {
		return ErrDateRequired
	}
	switch mode {
	case ModeScheduled:
		if fixedTime == nil {
			return ErrFixedTimeRequired
		}
		if queuePosition != nil {
			return ErrPositionForbidden
		}
		if *fixedTime < 0 || *fixedTime >= 24*60 {
			return ErrFixedTimeOutOfRange
		}
	case ModeQueue:
		if queuePosition == nil {
			return ErrPositionRequired
		}
		if fixedTime != nil {
			return ErrFixedTimeForbidden
		}
		if *queuePosition < 1 {
			return ErrNonPositivePosition
		}
	}
	return nil
}

func (b *Booking) ID() uuid.UUID         { return b.id }
func (b *Booking) ResourceID() uuid.UUID { return b.resourceID }
func (b *Booking) CustomerID() uuid.UUID { return b.customerID }
func (b *Booking) Date() Date            { return b.date }
func (b *Booking) Mode() Mode            { return b.mode }
func (b *Booking) Priority() Priority    { return b.priority }
func (b *Booking) DurationMinutes() int  { return b.durationMinutes }
func (b *Booking) Status() Status        { return b.status }
func (b *Booking) CreatedAt() time.Time  { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time  { return b.updatedAt }

// FixedTime returns the minute-of-day for scheduled bookings; ok is false for
// queue bookings.
func (b *Booking) FixedTime() (int, bool) {
	if b.fixedTime == nil {
		return 0, false
	}
	return *b.fixedTime, true
}

// QueuePosition returns the 1-based position for queue bookings; ok is false
// for scheduled bookings.
func (b *Booking) QueuePosition() (int, bool) {
	if b.queuePosition == nil {
		return 0, false
	}
	return *b.queuePosition, true
}

func (b *Booking) IsActive() bool {
	return b.status.IsActive()
}

// Transition moves the booking through its status state machine.
func (b *Booking) Transition(to Status, now time.Time) error {
	if !to.IsValid() {
		return errors.New("unknown status: " + to.String())
	}
	if b.status.IsTerminal() {
		return errors.New(b.status.String() + " is terminal")
	}
	if !b.status.CanTransition(to) {
		return errors.New("cannot transition from " + b.status.String() + " to " + to.String())
	}
	b.status = to
	b.updatedAt = now
	return nil
}
