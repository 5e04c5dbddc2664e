package usecase

import (
	"context"

	"github.com/google/uuid"

	"trimline/internal/dispatch"
	"trimline/internal/domain/booking"
	"trimline/internal/domain/schedule"
	reqdto "trimline/internal/handler/dto/request"
	"trimline/internal/infra"
	"trimline/internal/notification"
	"trimline/internal/pkg/clock"
	"trimline/internal/pkg/errs"
	"trimline/internal/telemetry"
)

// Ports implemented by internal/infra, internal/dispatch and
// internal/notification.

type BookingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	FindActive(ctx context.Context, resourceID uuid.UUID, date booking.Date) ([]*booking.Booking, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID, date booking.Date) ([]*booking.Booking, error)
	Create(ctx context.Context, b *booking.Booking) error
	CreateShifting(ctx context.Context, b *booking.Booking, shiftFrom int) error
	UpdateStatus(ctx context.Context, b *booking.Booking) error
	RenumberQueue(ctx context.Context, resourceID uuid.UUID, date booking.Date) error
	ShiftFixedTimes(ctx context.Context, ids []uuid.UUID, delta int) error
}

type RecomputePublisher interface {
	Publish(ctx context.Context, ev dispatch.Event)
}

type Notifier interface {
	Notify(ctx context.Context, customerID uuid.UUID, msg notification.Message)
}

// ConflictError carries gap suggestions alongside the conflict sentinel so
// the handler can return them in the 409 body.
type ConflictError struct {
	Suggestions []GapCandidateView
}

func (e *ConflictError) Error() string { return errs.ErrConflict.Error() }
func (e *ConflictError) Unwrap() error { return errs.ErrConflict }

type BookingUseCase interface {
	CreateBooking(ctx context.Context, req reqdto.CreateBookingRequest, customerID uuid.UUID) (*BookingView, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*BookingView, error)
	GetCustomerBookings(ctx context.Context, customerID uuid.UUID, date booking.Date) ([]BookingView, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status booking.Status) (*BookingView, error)
}

type bookingUseCaseImpl struct {
	repo      BookingRepository
	rules     schedule.DayRules
	publisher RecomputePublisher
	notifier  Notifier
	clock     clock.Clock
}

func NewBookingUseCase(
	repo BookingRepository,
	rules schedule.DayRules,
	publisher RecomputePublisher,
	notifier Notifier,
	clock clock.Clock,
) BookingUseCase {
	return &bookingUseCaseImpl{
		repo:      repo,
		rules:     rules,
		publisher: publisher,
		notifier:  notifier,
		clock:     clock,
	}
}

func (u *bookingUseCaseImpl) CreateBooking(
	ctx context.Context,
	req reqdto.CreateBookingRequest,
	customerID uuid.UUID,
) (*BookingView, error) {
	date, err := booking.ParseDate(req.Date)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrValidation)
	}

	mode := booking.Mode(req.Mode)
	priority := booking.PriorityNormal
	if req.Priority != nil {
		priority = booking.Priority(*req.Priority)
	}
	duration := u.rules.DefaultDuration
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	}

	var fixedTime *int
	if req.FixedTime != nil {
		minute, err := schedule.ParseMinute(*req.FixedTime)
		if err != nil {
			return nil, errs.Mark(err, errs.ErrValidation)
		}
		fixedTime = &minute
	}

	active, err := u.repo.FindActive(ctx, req.ResourceID, date)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	now := u.clock.Now()
	nowMinute := now.Hour()*60 + now.Minute()

	var alloc schedule.Allocation
	switch mode {
	case booking.ModeScheduled:
		if fixedTime == nil {
			return nil, errs.Mark(booking.ErrFixedTimeRequired, errs.ErrValidation)
		}
		if schedule.HasConflict(active, *fixedTime, duration) {
			telemetry.ConflictRejects.Inc()
			return nil, &ConflictError{Suggestions: u.gapSuggestions(req.ResourceID, customerID, date, active, duration, nowMinute)}
		}
	case booking.ModeQueue:
		if countActiveQueue(active) >= u.rules.QueueCapacity {
			telemetry.CapacityRejects.Inc()
			return nil, errs.ErrCapacity
		}
		alloc = schedule.Allocate(u.rules, req.ResourceID, customerID, date, active,
			mode, priority, duration, now, nowMinute)
	default:
		return nil, errs.Mark(booking.ErrInvalidMode, errs.ErrValidation)
	}

	var queuePos *int
	if mode == booking.ModeQueue {
		pos := alloc.QueuePosition
		queuePos = &pos
	}

	b, err := booking.NewBooking(booking.NewBookingParams{
		ResourceID:      req.ResourceID,
		CustomerID:      customerID,
		Date:            date,
		Mode:            mode,
		FixedTime:       fixedTime,
		QueuePosition:   queuePos,
		Priority:        priority,
		DurationMinutes: duration,
		Now:             now,
	})
	if err != nil {
		return nil, errs.Mark(err, errs.ErrValidation)
	}

	if alloc.ShiftFrom > 0 {
		err = u.repo.CreateShifting(ctx, b, alloc.ShiftFrom)
	} else {
		err = u.repo.Create(ctx, b)
	}
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	telemetry.BookingsCreated.Inc()
	u.publisher.Publish(ctx, dispatch.Event{
		ResourceID: b.ResourceID(),
		Date:       b.Date(),
		Trigger:    dispatch.TriggerCreated,
		BookingID:  b.ID(),
		CustomerID: b.CustomerID(),
	})
	u.notifier.Notify(ctx, b.CustomerID(), notification.Message{
		Kind:      notification.KindBookingConfirmed,
		Title:     "Booking received",
		Body:      "Your booking for " + b.Date().String() + " is in.",
		BookingID: b.ID(),
		Date:      b.Date().String(),
	})

	view := newBookingView(b)
	if mode == booking.ModeQueue {
		wait := alloc.EstimatedWaitMinutes
		view.EstimatedWaitMinutes = &wait
	}
	return &view, nil
}

func (u *bookingUseCaseImpl) GetBooking(ctx context.Context, id uuid.UUID) (*BookingView, error) {
	b, err := u.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrBookingNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	view := newBookingView(b)
	return &view, nil
}

func (u *bookingUseCaseImpl) GetCustomerBookings(ctx context.Context, customerID uuid.UUID, date booking.Date) ([]BookingView, error) {
	bookings, err := u.repo.FindByCustomer(ctx, customerID, date)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	views := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, newBookingView(b))
	}
	return views, nil
}

func (u *bookingUseCaseImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status booking.Status) (*BookingView, error) {
	b, err := u.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrBookingNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	if err := b.Transition(status, u.clock.Now()); err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidTransition)
	}

	if err := u.repo.UpdateStatus(ctx, b); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrBookingNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	trigger := dispatch.TriggerStatusChanged
	if status == booking.StatusCancelled {
		trigger = dispatch.TriggerCancelled
		// Cancelling a queue entry leaves a hole in the ranking.
		if b.Mode() == booking.ModeQueue {
			if err := u.repo.RenumberQueue(ctx, b.ResourceID(), b.Date()); err != nil {
				return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
		}
		u.notifier.Notify(ctx, b.CustomerID(), notification.Message{
			Kind:      notification.KindBookingCancelled,
			Title:     "Booking cancelled",
			Body:      "Your booking for " + b.Date().String() + " was cancelled.",
			BookingID: b.ID(),
			Date:      b.Date().String(),
		})
	}

	u.publisher.Publish(ctx, dispatch.Event{
		ResourceID: b.ResourceID(),
		Date:       b.Date(),
		Trigger:    trigger,
		BookingID:  b.ID(),
		CustomerID: b.CustomerID(),
	})

	view := newBookingView(b)
	return &view, nil
}

func (u *bookingUseCaseImpl) gapSuggestions(
	resourceID, customerID uuid.UUID,
	date booking.Date,
	active []*booking.Booking,
	duration, nowMinute int,
) []GapCandidateView {
	candidates := schedule.FindGaps(u.rules, resourceID, customerID, date, active,
		duration, u.clock.Now(), nowMinute)
	views := make([]GapCandidateView, 0, len(candidates))
	for _, c := range candidates {
		views = append(views, newGapCandidateView(c))
	}
	return views
}

func countActiveQueue(bookings []*booking.Booking) int {
	n := 0
	for _, b := range bookings {
		if b.IsActive() && b.Mode() == booking.ModeQueue {
			n++
		}
	}
	return n
}
