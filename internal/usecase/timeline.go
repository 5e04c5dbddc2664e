package usecase

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"trimline/internal/dispatch"
	"trimline/internal/domain/booking"
	"trimline/internal/domain/schedule"
	"trimline/internal/notification"
	"trimline/internal/pkg/clock"
	"trimline/internal/pkg/errs"
)

type TimelineUseCase interface {
	GetTimeline(ctx context.Context, resourceID uuid.UUID, date booking.Date) (*TimelineView, error)
	FindGaps(ctx context.Context, resourceID uuid.UUID, date booking.Date, durationMinutes int) (*GapsView, error)
	ApplyDelay(ctx context.Context, resourceID uuid.UUID, date booking.Date, delayMinutes int) (*DelayView, error)
}

type timelineUseCaseImpl struct {
	repo      BookingRepository
	rules     schedule.DayRules
	publisher RecomputePublisher
	notifier  Notifier
	clock     clock.Clock
}

func NewTimelineUseCase(
	repo BookingRepository,
	rules schedule.DayRules,
	publisher RecomputePublisher,
	notifier Notifier,
	clock clock.Clock,
) TimelineUseCase {
	return &timelineUseCaseImpl{
		repo:      repo,
		rules:     rules,
		publisher: publisher,
		notifier:  notifier,
		clock:     clock,
	}
}

// NewTimelineRebuild is the dispatcher's recompute callback: a fresh build of
// the resource-day, marshaled in the same shape GetTimeline serves. It takes
// the repository rather than the full usecase so the dispatcher does not
// depend on its own publisher.
func NewTimelineRebuild(repo BookingRepository, rules schedule.DayRules, clk clock.Clock) dispatch.RebuildFunc {
	uc := &timelineUseCaseImpl{repo: repo, rules: rules, clock: clk}
	return func(ctx context.Context, resourceID uuid.UUID, date booking.Date) ([]byte, error) {
		view, err := uc.GetTimeline(ctx, resourceID, date)
		if err != nil {
			return nil, err
		}
		return json.Marshal(view)
	}
}

func (u *timelineUseCaseImpl) GetTimeline(ctx context.Context, resourceID uuid.UUID, date booking.Date) (*TimelineView, error) {
	active, err := u.repo.FindActive(ctx, resourceID, date)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	now := u.clock.Now()
	entries := schedule.Build(u.rules, active, now.Hour()*60+now.Minute())

	views := make([]TimelineEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, newTimelineEntryView(e))
	}
	return &TimelineView{
		ResourceID:  resourceID,
		Date:        date.String(),
		GeneratedAt: now,
		Entries:     views,
	}, nil
}

func (u *timelineUseCaseImpl) FindGaps(ctx context.Context, resourceID uuid.UUID, date booking.Date, durationMinutes int) (*GapsView, error) {
	if durationMinutes <= 0 {
		durationMinutes = u.rules.DefaultDuration
	}

	active, err := u.repo.FindActive(ctx, resourceID, date)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	now := u.clock.Now()
	candidates := schedule.FindGaps(u.rules, resourceID, uuid.Nil, date, active,
		durationMinutes, now, now.Hour()*60+now.Minute())

	views := make([]GapCandidateView, 0, len(candidates))
	for _, c := range candidates {
		views = append(views, newGapCandidateView(c))
	}
	return &GapsView{
		ResourceID:      resourceID,
		Date:            date.String(),
		DurationMinutes: durationMinutes,
		Candidates:      views,
	}, nil
}

// ApplyDelay propagates an observed delay across the rest of the day.
// Scheduled bookings get their stored start times moved; queue entries derive
// their slots at build time, so for them the shift only changes the next
// broadcast. Affected customers are notified once each per booking.
func (u *timelineUseCaseImpl) ApplyDelay(ctx context.Context, resourceID uuid.UUID, date booking.Date, delayMinutes int) (*DelayView, error) {
	if delayMinutes <= 0 {
		return nil, errs.Mark(errs.New("delay must be positive"), errs.ErrValidation)
	}

	active, err := u.repo.FindActive(ctx, resourceID, date)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	now := u.clock.Now()
	shifts := schedule.PropagateDelay(u.rules, active, delayMinutes, now.Hour()*60+now.Minute())

	byID := make(map[uuid.UUID]*booking.Booking, len(active))
	for _, b := range active {
		byID[b.ID()] = b
	}

	var scheduledIDs []uuid.UUID
	for _, s := range shifts {
		if b, ok := byID[s.BookingID]; ok && b.Mode() == booking.ModeScheduled {
			scheduledIDs = append(scheduledIDs, s.BookingID)
		}
	}
	if len(scheduledIDs) > 0 {
		if err := u.repo.ShiftFixedTimes(ctx, scheduledIDs, delayMinutes); err != nil {
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
	}

	views := make([]ShiftView, 0, len(shifts))
	for _, s := range shifts {
		views = append(views, ShiftView{
			BookingID: s.BookingID,
			OldStart:  schedule.FormatMinute(s.OldStart),
			NewStart:  schedule.FormatMinute(s.NewStart),
		})
		if b, ok := byID[s.BookingID]; ok {
			u.notifier.Notify(ctx, b.CustomerID(), notification.Message{
				Kind:      notification.KindDelayApplied,
				Title:     "Schedule running late",
				Body:      "Your slot moved to " + schedule.FormatMinute(s.NewStart) + ".",
				BookingID: b.ID(),
				Date:      date.String(),
			})
		}
	}

	u.publisher.Publish(ctx, dispatch.Event{
		ResourceID: resourceID,
		Date:       date,
		Trigger:    dispatch.TriggerDelay,
	})

	return &DelayView{
		ResourceID:   resourceID,
		Date:         date.String(),
		DelayMinutes: delayMinutes,
		Shifts:       views,
	}, nil
}
