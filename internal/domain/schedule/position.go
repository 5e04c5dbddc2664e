package schedule

import (
	"time"

	"github.com/google/uuid"

	"trimline/internal/domain/booking"
)

// ScheduledPosition is the sentinel the allocator returns for scheduled-mode
// bookings: they always fit the clock, not the queue. Queue positions are
// 1-based, so 0 is unambiguous.
const ScheduledPosition = 0

// Allocation is the allocator's answer for one new or promoted booking.
// When ShiftFrom is positive the caller must atomically increment the
// queuePosition of every active queue booking at or above it before
// persisting the new booking, preserving the dense ranking.
type Allocation struct {
	QueuePosition        int
	EstimatedWaitMinutes int
	ShiftFrom            int
}

// Allocate computes the queue position and projected wait for a booking
// about to be created. Urgent bookings insert near the front; everything
// else appends. The wait estimate sums duration+buffer for every active
// booking served strictly before the new one under the current packing
// policy, with ongoing work excluded (it is already in progress).
func Allocate(
	rules DayRules,
	resourceID, customerID uuid.UUID,
	date booking.Date,
	bookings []*booking.Booking,
	mode booking.Mode,
	priority booking.Priority,
	durationMinutes int,
	now time.Time,
	nowMinute int,
) Allocation {
	if mode == booking.ModeScheduled {
		return Allocation{QueuePosition: ScheduledPosition}
	}

	maxPos := maxQueuePosition(bookings)

	var pos int
	if priority == booking.PriorityUrgent {
		pos = maxPos - 1
		if pos < 1 {
			pos = 1
		}
	} else {
		pos = maxPos + 1
	}

	shiftFrom := 0
	if priority == booking.PriorityUrgent && maxPos >= pos {
		shiftFrom = pos
	}

	wait := estimateWait(rules, resourceID, customerID, date, bookings, pos, priority, durationMinutes, now, nowMinute, shiftFrom)

	return Allocation{
		QueuePosition:        pos,
		EstimatedWaitMinutes: wait,
		ShiftFrom:            shiftFrom,
	}
}

func maxQueuePosition(bookings []*booking.Booking) int {
	maxPos := 0
	for _, b := range bookings {
		if !b.IsActive() || b.Mode() != booking.ModeQueue {
			continue
		}
		if pos, ok := b.QueuePosition(); ok && pos > maxPos {
			maxPos = pos
		}
	}
	return maxPos
}

// estimateWait builds a hypothetical timeline containing the new booking
// (with the position shift applied to copies of the existing set) and sums
// duration+buffer over everything placed before it.
func estimateWait(
	rules DayRules,
	resourceID, customerID uuid.UUID,
	date booking.Date,
	bookings []*booking.Booking,
	pos int,
	priority booking.Priority,
	durationMinutes int,
	now time.Time,
	nowMinute int,
	shiftFrom int,
) int {
	if durationMinutes <= 0 {
		durationMinutes = rules.DefaultDuration
	}

	hypothetical := make([]*booking.Booking, 0, len(bookings)+1)
	for _, b := range bookings {
		if !b.IsActive() {
			continue
		}
		if p, ok := b.QueuePosition(); ok && shiftFrom > 0 && p >= shiftFrom {
			shifted := p + 1
			copyB, err := booking.Reconstruct(
				b.ID(), b.ResourceID(), b.CustomerID(), b.Date(), b.Mode(),
				nil, &shifted, b.Priority(), b.DurationMinutes(), b.Status(),
				b.CreatedAt(), b.UpdatedAt(),
			)
			if err == nil {
				hypothetical = append(hypothetical, copyB)
				continue
			}
		}
		hypothetical = append(hypothetical, b)
	}

	newID := uuid.New()
	probe, err := booking.Reconstruct(
		newID, resourceID, customerID, date, booking.ModeQueue,
		nil, &pos, priority, durationMinutes, booking.StatusPending,
		now, now,
	)
	if err != nil {
		return 0
	}
	hypothetical = append(hypothetical, probe)

	entries := Build(rules, hypothetical, nowMinute)

	wait := 0
	for _, e := range entries {
		if e.Booking.ID() == newID {
			break
		}
		if e.IsOverflow || e.Booking.Status() == booking.StatusOngoing {
			continue
		}
		wait += e.Booking.DurationMinutes() + rules.BufferMinutes
	}
	return wait
}
