package schedule

import (
	"github.com/google/uuid"

	"trimline/internal/domain/booking"
)

// Shift records one booking whose projected start moved because of an
// observed delay. The caller persists the new times and notifies the
// affected customer; the propagator itself has no side effects.
type Shift struct {
	BookingID uuid.UUID
	OldStart  int
	NewStart  int
}

// PropagateDelay rebuilds the timeline and pushes every projected start that
// is still in the future forward by delayMinutes. Entries already ongoing or
// done are never touched, and overflow entries have no time to shift.
func PropagateDelay(rules DayRules, bookings []*booking.Booking, delayMinutes, nowMinute int) []Shift {
	if delayMinutes <= 0 {
		return nil
	}

	entries := Build(rules, bookings, nowMinute)

	var shifts []Shift
	for _, e := range entries {
		if e.IsOverflow {
			continue
		}
		status := e.Booking.Status()
		if status == booking.StatusOngoing || status == booking.StatusDone {
			continue
		}
		if *e.ProjectedStart <= nowMinute {
			continue
		}
		shifts = append(shifts, Shift{
			BookingID: e.Booking.ID(),
			OldStart:  *e.ProjectedStart,
			NewStart:  *e.ProjectedStart + delayMinutes,
		})
	}
	return shifts
}
