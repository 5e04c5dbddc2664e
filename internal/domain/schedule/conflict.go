package schedule

import (
	"trimline/internal/domain/booking"
)

// HasConflict reports whether a proposed fixed-time slot overlaps any active
// scheduled booking. Queue bookings never participate: they have no fixed
// time. Touching intervals do not conflict (half-open comparison).
func HasConflict(bookings []*booking.Booking, proposedStart, proposedDuration int) bool {
	proposed := Interval{Start: proposedStart, End: proposedStart + proposedDuration}

	for _, b := range bookings {
		if !b.IsActive() || b.Mode() != booking.ModeScheduled {
			continue
		}
		fixed, ok := b.FixedTime()
		if !ok {
			continue
		}
		existing := Interval{Start: fixed, End: fixed + b.DurationMinutes()}
		if proposed.Overlaps(existing) {
			return true
		}
	}
	return false
}
