//go:build unit

package schedule_test

import (
	"testing"

	"trimline/internal/domain/booking"
	"trimline/internal/domain/schedule"
	"trimline/tests/common/builder"

	"github.com/stretchr/testify/assert"
)

func TestHasConflict(t *testing.T) {
	existing := []*booking.Booking{
		builder.NewBookingBuilder().Scheduled(10 * 60).WithDuration(60).MustBuild(), // 10:00-11:00
	}

	testCases := []struct {
		name     string
		start    int
		duration int
		want     bool
	}{
		{name: "identical interval", start: 10 * 60, duration: 60, want: true},
		{name: "overlaps tail", start: 10*60 + 30, duration: 60, want: true},
		{name: "overlaps head", start: 9*60 + 30, duration: 60, want: true},
		{name: "fully contains", start: 9 * 60, duration: 180, want: true},
		{name: "fully contained", start: 10*60 + 15, duration: 15, want: true},
		{name: "touches end", start: 11 * 60, duration: 30, want: false},
		{name: "touches start", start: 9 * 60, duration: 60, want: false},
		{name: "disjoint before", start: 8 * 60, duration: 30, want: false},
		{name: "disjoint after", start: 14 * 60, duration: 30, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, schedule.HasConflict(existing, tc.start, tc.duration))
		})
	}
}

func TestHasConflict_Symmetric(t *testing.T) {
	intervals := []struct{ start, duration int }{
		{9 * 60, 30},
		{9*60 + 15, 45},
		{10 * 60, 60},
		{11 * 60, 30},
		{16*60 + 30, 30},
	}

	for _, a := range intervals {
		for _, b := range intervals {
			asBooking := []*booking.Booking{
				builder.NewBookingBuilder().Scheduled(b.start).WithDuration(b.duration).MustBuild(),
			}
			forward := schedule.HasConflict(asBooking, a.start, a.duration)

			other := []*booking.Booking{
				builder.NewBookingBuilder().Scheduled(a.start).WithDuration(a.duration).MustBuild(),
			}
			backward := schedule.HasConflict(other, b.start, b.duration)

			assert.Equal(t, forward, backward,
				"conflict(%v,%v) != conflict(%v,%v)", a, b, b, a)
		}
	}
}

func TestHasConflict_IgnoresQueueAndInactive(t *testing.T) {
	bookings := []*booking.Booking{
		builder.NewBookingBuilder().Queued(1).WithDuration(120).MustBuild(),
		builder.NewBookingBuilder().Scheduled(10 * 60).WithDuration(60).
			WithStatus(booking.StatusCancelled).MustBuild(),
	}

	assert.False(t, schedule.HasConflict(bookings, 10*60, 60))
}
