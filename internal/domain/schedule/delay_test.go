//go:build unit

package schedule_test

import (
	"testing"

	"trimline/internal/domain/booking"
	"trimline/internal/domain/schedule"
	"trimline/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropagateDelay_ShiftsOnlyFutureEntries(t *testing.T) {
	// One cut underway, two fixed appointments later in the day: a 20-min
	// delay moves exactly the two future starts.
	ongoing := builder.NewBookingBuilder().Queued(1).WithDuration(30).
		WithStatus(booking.StatusOngoing).MustBuild()
	first := builder.NewBookingBuilder().Scheduled(10 * 60).WithDuration(30).MustBuild()
	second := builder.NewBookingBuilder().Scheduled(11*60 + 40).WithDuration(30).MustBuild()

	bookings := []*booking.Booking{ongoing, first, second}

	shifts := schedule.PropagateDelay(testRules(), bookings, 20, 8*60+20)
	require.Len(t, shifts, 2)

	byID := map[string]schedule.Shift{}
	for _, s := range shifts {
		byID[s.BookingID.String()] = s
	}

	assert.NotContains(t, byID, ongoing.ID().String())

	f := byID[first.ID().String()]
	assert.Equal(t, 10*60, f.OldStart)
	assert.Equal(t, 10*60+20, f.NewStart)

	s := byID[second.ID().String()]
	assert.Equal(t, 11*60+40, s.OldStart)
	assert.Equal(t, 12*60, s.NewStart)
}

func TestPropagateDelay_SkipsStartedAndOverflow(t *testing.T) {
	// An entry whose projected slot already began does not move even if it
	// has not been marked ongoing yet.
	begun := builder.NewBookingBuilder().Queued(1).WithDuration(60).MustBuild()
	overflow := builder.NewBookingBuilder().Queued(2).WithDuration(600).MustBuild()

	shifts := schedule.PropagateDelay(testRules(), []*booking.Booking{begun, overflow}, 15, 8*60+30)
	assert.Empty(t, shifts)
}

func TestPropagateDelay_NonPositiveDelayIsNoop(t *testing.T) {
	b := builder.NewBookingBuilder().Scheduled(10 * 60).WithDuration(30).MustBuild()

	assert.Nil(t, schedule.PropagateDelay(testRules(), []*booking.Booking{b}, 0, 8*60))
	assert.Nil(t, schedule.PropagateDelay(testRules(), []*booking.Booking{b}, -5, 8*60))
}
