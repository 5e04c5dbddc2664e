//go:build unit

package schedule_test

import (
	"testing"
	"time"

	"trimline/internal/domain/booking"
	"trimline/internal/domain/schedule"
	"trimline/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findGaps(bookings []*booking.Booking, required int) []schedule.Candidate {
	return schedule.FindGaps(
		testRules(),
		uuid.New(), uuid.New(),
		booking.NewDate(2025, time.March, 10),
		bookings,
		required,
		time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC),
		8*60,
	)
}

func TestFindGaps_AroundSingleAppointment(t *testing.T) {
	// Day holds only a 09:00-09:30 appointment; a 40-min request fits
	// before it, right after it, and in the afternoon.
	bookings := []*booking.Booking{
		builder.NewBookingBuilder().Scheduled(9 * 60).WithDuration(30).MustBuild(),
	}

	candidates := findGaps(bookings, 40)
	require.NotEmpty(t, candidates)
	assert.LessOrEqual(t, len(candidates), 5)

	starts := map[int]bool{}
	for _, c := range candidates {
		if c.JoinQueue {
			continue
		}
		starts[c.Start] = true
	}
	assert.True(t, starts[9*60+30], "expected the 09:30-10:10 slot after the appointment")
	assert.True(t, starts[8*60], "expected the morning slot before the appointment")
	assert.True(t, starts[13*60], "expected the after-lunch slot")
}

func TestFindGaps_CandidatesAreValidAndRanked(t *testing.T) {
	bookings := []*booking.Booking{
		builder.NewBookingBuilder().Scheduled(9 * 60).WithDuration(30).MustBuild(),
		builder.NewBookingBuilder().Scheduled(10 * 60).WithDuration(45).MustBuild(),
	}
	blocked := testRules().Blocked

	candidates := findGaps(bookings, 40)
	require.NotEmpty(t, candidates)

	for i, c := range candidates {
		if c.JoinQueue {
			continue
		}
		assert.Equal(t, 40, c.End-c.Start, "candidate slot must cover the request")
		assert.GreaterOrEqual(t, c.GapMinutes, 40, "gap must hold the request")

		slot := schedule.Interval{Start: c.Start, End: c.End}
		assert.False(t, slot.Overlaps(blocked), "candidate %d overlaps the blocked interval", i)

		if i > 0 && !candidates[i-1].JoinQueue {
			assert.GreaterOrEqual(t, candidates[i-1].Efficiency, c.Efficiency,
				"candidates must rank best first")
		}
	}
}

func TestFindGaps_QueueJoinAlwaysLast(t *testing.T) {
	bookings := []*booking.Booking{
		builder.NewBookingBuilder().Scheduled(9 * 60).WithDuration(30).MustBuild(),
		builder.NewBookingBuilder().Queued(1).WithDuration(30).MustBuild(),
	}

	candidates := findGaps(bookings, 30)
	require.NotEmpty(t, candidates)

	last := candidates[len(candidates)-1]
	assert.True(t, last.JoinQueue)
	assert.Equal(t, 2, last.QueuePosition)
	for _, c := range candidates[:len(candidates)-1] {
		assert.False(t, c.JoinQueue)
		assert.Greater(t, c.Efficiency, last.Efficiency)
	}
}

func TestFindGaps_NoRoomLeavesOnlyQueueJoin(t *testing.T) {
	// Morning fully booked, afternoon too short for a three-hour request.
	bookings := []*booking.Booking{
		builder.NewBookingBuilder().Scheduled(8 * 60).WithDuration(240).MustBuild(),
		builder.NewBookingBuilder().Scheduled(13 * 60).WithDuration(150).MustBuild(),
	}

	candidates := findGaps(bookings, 180)
	require.Len(t, candidates, 1)
	assert.True(t, candidates[0].JoinQueue)
}

func TestFindGaps_TightFitRanksAboveLooseFit(t *testing.T) {
	// 60-min gap at 09:00-10:00 vs the open afternoon: for a 60-min
	// request the exact fit must win.
	bookings := []*booking.Booking{
		builder.NewBookingBuilder().Scheduled(9 * 60).WithDuration(60).MustBuild(),
		builder.NewBookingBuilder().Scheduled(11 * 60).WithDuration(60).MustBuild(),
	}

	candidates := findGaps(bookings, 60)
	require.NotEmpty(t, candidates)
	assert.False(t, candidates[0].JoinQueue)
	assert.Equal(t, 8*60, candidates[0].Start)
	assert.Equal(t, 60, candidates[0].GapMinutes)
	assert.InDelta(t, 1.0, candidates[0].Efficiency, 1e-9)
}
