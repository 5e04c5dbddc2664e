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
)

func allocate(bookings []*booking.Booking, mode booking.Mode, priority booking.Priority) schedule.Allocation {
	return schedule.Allocate(
		testRules(),
		uuid.New(), uuid.New(),
		booking.NewDate(2025, time.March, 10),
		bookings,
		mode, priority, 30,
		time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC),
		8*60,
	)
}

func TestAllocate_ScheduledUsesSentinelPosition(t *testing.T) {
	alloc := allocate(nil, booking.ModeScheduled, booking.PriorityNormal)
	assert.Equal(t, schedule.ScheduledPosition, alloc.QueuePosition)
	assert.Zero(t, alloc.ShiftFrom)
}

func TestAllocate_NormalAppendsToEnd(t *testing.T) {
	bookings := []*booking.Booking{
		builder.NewBookingBuilder().Queued(1).WithDuration(30).MustBuild(),
		builder.NewBookingBuilder().Queued(2).WithDuration(30).MustBuild(),
	}

	alloc := allocate(bookings, booking.ModeQueue, booking.PriorityNormal)
	assert.Equal(t, 3, alloc.QueuePosition)
	assert.Zero(t, alloc.ShiftFrom, "append never displaces holders")
}

func TestAllocate_UrgentInsertsNearFront(t *testing.T) {
	// Two normal holders at positions 1 and 2: the urgent booking takes
	// position 1 and the allocator instructs a shift from there.
	bookings := []*booking.Booking{
		builder.NewBookingBuilder().Queued(1).WithDuration(30).MustBuild(),
		builder.NewBookingBuilder().Queued(2).WithDuration(30).MustBuild(),
	}

	alloc := allocate(bookings, booking.ModeQueue, booking.PriorityUrgent)
	assert.Equal(t, 1, alloc.QueuePosition)
	assert.Equal(t, 1, alloc.ShiftFrom)
}

func TestAllocate_UrgentIntoEmptyQueue(t *testing.T) {
	alloc := allocate(nil, booking.ModeQueue, booking.PriorityUrgent)
	assert.Equal(t, 1, alloc.QueuePosition)
	assert.Zero(t, alloc.ShiftFrom, "nothing to displace")
	assert.Zero(t, alloc.EstimatedWaitMinutes)
}

func TestAllocate_UrgentIntoLongQueue(t *testing.T) {
	bookings := []*booking.Booking{
		builder.NewBookingBuilder().Queued(1).WithDuration(30).MustBuild(),
		builder.NewBookingBuilder().Queued(2).WithDuration(30).MustBuild(),
		builder.NewBookingBuilder().Queued(3).WithDuration(30).MustBuild(),
	}

	alloc := allocate(bookings, booking.ModeQueue, booking.PriorityUrgent)
	assert.Equal(t, 2, alloc.QueuePosition)
	assert.Equal(t, 2, alloc.ShiftFrom)
}

func TestAllocate_WaitSumsPredecessorsExcludingOngoing(t *testing.T) {
	bookings := []*booking.Booking{
		builder.NewBookingBuilder().Queued(1).WithDuration(45).
			WithStatus(booking.StatusOngoing).MustBuild(),
		builder.NewBookingBuilder().Queued(2).WithDuration(30).MustBuild(),
	}

	alloc := allocate(bookings, booking.ModeQueue, booking.PriorityNormal)
	assert.Equal(t, 3, alloc.QueuePosition)
	// Only the pending 30-min predecessor counts; the ongoing cut is
	// already in progress.
	assert.Equal(t, 30, alloc.EstimatedWaitMinutes)
}

// Dense ranking preservation: applying the instructed shift then inserting
// yields exactly {1..N}.
func TestAllocate_ShiftPreservesDenseRanking(t *testing.T) {
	holders := []int{1, 2, 3, 4}
	alloc := func() schedule.Allocation {
		var bookings []*booking.Booking
		for _, p := range holders {
			bookings = append(bookings, builder.NewBookingBuilder().Queued(p).WithDuration(30).MustBuild())
		}
		return allocate(bookings, booking.ModeQueue, booking.PriorityUrgent)
	}()

	positions := map[int]bool{alloc.QueuePosition: true}
	for _, p := range holders {
		if alloc.ShiftFrom > 0 && p >= alloc.ShiftFrom {
			p++
		}
		assert.False(t, positions[p], "duplicate position %d", p)
		positions[p] = true
	}

	for want := 1; want <= len(holders)+1; want++ {
		assert.True(t, positions[want], "missing position %d", want)
	}
}
