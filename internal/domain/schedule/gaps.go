package schedule

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"trimline/internal/domain/booking"
)

const (
	maxGapCandidates = 5

	// Below the lowest score a real gap can reach (utilization - 0.3*waste
	// bottoms out at -0.3), so the queue-join fallback always ranks last.
	queueJoinEfficiency = -1.0

	wastePenalty = 0.3
)

// Candidate is one suggestion for placing a request of the required
// duration: either a concrete slot carved from a free interval, or the
// synthetic join-the-queue fallback carrying the allocator's answer.
type Candidate struct {
	Start                int // slot start, minute of day; unset for queue-join
	End                  int // Start + requiredDuration
	GapMinutes           int // full size of the surrounding free interval
	Efficiency           float64
	JoinQueue            bool
	QueuePosition        int // queue-join only
	EstimatedWaitMinutes int // queue-join only
}

// FindGaps builds the current timeline and scans the free intervals around
// its scheduled entries for room to place requiredDuration minutes. Gaps are
// clipped around the blocked interval and scored by how efficiently the
// request would use them; a join-the-queue candidate is always present and
// always ranks last. At most 5 candidates are returned, best first.
func FindGaps(
	rules DayRules,
	resourceID, customerID uuid.UUID,
	date booking.Date,
	bookings []*booking.Booking,
	requiredDuration int,
	now time.Time,
	nowMinute int,
) []Candidate {
	if requiredDuration <= 0 {
		requiredDuration = rules.DefaultDuration
	}

	entries := Build(rules, bookings, nowMinute)

	free := freeIntervals(rules, entries)

	candidates := make([]Candidate, 0, len(free))
	for _, gap := range free {
		if gap.Duration() < requiredDuration {
			continue
		}
		candidates = append(candidates, Candidate{
			Start:      gap.Start,
			End:        gap.Start + requiredDuration,
			GapMinutes: gap.Duration(),
			Efficiency: efficiency(requiredDuration, gap.Duration()),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Efficiency > candidates[j].Efficiency
	})
	if len(candidates) > maxGapCandidates-1 {
		candidates = candidates[:maxGapCandidates-1]
	}

	alloc := Allocate(rules, resourceID, customerID, date, bookings,
		booking.ModeQueue, booking.PriorityNormal, requiredDuration, now, nowMinute)
	candidates = append(candidates, Candidate{
		Efficiency:           queueJoinEfficiency,
		JoinQueue:            true,
		QueuePosition:        alloc.QueuePosition,
		EstimatedWaitMinutes: alloc.EstimatedWaitMinutes,
	})

	return candidates
}

// freeIntervals walks the scheduled entries of a built timeline in time
// order and returns the free intervals before, between, and after them,
// bounded by opening/closing and split around the blocked interval.
func freeIntervals(rules DayRules, entries []Entry) []Interval {
	type placed struct{ start, end int }
	var scheduled []placed
	for _, e := range entries {
		if e.IsOverflow || e.Booking.Mode() != booking.ModeScheduled {
			continue
		}
		scheduled = append(scheduled, placed{start: *e.ProjectedStart, end: *e.ProjectedEnd})
	}
	sort.Slice(scheduled, func(i, j int) bool { return scheduled[i].start < scheduled[j].start })

	var raw []Interval
	cursor := rules.Opening
	for _, p := range scheduled {
		if p.start > cursor {
			raw = append(raw, Interval{Start: cursor, End: p.start})
		}
		if p.end+rules.BufferMinutes > cursor {
			cursor = p.end + rules.BufferMinutes
		}
	}
	if cursor < rules.Closing {
		raw = append(raw, Interval{Start: cursor, End: rules.Closing})
	}

	var out []Interval
	for _, iv := range raw {
		out = append(out, splitAroundBlocked(iv, rules.Blocked)...)
	}
	return out
}

func splitAroundBlocked(iv, blocked Interval) []Interval {
	if blocked.Duration() <= 0 || !iv.Overlaps(blocked) {
		return []Interval{iv}
	}
	var out []Interval
	if iv.Start < blocked.Start {
		out = append(out, Interval{Start: iv.Start, End: blocked.Start})
	}
	if iv.End > blocked.End {
		out = append(out, Interval{Start: blocked.End, End: iv.End})
	}
	return out
}

// efficiency rewards tight fits: utilization minus a penalty for the unused
// remainder of the gap.
func efficiency(required, gap int) float64 {
	if gap < required || gap == 0 {
		return 0
	}
	utilization := float64(required) / float64(gap)
	waste := float64(gap-required) / float64(gap)
	return utilization - wastePenalty*waste
}
