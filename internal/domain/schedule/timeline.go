package schedule

import (
	"sort"

	"trimline/internal/domain/booking"
)

// Entry is one slot of a built timeline. Entries are created fresh on every
// build, never mutated in place, and replaced wholesale on the next
// recomputation.
type Entry struct {
	Booking          *booking.Booking
	ProjectedStart   *int // minutes from midnight; nil when overflow
	ProjectedEnd     *int
	TimelinePosition int // 1-based emission order across all passes
	WaitMinutes      *int // queue entries only; nil for overflow
	DelayMinutes     int  // scheduled entries only; never negative
	IsOverflow       bool
	CanStartNow      bool
}

// Build merges all active bookings for one resource+date into an ordered,
// time-annotated timeline. Deterministic given identical inputs; purely
// computational.
//
// Under PackQueueFirst the passes are: queue entries packed from opening
// until the first fixed time (or closing) is reached, then scheduled entries
// in time order with projectedStart = max(cursor, fixedTime), then the
// remaining queue entries. Entries that cannot finish before closing are
// emitted with IsOverflow set rather than dropped.
func Build(rules DayRules, bookings []*booking.Booking, nowMinute int) []Entry {
	scheduledSet, queueSet := partition(bookings)

	entries := make([]Entry, 0, len(scheduledSet)+len(queueSet))
	cursor := rules.Opening

	if rules.Policy != PackScheduledFirst {
		var consumed int
		cursor, consumed = packQueue(rules, &entries, queueSet, cursor, firstFixedTime(scheduledSet))
		queueSet = queueSet[consumed:]
	}

	for _, b := range scheduledSet {
		fixed, _ := b.FixedTime()
		start := cursor
		if fixed > start {
			start = fixed
		}
		end := start + b.DurationMinutes()
		entries = append(entries, Entry{
			Booking:        b,
			ProjectedStart: intPtr(start),
			ProjectedEnd:   intPtr(end),
			DelayMinutes:   start - fixed,
		})
		cursor = rules.skipBlocked(end + rules.BufferMinutes)
	}

	_, consumed := packQueue(rules, &entries, queueSet, cursor, -1)

	for _, b := range queueSet[consumed:] {
		entries = append(entries, Entry{Booking: b, IsOverflow: true})
	}

	annotate(entries, nowMinute)
	return entries
}

// packQueue places queue entries at the cursor while they fit before closing
// and, when stopFixed >= 0, while the cursor has not yet reached the first
// scheduled booking's fixed time. Returns the advanced cursor and the number
// of entries consumed from the front of queueSet.
func packQueue(rules DayRules, entries *[]Entry, queueSet []*booking.Booking, cursor, stopFixed int) (int, int) {
	consumed := 0
	for _, b := range queueSet {
		cursor = rules.skipBlocked(cursor)
		if stopFixed >= 0 && cursor >= stopFixed {
			break
		}
		end := cursor + b.DurationMinutes()
		if end > rules.Closing {
			break
		}
		*entries = append(*entries, Entry{
			Booking:        b,
			ProjectedStart: intPtr(cursor),
			ProjectedEnd:   intPtr(end),
		})
		cursor = end + rules.BufferMinutes
		consumed++
	}
	return cursor, consumed
}

// partition splits active bookings into the sorted scheduled and queue sets.
// Scheduled entries order by fixed time; queue entries by priority weight,
// then position, with arrival time breaking remaining ties.
func partition(bookings []*booking.Booking) (scheduledSet, queueSet []*booking.Booking) {
	for _, b := range bookings {
		if !b.IsActive() {
			continue
		}
		switch b.Mode() {
		case booking.ModeScheduled:
			scheduledSet = append(scheduledSet, b)
		case booking.ModeQueue:
			queueSet = append(queueSet, b)
		}
	}

	sort.SliceStable(scheduledSet, func(i, j int) bool {
		fi, _ := scheduledSet[i].FixedTime()
		fj, _ := scheduledSet[j].FixedTime()
		if fi != fj {
			return fi < fj
		}
		return scheduledSet[i].CreatedAt().Before(scheduledSet[j].CreatedAt())
	})

	sort.SliceStable(queueSet, func(i, j int) bool {
		wi, wj := queueSet[i].Priority().Weight(), queueSet[j].Priority().Weight()
		if wi != wj {
			return wi < wj
		}
		pi, _ := queueSet[i].QueuePosition()
		pj, _ := queueSet[j].QueuePosition()
		if pi != pj {
			return pi < pj
		}
		return queueSet[i].CreatedAt().Before(queueSet[j].CreatedAt())
	})

	return scheduledSet, queueSet
}

func firstFixedTime(scheduledSet []*booking.Booking) int {
	if len(scheduledSet) == 0 {
		return -1
	}
	fixed, _ := scheduledSet[0].FixedTime()
	return fixed
}

func annotate(entries []Entry, nowMinute int) {
	startable := true
	for i := range entries {
		e := &entries[i]
		e.TimelinePosition = i + 1

		if e.IsOverflow {
			continue
		}
		if e.Booking.Mode() == booking.ModeQueue {
			wait := *e.ProjectedStart - nowMinute
			if wait < 0 {
				wait = 0
			}
			e.WaitMinutes = intPtr(wait)
		}
		if startable && e.Booking.Status() != booking.StatusOngoing && *e.ProjectedStart <= nowMinute {
			e.CanStartNow = true
		}
		startable = false
	}
}

func intPtr(v int) *int {
	return &v
}
