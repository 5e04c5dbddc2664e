// Package schedule implements the timeline scheduling engine: merging
// fixed-time and queue bookings for one resource+date into a single ordered,
// time-annotated plan. Everything in this package is a pure computation over
// a snapshot of bookings; no component keeps state between invocations.
package schedule

import (
	"errors"
	"fmt"
)

const minutesPerDay = 24 * 60

// ParseMinute converts an "HH:MM" clock string to minutes from midnight.
func ParseMinute(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, errors.New("clock time must be formatted as HH:MM")
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, errors.New("clock time out of range")
	}
	return h*60 + m, nil
}

// FormatMinute renders minutes from midnight as "HH:MM".
func FormatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Interval is a half-open [Start, End) window in minutes from midnight.
type Interval struct {
	Start int
	End   int
}

func (i Interval) Duration() int {
	return i.End - i.Start
}

func (i Interval) Contains(minute int) bool {
	return minute >= i.Start && minute < i.End
}

func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && i.End > other.Start
}

// PackingPolicy decides whether walk-ins or fixed-time bookings get first
// claim on the morning. Queue-first reproduces the historical behavior, where
// walk-ins can push fixed commitments later than their promised time.
type PackingPolicy string

const (
	PackQueueFirst     PackingPolicy = "queue_first"
	PackScheduledFirst PackingPolicy = "scheduled_first"
)

// DayRules is the static per-resource calendar configuration: business
// hours, one blocked interval (lunch), the per-appointment buffer, and the
// queue capacity ceiling. Pure data.
type DayRules struct {
	Opening         int
	Closing         int
	Blocked         Interval
	BufferMinutes   int
	QueueCapacity   int
	DefaultDuration int
	Policy          PackingPolicy
}

func (r DayRules) Validate() error {
	if r.Opening < 0 || r.Closing > minutesPerDay || r.Opening >= r.Closing {
		return errors.New("opening must precede closing within the day")
	}
	if r.Blocked.Start > r.Blocked.End {
		return errors.New("blocked interval start must not exceed its end")
	}
	if r.BufferMinutes < 0 {
		return errors.New("buffer must not be negative")
	}
	if r.QueueCapacity <= 0 {
		return errors.New("queue capacity must be positive")
	}
	if r.DefaultDuration <= 0 {
		return errors.New("default duration must be positive")
	}
	return nil
}

// skipBlocked jumps a cursor that has landed inside the blocked interval to
// its end.
func (r DayRules) skipBlocked(cursor int) int {
	if r.Blocked.Contains(cursor) {
		return r.Blocked.End
	}
	return cursor
}
