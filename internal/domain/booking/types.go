package booking

// Mode says how a booking is ordered within the day: by clock time or by
// queue position. It is an explicit, caller-supplied tag — never inferred
// from which fields happen to be set.
type Mode string

const (
	ModeScheduled Mode = "scheduled"
	ModeQueue     Mode = "queue"
)

func (m Mode) String() string {
	return string(m)
}

func (m Mode) IsValid() bool {
	switch m {
	case ModeScheduled, ModeQueue:
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

func (p Priority) String() string {
	return string(p)
}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityUrgent, PriorityHigh, PriorityNormal, PriorityLow:
		return true
	default:
		return false
	}
}

// Weight orders queue entries; lower is served sooner.
func (p Priority) Weight() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityNormal:
		return 2
	case PriorityLow:
		return 3
	default:
		return 2
	}
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusOngoing   Status = "ongoing"
	StatusDone      Status = "done"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusScheduled, StatusConfirmed, StatusOngoing, StatusDone, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsActive reports whether a booking in this status belongs on the timeline.
func (s Status) IsActive() bool {
	switch s {
	case StatusPending, StatusScheduled, StatusConfirmed, StatusOngoing:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusCancelled
}

var transitions = map[Status][]Status{
	StatusPending:   {StatusScheduled, StatusConfirmed, StatusCancelled},
	StatusScheduled: {StatusConfirmed, StatusOngoing, StatusCancelled, StatusPending},
	StatusConfirmed: {StatusOngoing, StatusCancelled, StatusPending},
	StatusOngoing:   {StatusDone, StatusCancelled},
}

// CanTransition checks the booking status state machine. done and cancelled
// are terminal; pending re-entry is the reschedule path.
func (s Status) CanTransition(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// ActiveStatuses is the record-store filter for timeline eligibility.
func ActiveStatuses() []Status {
	return []Status{StatusPending, StatusScheduled, StatusConfirmed, StatusOngoing}
}
