package usecase

import (
	"time"

	"github.com/google/uuid"

	"trimline/internal/domain/booking"
	"trimline/internal/domain/schedule"
)

// View types returned to the handler layer. Minutes-of-day fields are
// rendered as "HH:MM" strings at the edge; internally everything stays in
// minutes.

type BookingView struct {
	ID              uuid.UUID `json:"id"`
	ResourceID      uuid.UUID `json:"resourceId"`
	CustomerID      uuid.UUID `json:"customerId"`
	Date            string    `json:"date"`
	Mode            string    `json:"mode"`
	FixedTime       *string   `json:"fixedTime,omitempty"`
	QueuePosition   *int      `json:"queuePosition,omitempty"`
	Priority        string    `json:"priority"`
	DurationMinutes int       `json:"durationMinutes"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	// Populated on creation of queue bookings.
	EstimatedWaitMinutes *int `json:"estimatedWaitMinutes,omitempty"`
}

type TimelineEntryView struct {
	Booking          BookingView `json:"booking"`
	ProjectedStart   *string     `json:"projectedStart"`
	ProjectedEnd     *string     `json:"projectedEnd"`
	TimelinePosition int         `json:"timelinePosition"`
	WaitMinutes      *int        `json:"waitMinutes,omitempty"`
	DelayMinutes     int         `json:"delayMinutes"`
	IsOverflow       bool        `json:"isOverflow"`
	CanStartNow      bool        `json:"canStartNow"`
}

type TimelineView struct {
	ResourceID  uuid.UUID           `json:"resourceId"`
	Date        string              `json:"date"`
	GeneratedAt time.Time           `json:"generatedAt"`
	Entries     []TimelineEntryView `json:"entries"`
}

type GapCandidateView struct {
	Start                *string `json:"start,omitempty"`
	End                  *string `json:"end,omitempty"`
	GapMinutes           int     `json:"gapMinutes,omitempty"`
	Efficiency           float64 `json:"efficiency"`
	JoinQueue            bool    `json:"joinQueue"`
	QueuePosition        int     `json:"queuePosition,omitempty"`
	EstimatedWaitMinutes int     `json:"estimatedWaitMinutes,omitempty"`
}

type GapsView struct {
	ResourceID      uuid.UUID          `json:"resourceId"`
	Date            string             `json:"date"`
	DurationMinutes int                `json:"durationMinutes"`
	Candidates      []GapCandidateView `json:"candidates"`
}

type ShiftView struct {
	BookingID uuid.UUID `json:"bookingId"`
	OldStart  string    `json:"oldStart"`
	NewStart  string    `json:"newStart"`
}

type DelayView struct {
	ResourceID   uuid.UUID   `json:"resourceId"`
	Date         string      `json:"date"`
	DelayMinutes int         `json:"delayMinutes"`
	Shifts       []ShiftView `json:"shifts"`
}

func newBookingView(b *booking.Booking) BookingView {
	v := BookingView{
		ID:              b.ID(),
		ResourceID:      b.ResourceID(),
		CustomerID:      b.CustomerID(),
		Date:            b.Date().String(),
		Mode:            b.Mode().String(),
		Priority:        b.Priority().String(),
		DurationMinutes: b.DurationMinutes(),
		Status:          b.Status().String(),
		CreatedAt:       b.CreatedAt(),
		UpdatedAt:       b.UpdatedAt(),
	}
	if fixed, ok := b.FixedTime(); ok {
		s := schedule.FormatMinute(fixed)
		v.FixedTime = &s
	}
	if pos, ok := b.QueuePosition(); ok {
		v.QueuePosition = &pos
	}
	return v
}

func newTimelineEntryView(e schedule.Entry) TimelineEntryView {
	v := TimelineEntryView{
		Booking:          newBookingView(e.Booking),
		TimelinePosition: e.TimelinePosition,
		WaitMinutes:      e.WaitMinutes,
		DelayMinutes:     e.DelayMinutes,
		IsOverflow:       e.IsOverflow,
		CanStartNow:      e.CanStartNow,
	}
	if e.ProjectedStart != nil {
		s := schedule.FormatMinute(*e.ProjectedStart)
		v.ProjectedStart = &s
	}
	if e.ProjectedEnd != nil {
		s := schedule.FormatMinute(*e.ProjectedEnd)
		v.ProjectedEnd = &s
	}
	return v
}

func newGapCandidateView(c schedule.Candidate) GapCandidateView {
	v := GapCandidateView{
		GapMinutes:           c.GapMinutes,
		Efficiency:           c.Efficiency,
		JoinQueue:            c.JoinQueue,
		QueuePosition:        c.QueuePosition,
		EstimatedWaitMinutes: c.EstimatedWaitMinutes,
	}
	if !c.JoinQueue {
		start := schedule.FormatMinute(c.Start)
		end := schedule.FormatMinute(c.End)
		v.Start = &start
		v.End = &end
	}
	return v
}
