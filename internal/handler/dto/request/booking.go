package request

import (
	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	ResourceID      uuid.UUID `json:"resource_id" binding:"required"`
	Date            string    `json:"date" binding:"required"`
	Mode            string    `json:"mode" binding:"required,oneof=scheduled queue"`
	FixedTime       *string   `json:"fixed_time,omitempty"` // "HH:MM", scheduled mode only
	Priority        *string   `json:"priority,omitempty"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending scheduled confirmed ongoing done cancelled"`
}

type ApplyDelayRequest struct {
	Date         string `json:"date" binding:"required"`
	DelayMinutes int    `json:"delay_minutes" binding:"required,gt=0"`
}

type PushSubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url"`
	Keys     struct {
		P256DH string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
}
