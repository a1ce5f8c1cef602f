package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventReservationCreated     EventType = "reservation.created"
	EventReservationReleased    EventType = "reservation.released"
	EventAppointmentConfirmed   EventType = "appointment.confirmed"
	EventAppointmentRescheduled EventType = "appointment.rescheduled"
	EventAppointmentCanceled    EventType = "appointment.canceled"
	EventAppointmentCompleted   EventType = "appointment.completed"
	EventAppointmentNoShow      EventType = "appointment.no_show"
)

// BookingEvent is the post-commit notification payload. Publishing is
// fire-and-forget; a failed publish never rolls back the booking.
type BookingEvent struct {
	Type       EventType `json:"type"`
	BusinessID uuid.UUID `json:"business_id"`
	ServiceID  uuid.UUID `json:"service_id"`
	SubjectID  uuid.UUID `json:"subject_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	OccurredAt time.Time `json:"occurred_at"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event BookingEvent) error
}
