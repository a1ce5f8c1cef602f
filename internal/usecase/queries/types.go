package queries

import (
	"time"

	"github.com/google/uuid"
)

type SlotView struct {
	Start             time.Time
	End               time.Time
	Available         bool
	RemainingCapacity int
	Reason            string
}

type AppointmentView struct {
	ID          uuid.UUID
	BusinessID  uuid.UUID
	ServiceID   uuid.UUID
	ServiceName string
	CustomerID  *uuid.UUID
	GuestName   *string
	GuestEmail  *string
	Start       time.Time
	End         time.Time
	Status      string
	Version     int32
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ReservationView struct {
	ID         uuid.UUID
	BusinessID uuid.UUID
	ServiceID  uuid.UUID
	Start      time.Time
	End        time.Time
	ExpiresAt  time.Time
	CreatedAt  time.Time
}
