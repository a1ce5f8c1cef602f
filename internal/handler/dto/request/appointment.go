package request

import (
	"strings"
	"time"

	"slotbook/internal/domain/booking"

	"github.com/google/uuid"
)

// CommitReservationRequest carries the booked party. An authenticated
// customer needs no fields; a guest must supply at least an email.
type CommitReservationRequest struct {
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	GuestName  *string    `json:"guest_name,omitempty"`
	GuestEmail *string    `json:"guest_email,omitempty" binding:"omitempty,email"`
}

func (r CommitReservationRequest) ToCustomer(authenticatedID *uuid.UUID) booking.Customer {
	customer := booking.Customer{CustomerID: r.CustomerID}
	if customer.CustomerID == nil {
		customer.CustomerID = authenticatedID
	}
	if r.GuestName != nil {
		customer.GuestName = strings.TrimSpace(*r.GuestName)
	}
	if r.GuestEmail != nil {
		customer.GuestEmail = strings.TrimSpace(*r.GuestEmail)
	}
	return customer
}

type CreateAppointmentRequest struct {
	BusinessID uuid.UUID  `json:"business_id" binding:"required"`
	ServiceID  uuid.UUID  `json:"service_id" binding:"required"`
	StartTime  time.Time  `json:"start_time" binding:"required"`
	EndTime    time.Time  `json:"end_time" binding:"required"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	GuestName  *string    `json:"guest_name,omitempty"`
	GuestEmail *string    `json:"guest_email,omitempty" binding:"omitempty,email"`
}

func (r CreateAppointmentRequest) ToCustomer() booking.Customer {
	customer := booking.Customer{CustomerID: r.CustomerID}
	if r.GuestName != nil {
		customer.GuestName = strings.TrimSpace(*r.GuestName)
	}
	if r.GuestEmail != nil {
		customer.GuestEmail = strings.TrimSpace(*r.GuestEmail)
	}
	return customer
}

type RescheduleRequest struct {
	StartTime       time.Time `json:"start_time" binding:"required"`
	EndTime         time.Time `json:"end_time" binding:"required"`
	ExpectedVersion int32     `json:"expected_version" binding:"required"`
}
