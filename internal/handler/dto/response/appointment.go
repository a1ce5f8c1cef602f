package response

import (
	"time"

	"slotbook/internal/domain/booking"
	"slotbook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type AppointmentResponse struct {
	ID          uuid.UUID  `json:"id"`
	BusinessID  uuid.UUID  `json:"businessId"`
	ServiceID   uuid.UUID  `json:"serviceId"`
	ServiceName string     `json:"serviceName,omitempty"`
	CustomerID  *uuid.UUID `json:"customerId,omitempty"`
	GuestName   *string    `json:"guestName,omitempty"`
	GuestEmail  *string    `json:"guestEmail,omitempty"`
	Start       time.Time  `json:"start"`
	End         time.Time  `json:"end"`
	Status      string     `json:"status"`
	Version     int32      `json:"version"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

func FromAppointmentView(view *queries.AppointmentView) *AppointmentResponse {
	var resp AppointmentResponse
	_ = copier.Copy(&resp, view)
	return &resp
}

func FromAppointmentViews(views []*queries.AppointmentView) AppointmentListResponse {
	appointments := make([]AppointmentResponse, 0, len(views))
	for _, view := range views {
		appointments = append(appointments, *FromAppointmentView(view))
	}
	return AppointmentListResponse{Appointments: appointments}
}

func FromAppointment(appt *booking.Appointment) *AppointmentResponse {
	resp := &AppointmentResponse{
		ID:         appt.ID(),
		BusinessID: appt.BusinessID(),
		ServiceID:  appt.ServiceID(),
		Start:      appt.Slot().Start(),
		End:        appt.Slot().End(),
		Status:     appt.Status().String(),
		Version:    appt.Version(),
		CreatedAt:  appt.CreatedAt(),
		UpdatedAt:  appt.UpdatedAt(),
	}

	customer := appt.Customer()
	resp.CustomerID = customer.CustomerID
	if customer.GuestName != "" {
		name := customer.GuestName
		resp.GuestName = &name
	}
	if customer.GuestEmail != "" {
		email := customer.GuestEmail
		resp.GuestEmail = &email
	}
	return resp
}
