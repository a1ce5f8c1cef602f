package response

import (
	"time"

	"slotbook/internal/domain/reservation"
	"slotbook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type ReservationResponse struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"businessId"`
	ServiceID  uuid.UUID `json:"serviceId"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	ExpiresAt  time.Time `json:"expiresAt"`
	CreatedAt  time.Time `json:"createdAt"`
	Replayed   bool      `json:"replayed,omitempty"`
}

func FromReservationView(view *queries.ReservationView) *ReservationResponse {
	var resp ReservationResponse
	_ = copier.Copy(&resp, view)
	return &resp
}

func FromReservation(res *reservation.Reservation, replayed bool) *ReservationResponse {
	return &ReservationResponse{
		ID:         res.ID(),
		BusinessID: res.BusinessID(),
		ServiceID:  res.ServiceID(),
		Start:      res.Slot().Start(),
		End:        res.Slot().End(),
		ExpiresAt:  res.ExpiresAt(),
		CreatedAt:  res.CreatedAt(),
		Replayed:   replayed,
	}
}
