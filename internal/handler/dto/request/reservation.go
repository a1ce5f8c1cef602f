package request

import (
	"time"

	"github.com/google/uuid"
)

type CreateReservationRequest struct {
	BusinessID uuid.UUID `json:"business_id" binding:"required"`
	ServiceID  uuid.UUID `json:"service_id" binding:"required"`
	StartTime  time.Time `json:"start_time" binding:"required"`
	EndTime    time.Time `json:"end_time" binding:"required"`
}
