package api

import (
	"errors"
	"net/http"

	"slotbook/internal/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondBookingError maps usecase sentinels onto HTTP statuses. Anything
// unrecognized is a 500 with the detail kept out of the response body.
func respondBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrValidation),
		errors.Is(err, errs.ErrInvalidInterval),
		errors.Is(err, errs.ErrNotGrainAligned),
		errors.Is(err, errs.ErrIdempotencyKeyRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, errs.ErrPastOrTooSoon),
		errors.Is(err, errs.ErrAdvanceWindowExceeded),
		errors.Is(err, errs.ErrOffTime):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})

	case errors.Is(err, errs.ErrCapacityExceeded),
		errors.Is(err, errs.ErrConflict),
		errors.Is(err, errs.ErrInvalidStatusTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, errs.ErrBusinessNotFound),
		errors.Is(err, errs.ErrServiceNotFound),
		errors.Is(err, errs.ErrReservationNotFound),
		errors.Is(err, errs.ErrAppointmentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
