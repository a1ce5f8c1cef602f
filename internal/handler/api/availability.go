package api

import (
	"net/http"

	reqdto "slotbook/internal/handler/dto/request"
	resdto "slotbook/internal/handler/dto/response"
	"slotbook/internal/handler/middleware"
	"slotbook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type AvailabilityHandler struct {
	availabilityQueries queries.AvailabilityQueries
}

func NewAvailabilityHandler(availabilityQueries queries.AvailabilityQueries) *AvailabilityHandler {
	return &AvailabilityHandler{
		availabilityQueries: availabilityQueries,
	}
}

// @Summary List bookable slots
// @Description Generate the slot grid for a service within a window
// @Tags availability
// @Produce json
// @Param businessID path string true "Business ID"
// @Param serviceID path string true "Service ID"
// @Param from query string true "Window start (RFC3339)"
// @Param to query string true "Window end (RFC3339)"
// @Success 200 {object} resdto.SlotsResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /businesses/{businessID}/services/{serviceID}/slots [get]
func (h *AvailabilityHandler) GetSlots(c *gin.Context) {
	businessID, ok := parseUUIDParam(c, "businessID")
	if !ok {
		return
	}
	serviceID, ok := parseUUIDParam(c, "serviceID")
	if !ok {
		return
	}

	var query reqdto.SlotsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters: from and to are required RFC3339 instants",
		})
		return
	}

	// Staff browsing past the advance window see those slots too.
	bypass := false
	if actor, authed := middleware.GetActor(c); authed {
		bypass = actor.Role.CanBypassAdvanceWindow()
	}

	views, err := h.availabilityQueries.GenerateSlots(c.Request.Context(), queries.GenerateSlotsParams{
		BusinessID:          businessID,
		ServiceID:           serviceID,
		From:                query.From,
		To:                  query.To,
		BypassAdvanceWindow: bypass,
	})
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromSlotViews(views))
}
