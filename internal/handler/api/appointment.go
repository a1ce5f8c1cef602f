package api

import (
	"context"
	"net/http"

	"slotbook/internal/domain/identity"
	reqdto "slotbook/internal/handler/dto/request"
	resdto "slotbook/internal/handler/dto/response"
	"slotbook/internal/handler/middleware"
	"slotbook/internal/usecase/commands"
	"slotbook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AppointmentHandler struct {
	appointmentCommands commands.AppointmentCommands
	appointmentQueries  queries.AppointmentQueries
}

func NewAppointmentHandler(appointmentCommands commands.AppointmentCommands, appointmentQueries queries.AppointmentQueries) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentCommands: appointmentCommands,
		appointmentQueries:  appointmentQueries,
	}
}

// @Summary Commit reservation
// @Description Convert a live hold into a confirmed appointment
// @Tags appointments
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Param request body reqdto.CommitReservationRequest true "Booked party"
// @Success 201 {object} resdto.AppointmentResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /reservations/{id}/commit [post]
func (h *AppointmentHandler) CommitReservation(c *gin.Context) {
	reservationID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req reqdto.CommitReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	actorID, customerID := actorIdentity(c)
	appt, err := h.appointmentCommands.CommitReservation(c.Request.Context(), commands.CommitReservationParams{
		ReservationID: reservationID,
		Customer:      req.ToCustomer(customerID),
		ActorID:       actorID,
	})
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resdto.FromAppointment(appt))
}

// @Summary Create appointment directly
// @Description Book without a prior hold; staff may book past the advance window
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateAppointmentRequest true "Appointment request"
// @Success 201 {object} resdto.AppointmentResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /appointments [post]
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	appt, err := h.appointmentCommands.CreateDirect(c.Request.Context(), commands.CreateAppointmentParams{
		BusinessID: req.BusinessID,
		ServiceID:  req.ServiceID,
		Start:      req.StartTime,
		End:        req.EndTime,
		Customer:   req.ToCustomer(),
		Actor:      actor,
	})
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resdto.FromAppointment(appt))
}

// @Summary Get appointment
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Success 200 {object} resdto.AppointmentResponse
// @Failure 404 {object} map[string]string
// @Router /appointments/{id} [get]
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.appointmentQueries.GetByID(c.Request.Context(), id)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromAppointmentView(view))
}

// @Summary List appointments
// @Description List a business's appointments within a window
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param from query string true "Window start (RFC3339)"
// @Param to query string true "Window end (RFC3339)"
// @Success 200 {object} resdto.AppointmentListResponse
// @Failure 400 {object} map[string]string
// @Router /appointments [get]
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var query reqdto.SlotsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters: from and to are required RFC3339 instants",
		})
		return
	}

	views, err := h.appointmentQueries.ListByBusiness(c.Request.Context(), actor.BusinessID, query.From, query.To)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromAppointmentViews(views))
}

// @Summary Reschedule appointment
// @Description Move a confirmed appointment; guarded by the version token
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Param request body reqdto.RescheduleRequest true "New slot and expected version"
// @Success 200 {object} resdto.AppointmentResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /appointments/{id}/reschedule [patch]
func (h *AppointmentHandler) RescheduleAppointment(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req reqdto.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	actor, _ := middleware.GetActor(c)
	appt, err := h.appointmentCommands.Reschedule(c.Request.Context(), commands.RescheduleParams{
		AppointmentID:   id,
		Start:           req.StartTime,
		End:             req.EndTime,
		ExpectedVersion: req.ExpectedVersion,
		Actor:           actor,
	})
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromAppointment(appt))
}

// @Summary Cancel appointment
// @Tags appointments
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /appointments/{id}/cancel [post]
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	h.transition(c, h.appointmentCommands.Cancel)
}

// @Summary Complete appointment
// @Tags appointments
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /appointments/{id}/complete [post]
func (h *AppointmentHandler) CompleteAppointment(c *gin.Context) {
	h.transition(c, h.appointmentCommands.Complete)
}

// @Summary Mark appointment no-show
// @Tags appointments
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /appointments/{id}/no-show [post]
func (h *AppointmentHandler) MarkNoShow(c *gin.Context) {
	h.transition(c, h.appointmentCommands.MarkNoShow)
}

func (h *AppointmentHandler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) error) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	actorID, _ := actorIdentity(c)
	if err := fn(c.Request.Context(), id, actorID); err != nil {
		respondBookingError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func actorIdentity(c *gin.Context) (actorID, customerID *uuid.UUID) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return nil, nil
	}
	id := actor.ID
	actorID = &id
	if actor.Role == identity.RoleCustomer {
		customerID = &id
	}
	return actorID, customerID
}
