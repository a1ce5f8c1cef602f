package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"slotbook/internal/domain/identity"
	"slotbook/internal/handler/api"
	"slotbook/internal/handler/middleware"
	"slotbook/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	availabilityHandler *api.AvailabilityHandler,
	reservationHandler *api.ReservationHandler,
	appointmentHandler *api.AppointmentHandler,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, availabilityHandler, reservationHandler, appointmentHandler, authMiddleware, rateLimiter)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	availabilityHandler *api.AvailabilityHandler,
	reservationHandler *api.ReservationHandler,
	appointmentHandler *api.AppointmentHandler,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		businesses := apiGroup.Group("/businesses")
		businesses.Use(authMiddleware.OptionalAuth())
		{
			addRoutes(businesses, []route{
				{Method: http.MethodGet, Path: "/:businessID/services/:serviceID/slots", Handler: availabilityHandler.GetSlots},
			})
		}

		// Guests book too; booking writes are throttled but not gated on auth.
		reservations := apiGroup.Group("/reservations")
		reservations.Use(authMiddleware.OptionalAuth())
		{
			addRoutes(reservations, []route{
				{Method: http.MethodPost, Path: "", Handler: reservationHandler.CreateReservation, Mw: []gin.HandlerFunc{rateLimiter.RateLimit()}},
				{Method: http.MethodGet, Path: "/:id", Handler: reservationHandler.GetReservation},
				{Method: http.MethodDelete, Path: "/:id", Handler: reservationHandler.ReleaseReservation},
				{Method: http.MethodPost, Path: "/:id/commit", Handler: appointmentHandler.CommitReservation, Mw: []gin.HandlerFunc{rateLimiter.RateLimit()}},
			})
		}

		appointments := apiGroup.Group("/appointments")
		appointments.Use(authMiddleware.RequireAuth())
		{
			staffOnly := authMiddleware.RequireRoleAtLeast(identity.RoleStaff)
			addRoutes(appointments, []route{
				{Method: http.MethodPost, Path: "", Handler: appointmentHandler.CreateAppointment, Mw: []gin.HandlerFunc{staffOnly, rateLimiter.RateLimit()}},
				{Method: http.MethodGet, Path: "", Handler: appointmentHandler.ListAppointments, Mw: []gin.HandlerFunc{staffOnly}},
				{Method: http.MethodGet, Path: "/:id", Handler: appointmentHandler.GetAppointment},
				{Method: http.MethodPatch, Path: "/:id/reschedule", Handler: appointmentHandler.RescheduleAppointment, Mw: []gin.HandlerFunc{rateLimiter.RateLimit()}},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: appointmentHandler.CancelAppointment},
				{Method: http.MethodPost, Path: "/:id/complete", Handler: appointmentHandler.CompleteAppointment, Mw: []gin.HandlerFunc{staffOnly}},
				{Method: http.MethodPost, Path: "/:id/no-show", Handler: appointmentHandler.MarkNoShow, Mw: []gin.HandlerFunc{staffOnly}},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
