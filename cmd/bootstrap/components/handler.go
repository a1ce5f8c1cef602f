package components

import (
	"slotbook/internal/handler"
	"slotbook/internal/handler/api"
	"slotbook/internal/handler/middleware"
	"slotbook/internal/pkg/config"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAvailabilityHandler,
		api.NewReservationHandler,
		api.NewAppointmentHandler,
		middleware.NewAuthMiddleware,
		func(cfg config.Config) *middleware.RateLimiter {
			return middleware.NewRateLimiter(cfg.Booking)
		},
	),
	fx.Invoke(handler.NewRouter),
)
