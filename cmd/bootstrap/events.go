package bootstrap

import (
	"context"
	"log/slog"

	"slotbook/internal/infra/notify"
	"slotbook/internal/pkg/config"
	"slotbook/internal/usecase/commands"

	"go.uber.org/fx"
)

var EventsModule = fx.Module("events",
	fx.Provide(
		NewEventPublisher,
	),
)

// NewEventPublisher wires the redis fan-out when configured; otherwise
// booking events are silently dropped.
func NewEventPublisher(lc fx.Lifecycle, cfg config.Config) (commands.EventPublisher, error) {
	if cfg.Redis.URL == "" {
		slog.Info("redis not configured; booking events disabled")
		return notify.NopPublisher{}, nil
	}

	publisher, cleanup, err := notify.NewRedisPublisher(cfg.Redis)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			cleanup()
			return nil
		},
	})

	return publisher, nil
}
