package components

import (
	"context"

	"slotbook/internal/pkg/clock"
	"slotbook/internal/pkg/config"
	"slotbook/internal/usecase/shared"
	"slotbook/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		func(uow shared.UnitOfWork, clk clock.Clock, cfg config.Config) *worker.Sweeper {
			return worker.NewSweeper(uow, clk, cfg.Booking.SweepInterval)
		},
	),
	fx.Invoke(registerSweeper),
)

func registerSweeper(lc fx.Lifecycle, sweeper *worker.Sweeper) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			sweeper.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			sweeper.Stop()
			return nil
		},
	})
}
