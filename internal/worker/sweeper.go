package worker

import (
	"context"
	"log/slog"
	"time"

	"slotbook/internal/pkg/clock"
	"slotbook/internal/usecase/shared"
)

// Sweeper purges expired reservation rows in the background. Expired holds
// already stop counting toward capacity the moment their TTL passes; the
// sweeper only keeps the table from accumulating dead rows.
type Sweeper struct {
	uow      shared.UnitOfWork
	clock    clock.Clock
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

func NewSweeper(uow shared.UnitOfWork, clk clock.Clock, interval time.Duration) *Sweeper {
	return &Sweeper{
		uow:      uow,
		clock:    clk,
		interval: interval,
	}
}

func (s *Sweeper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx)
}

func (s *Sweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	var purged int64
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		purged, err = tx.Reservations().PurgeExpired(ctx, s.clock.Now())
		return err
	})
	if err != nil {
		if ctx.Err() == nil {
			slog.Error("reservation sweep failed", "error", err)
		}
		return
	}
	if purged > 0 {
		slog.Debug("purged expired reservations", "count", purged)
	}
}
