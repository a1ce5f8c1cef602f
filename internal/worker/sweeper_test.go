//go:build unit

package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"slotbook/internal/pkg/clock"
	"slotbook/internal/usecase/shared"
	mockshared "slotbook/tests/mock/shared"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newSweeperFixture(t *testing.T) (*mockshared.MockUnitOfWork, *mockshared.MockReservationRepository, *clock.MockClock) {
	ctrl := gomock.NewController(t)
	uow := mockshared.NewMockUnitOfWork(ctrl)
	tx := mockshared.NewMockTx(ctrl)
	repo := mockshared.NewMockReservationRepository(ctrl)

	uow.EXPECT().Within(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context, shared.Tx) error) error {
			return fn(ctx, tx)
		}).AnyTimes()
	tx.EXPECT().Reservations().Return(repo).AnyTimes()

	return uow, repo, clock.NewMockClock(time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC))
}

func TestSweeper_PurgesExpiredHolds(t *testing.T) {
	t.Parallel()

	uow, repo, clk := newSweeperFixture(t)
	repo.EXPECT().PurgeExpired(gomock.Any(), clk.Now()).Return(int64(3), nil)

	s := NewSweeper(uow, clk, time.Minute)
	s.sweep(context.Background())
}

func TestSweeper_UsesCurrentTimeOnEachSweep(t *testing.T) {
	t.Parallel()

	uow, repo, clk := newSweeperFixture(t)
	first := clk.Now()
	later := first.Add(5 * time.Minute)

	gomock.InOrder(
		repo.EXPECT().PurgeExpired(gomock.Any(), first).Return(int64(0), nil),
		repo.EXPECT().PurgeExpired(gomock.Any(), later).Return(int64(1), nil),
	)

	s := NewSweeper(uow, clk, time.Minute)
	s.sweep(context.Background())
	clk.Set(later)
	s.sweep(context.Background())
}

func TestSweeper_SwallowsSweepErrors(t *testing.T) {
	t.Parallel()

	uow, repo, clk := newSweeperFixture(t)
	repo.EXPECT().PurgeExpired(gomock.Any(), gomock.Any()).Return(int64(0), errors.New("connection reset"))

	s := NewSweeper(uow, clk, time.Minute)
	s.sweep(context.Background())
}

func TestSweeper_StopWithoutStartIsNoop(t *testing.T) {
	t.Parallel()

	uow, _, clk := newSweeperFixture(t)
	s := NewSweeper(uow, clk, time.Minute)
	require.NotPanics(t, func() { s.Stop() })
}

func TestSweeper_StartStop(t *testing.T) {
	t.Parallel()

	uow, _, clk := newSweeperFixture(t)
	s := NewSweeper(uow, clk, time.Hour)
	s.Start()
	s.Stop()
}
