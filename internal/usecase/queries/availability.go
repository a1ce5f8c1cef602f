package queries

import (
	"context"
	"time"

	"slotbook/internal/domain/schedule"
	"slotbook/internal/infra"
	"slotbook/internal/pkg/clock"
	"slotbook/internal/pkg/errs"
	"slotbook/internal/usecase/shared"

	"github.com/google/uuid"
)

type GenerateSlotsParams struct {
	BusinessID          uuid.UUID
	ServiceID           uuid.UUID
	From                time.Time
	To                  time.Time
	BypassAdvanceWindow bool
}

type AvailabilityQueries interface {
	GenerateSlots(ctx context.Context, p GenerateSlotsParams) ([]SlotView, error)
}

type availabilityQueriesImpl struct {
	reads shared.CommandReads
	clock clock.Clock
}

func NewAvailabilityQueries(reads shared.CommandReads, clock clock.Clock) AvailabilityQueries {
	return &availabilityQueriesImpl{reads: reads, clock: clock}
}

func (q *availabilityQueriesImpl) GenerateSlots(ctx context.Context, p GenerateSlotsParams) ([]SlotView, error) {
	if !p.To.After(p.From) {
		return nil, errs.ErrInvalidInterval
	}

	sched, err := q.reads.ScheduleByBusiness(ctx, p.BusinessID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrBusinessNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	svc, err := q.reads.ServiceByID(ctx, p.BusinessID, p.ServiceID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrServiceNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	window := schedule.PrefilterWindow(svc, schedule.Interval{Start: p.From, End: p.To})
	occupants, err := q.reads.OccupantsInRange(ctx, p.BusinessID, p.ServiceID, window)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	schedule.ExpandOccupants(svc, occupants)

	now := q.clock.Now()
	slots := sched.GenerateSlots(svc, p.From, p.To, occupants, now, schedule.SlotOptions{
		BypassAdvanceWindow: p.BypassAdvanceWindow,
	})

	views := make([]SlotView, len(slots))
	for i, s := range slots {
		views[i] = SlotView{
			Start:             s.Start,
			End:               s.End,
			Available:         s.Available,
			RemainingCapacity: s.RemainingCapacity,
			Reason:            string(s.Reason),
		}
	}
	return views, nil
}
