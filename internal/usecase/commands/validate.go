package commands

import (
	"context"
	"errors"
	"time"

	"slotbook/internal/domain/booking"
	"slotbook/internal/domain/schedule"
	"slotbook/internal/infra"
	"slotbook/internal/pkg/errs"
	"slotbook/internal/usecase/shared"

	"github.com/google/uuid"
)

func loadScheduleAndService(ctx context.Context, reads shared.CommandReads, businessID, serviceID uuid.UUID) (*schedule.BusinessSchedule, schedule.Service, error) {
	sched, err := reads.ScheduleByBusiness(ctx, businessID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, schedule.Service{}, errs.ErrBusinessNotFound
		}
		return nil, schedule.Service{}, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	svc, err := reads.ServiceByID(ctx, businessID, serviceID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, schedule.Service{}, errs.ErrServiceNotFound
		}
		return nil, schedule.Service{}, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	return sched, svc, nil
}

// validateSlot runs the booking preconditions shared by holds and direct
// appointments: grain alignment, service duration, lead time, advance window
// and off-time. It never checks capacity; that happens under the slot lock.
func validateSlot(sched *schedule.BusinessSchedule, svc schedule.Service, start, end time.Time, now time.Time, bypassAdvanceWindow bool) (booking.TimeSlot, error) {
	slot, err := booking.NewTimeSlot(start, end, sched.Grain(), sched.Location())
	if err != nil {
		if errors.Is(err, booking.ErrNotGrainAligned) {
			return booking.TimeSlot{}, errs.ErrNotGrainAligned
		}
		return booking.TimeSlot{}, errs.Mark(err, errs.ErrInvalidInterval)
	}
	if slot.Duration() != svc.Duration() {
		return booking.TimeSlot{}, errs.Mark(errs.Newf("slot length %s does not match service duration %s", slot.Duration(), svc.Duration()), errs.ErrInvalidInterval)
	}

	if start.Before(now.Add(sched.MinLeadTime())) {
		return booking.TimeSlot{}, errs.ErrPastOrTooSoon
	}
	if !bypassAdvanceWindow && start.After(now.Add(sched.MaxAdvance())) {
		return booking.TimeSlot{}, errs.ErrAdvanceWindowExceeded
	}

	if block := sched.CheckBookable(svc, slot.Interval()); block != nil {
		return booking.TimeSlot{}, errs.Mark(errs.New(block.Reason.Message()), errs.ErrOffTime)
	}

	return slot, nil
}

// checkCapacity recomputes remaining capacity from current storage state.
// exclude skips one occupant, used when rescheduling an appointment so it
// does not collide with itself.
func checkCapacity(ctx context.Context, reads shared.CommandReads, sched *schedule.BusinessSchedule, svc schedule.Service, slot schedule.Interval, now time.Time, exclude uuid.UUID) error {
	window := schedule.PrefilterWindow(svc, slot)
	occupants, err := reads.OccupantsInRange(ctx, sched.BusinessID(), svc.ID(), window)
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	schedule.ExpandOccupants(svc, occupants)

	if schedule.Remaining(svc.Expand(slot), occupants, sched.CapacityFor(svc), now, exclude) < 1 {
		return errs.ErrCapacityExceeded
	}
	return nil
}
