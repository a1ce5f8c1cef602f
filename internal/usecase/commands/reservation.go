package commands

import (
	"context"
	"log/slog"
	"time"

	"slotbook/internal/domain/booking"
	"slotbook/internal/domain/reservation"
	"slotbook/internal/domain/schedule"
	"slotbook/internal/infra"
	"slotbook/internal/pkg/clock"
	"slotbook/internal/pkg/errs"
	"slotbook/internal/usecase/shared"

	"github.com/google/uuid"
)

type CreateReservationParams struct {
	BusinessID     uuid.UUID
	ServiceID      uuid.UUID
	Start          time.Time
	End            time.Time
	IdempotencyKey uuid.UUID
}

type CreateReservationResult struct {
	Reservation *reservation.Reservation
	IsReplayed  bool
}

type ReservationCommands interface {
	CreateReservation(ctx context.Context, params CreateReservationParams) (*CreateReservationResult, error)
	Release(ctx context.Context, id uuid.UUID) error
}

type reservationUseCaseImpl struct {
	uow       shared.UnitOfWork
	publisher EventPublisher
	clock     clock.Clock
	ttl       time.Duration
}

func NewReservationUseCase(uow shared.UnitOfWork, publisher EventPublisher, clk clock.Clock, ttl time.Duration) ReservationCommands {
	return &reservationUseCaseImpl{
		uow:       uow,
		publisher: publisher,
		clock:     clk,
		ttl:       ttl,
	}
}

// CreateReservation places a short-lived hold on a slot. The capacity check
// and the insert run inside one slot-locked transaction, so at most
// `capacity` live occupants can ever overlap a given instant.
func (r *reservationUseCaseImpl) CreateReservation(ctx context.Context, params CreateReservationParams) (*CreateReservationResult, error) {
	if params.IdempotencyKey == uuid.Nil {
		return nil, errs.ErrIdempotencyKeyRequired
	}

	// Replay wins before any validation: a hold taken while its slot was
	// still bookable stays replayable until it expires, even once the slot
	// start has drifted inside the minimum lead time.
	existing, err := r.uow.Reads().ReservationByKey(ctx, params.BusinessID, params.IdempotencyKey)
	if err != nil && !infra.IsKind(err, infra.KindNotFound) {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if existing != nil && existing.IsLive(r.clock.Now()) {
		return &CreateReservationResult{Reservation: existing, IsReplayed: true}, nil
	}

	sched, svc, err := loadScheduleAndService(ctx, r.uow.Reads(), params.BusinessID, params.ServiceID)
	if err != nil {
		return nil, err
	}

	slot, err := validateSlot(sched, svc, params.Start, params.End, r.clock.Now(), false)
	if err != nil {
		return nil, err
	}

	var result *CreateReservationResult
	lockWindow := schedule.PrefilterWindow(svc, slot.Interval())
	err = r.uow.WithinSlotLock(ctx, params.BusinessID, lockWindow, func(ctx context.Context, tx shared.Tx) error {
		now := r.clock.Now()

		// Re-checked under the lock: a concurrent request with the same key
		// may have taken the hold since the unlocked pre-check.
		existing, err := tx.Reads().ReservationByKey(ctx, params.BusinessID, params.IdempotencyKey)
		if err != nil && !infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if existing != nil {
			if existing.IsLive(now) {
				result = &CreateReservationResult{Reservation: existing, IsReplayed: true}
				return nil
			}
			// Expired hold with the same key: drop it and take a fresh one.
			if _, err := tx.Reservations().Delete(ctx, existing.ID()); err != nil {
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
		}

		if err := checkCapacity(ctx, tx.Reads(), sched, svc, slot.Interval(), now, uuid.Nil); err != nil {
			return err
		}

		res, err := reservation.NewReservation(params.BusinessID, params.ServiceID, slot, params.IdempotencyKey, now, r.ttl)
		if err != nil {
			return errs.Mark(err, errs.ErrValidation)
		}
		if err := tx.Reservations().Create(ctx, res); err != nil {
			if infra.IsKind(err, infra.KindCapacityExceeded) {
				return errs.ErrCapacityExceeded
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		result = &CreateReservationResult{Reservation: res, IsReplayed: false}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.IsReplayed {
		r.notify(ctx, EventReservationCreated, params.BusinessID, params.ServiceID, result.Reservation.ID(), slot)
	}
	return result, nil
}

// Release drops a hold before it expires. Releasing an already expired or
// swept hold reports ErrReservationNotFound.
func (r *reservationUseCaseImpl) Release(ctx context.Context, id uuid.UUID) error {
	var released *reservation.Reservation
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := tx.Reads().ReservationByID(ctx, id)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrReservationNotFound
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		deleted, err := tx.Reservations().Delete(ctx, id)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if !deleted {
			return errs.ErrReservationNotFound
		}
		released = res
		return nil
	})
	if err != nil {
		return err
	}

	r.notify(ctx, EventReservationReleased, released.BusinessID(), released.ServiceID(), released.ID(), released.Slot())
	return nil
}

func (r *reservationUseCaseImpl) notify(ctx context.Context, eventType EventType, businessID, serviceID, subjectID uuid.UUID, slot booking.TimeSlot) {
	event := BookingEvent{
		Type:       eventType,
		BusinessID: businessID,
		ServiceID:  serviceID,
		SubjectID:  subjectID,
		Start:      slot.Start(),
		End:        slot.End(),
		OccurredAt: r.clock.Now(),
	}
	if err := r.publisher.Publish(ctx, event); err != nil {
		slog.Warn("failed to publish booking event", "type", string(eventType), "subject_id", subjectID, "error", err)
	}
}
