package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"slotbook/internal/domain/audit"
	"slotbook/internal/domain/booking"
	"slotbook/internal/domain/identity"
	"slotbook/internal/domain/schedule"
	"slotbook/internal/infra"
	"slotbook/internal/pkg/clock"
	"slotbook/internal/pkg/errs"
	"slotbook/internal/usecase/shared"

	"github.com/google/uuid"
)

type CommitReservationParams struct {
	ReservationID uuid.UUID
	Customer      booking.Customer
	ActorID       *uuid.UUID
}

type CreateAppointmentParams struct {
	BusinessID uuid.UUID
	ServiceID  uuid.UUID
	Start      time.Time
	End        time.Time
	Customer   booking.Customer
	Actor      identity.Actor
}

type RescheduleParams struct {
	AppointmentID   uuid.UUID
	Start           time.Time
	End             time.Time
	ExpectedVersion int32
	Actor           identity.Actor
}

type AppointmentCommands interface {
	CommitReservation(ctx context.Context, params CommitReservationParams) (*booking.Appointment, error)
	CreateDirect(ctx context.Context, params CreateAppointmentParams) (*booking.Appointment, error)
	Reschedule(ctx context.Context, params RescheduleParams) (*booking.Appointment, error)
	Cancel(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) error
	Complete(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) error
	MarkNoShow(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) error
}

type appointmentUseCaseImpl struct {
	uow       shared.UnitOfWork
	publisher EventPublisher
	clock     clock.Clock
}

func NewAppointmentUseCase(uow shared.UnitOfWork, publisher EventPublisher, clk clock.Clock) AppointmentCommands {
	return &appointmentUseCaseImpl{
		uow:       uow,
		publisher: publisher,
		clock:     clk,
	}
}

// CommitReservation converts a live hold into a confirmed appointment. The
// hold is deleted in the same transaction that inserts the appointment, so
// the occupant count for the slot never changes during the swap and no slot
// lock is needed.
func (a *appointmentUseCaseImpl) CommitReservation(ctx context.Context, params CommitReservationParams) (*booking.Appointment, error) {
	var appt *booking.Appointment
	err := a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := tx.Reads().ReservationByID(ctx, params.ReservationID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrReservationNotFound
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if !res.IsLive(a.clock.Now()) {
			return errs.ErrReservationNotFound
		}

		deleted, err := tx.Reservations().Delete(ctx, res.ID())
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if !deleted {
			// Lost a race with the expiry sweeper.
			return errs.ErrReservationNotFound
		}

		appt, err = booking.NewAppointment(res.BusinessID(), res.ServiceID(), params.Customer, res.Slot())
		if err != nil {
			return errs.Mark(err, errs.ErrValidation)
		}
		if err := tx.Appointments().Create(ctx, appt); err != nil {
			if infra.IsKind(err, infra.KindCapacityExceeded) {
				return errs.ErrCapacityExceeded
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		return appendAudit(ctx, tx, appt.ID(), audit.ActionCommit, params.ActorID, nil, snapshotOf(appt))
	})
	if err != nil {
		return nil, err
	}

	a.notify(ctx, EventAppointmentConfirmed, appt)
	return appt, nil
}

// CreateDirect books an appointment without a prior hold. Staff and admin
// actors may book past the advance window; off-time is enforced for everyone.
func (a *appointmentUseCaseImpl) CreateDirect(ctx context.Context, params CreateAppointmentParams) (*booking.Appointment, error) {
	sched, svc, err := loadScheduleAndService(ctx, a.uow.Reads(), params.BusinessID, params.ServiceID)
	if err != nil {
		return nil, err
	}

	bypass := params.Actor.Role.CanBypassAdvanceWindow()
	slot, err := validateSlot(sched, svc, params.Start, params.End, a.clock.Now(), bypass)
	if err != nil {
		return nil, err
	}

	var appt *booking.Appointment
	lockWindow := schedule.PrefilterWindow(svc, slot.Interval())
	err = a.uow.WithinSlotLock(ctx, params.BusinessID, lockWindow, func(ctx context.Context, tx shared.Tx) error {
		if err := checkCapacity(ctx, tx.Reads(), sched, svc, slot.Interval(), a.clock.Now(), uuid.Nil); err != nil {
			return err
		}

		appt, err = booking.NewAppointment(params.BusinessID, params.ServiceID, params.Customer, slot)
		if err != nil {
			return errs.Mark(err, errs.ErrValidation)
		}
		if err := tx.Appointments().Create(ctx, appt); err != nil {
			if infra.IsKind(err, infra.KindCapacityExceeded) {
				return errs.ErrCapacityExceeded
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		return appendAudit(ctx, tx, appt.ID(), audit.ActionCreate, actorIDOf(params.Actor), nil, snapshotOf(appt))
	})
	if err != nil {
		return nil, err
	}

	a.notify(ctx, EventAppointmentConfirmed, appt)
	return appt, nil
}

// Reschedule moves a confirmed appointment to a new slot. It takes no slot
// lock: the write is conditioned on the expected version, and the capacity
// trigger rejects the rare interleaving the optimistic check lets through.
func (a *appointmentUseCaseImpl) Reschedule(ctx context.Context, params RescheduleParams) (*booking.Appointment, error) {
	var appt *booking.Appointment
	err := a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		appt, err = a.loadAppointment(ctx, tx, params.AppointmentID)
		if err != nil {
			return err
		}
		if appt.Version() != params.ExpectedVersion {
			return errs.ErrConflict
		}

		sched, svc, err := loadScheduleAndService(ctx, tx.Reads(), appt.BusinessID(), appt.ServiceID())
		if err != nil {
			return err
		}

		bypass := params.Actor.Role.CanBypassAdvanceWindow()
		newSlot, err := validateSlot(sched, svc, params.Start, params.End, a.clock.Now(), bypass)
		if err != nil {
			return err
		}

		oldState := snapshotOf(appt)
		if err := appt.Reschedule(newSlot); err != nil {
			return mapTransitionErr(err)
		}

		if err := checkCapacity(ctx, tx.Reads(), sched, svc, newSlot.Interval(), a.clock.Now(), appt.ID()); err != nil {
			return err
		}

		ok, err := tx.Appointments().UpdateSlot(ctx, appt.ID(), newSlot, params.ExpectedVersion)
		if err != nil {
			if infra.IsKind(err, infra.KindCapacityExceeded) {
				return errs.ErrCapacityExceeded
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if !ok {
			return errs.ErrConflict
		}

		return appendAudit(ctx, tx, appt.ID(), audit.ActionReschedule, actorIDOf(params.Actor), oldState, snapshotOf(appt))
	})
	if err != nil {
		return nil, err
	}

	a.notify(ctx, EventAppointmentRescheduled, appt)
	return appt, nil
}

func (a *appointmentUseCaseImpl) Cancel(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) error {
	return a.transition(ctx, id, actorID, booking.StatusCanceled, audit.ActionCancel, EventAppointmentCanceled)
}

func (a *appointmentUseCaseImpl) Complete(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) error {
	return a.transition(ctx, id, actorID, booking.StatusCompleted, audit.ActionComplete, EventAppointmentCompleted)
}

func (a *appointmentUseCaseImpl) MarkNoShow(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) error {
	return a.transition(ctx, id, actorID, booking.StatusNoShow, audit.ActionNoShow, EventAppointmentNoShow)
}

func (a *appointmentUseCaseImpl) transition(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, target booking.Status, action audit.Action, eventType EventType) error {
	var appt *booking.Appointment
	err := a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		appt, err = a.loadAppointment(ctx, tx, id)
		if err != nil {
			return err
		}

		oldState := snapshotOf(appt)
		if err := appt.TransitionTo(target); err != nil {
			return mapTransitionErr(err)
		}

		ok, err := tx.Appointments().UpdateStatus(ctx, id, booking.StatusConfirmed, target)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if !ok {
			return errs.ErrConflict
		}

		return appendAudit(ctx, tx, id, action, actorID, oldState, snapshotOf(appt))
	})
	if err != nil {
		return err
	}

	a.notify(ctx, eventType, appt)
	return nil
}

func (a *appointmentUseCaseImpl) loadAppointment(ctx context.Context, tx shared.Tx, id uuid.UUID) (*booking.Appointment, error) {
	appt, err := tx.Reads().AppointmentByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrAppointmentNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if appt.IsDeleted() {
		return nil, errs.ErrAppointmentNotFound
	}
	return appt, nil
}

func (a *appointmentUseCaseImpl) notify(ctx context.Context, eventType EventType, appt *booking.Appointment) {
	event := BookingEvent{
		Type:       eventType,
		BusinessID: appt.BusinessID(),
		ServiceID:  appt.ServiceID(),
		SubjectID:  appt.ID(),
		Start:      appt.Slot().Start(),
		End:        appt.Slot().End(),
		OccurredAt: a.clock.Now(),
	}
	if err := a.publisher.Publish(ctx, event); err != nil {
		slog.Warn("failed to publish booking event", "type", string(eventType), "subject_id", appt.ID(), "error", err)
	}
}

func appendAudit(ctx context.Context, tx shared.Tx, appointmentID uuid.UUID, action audit.Action, actorID *uuid.UUID, oldState, newState *audit.Snapshot) error {
	entry, err := audit.NewEntry(appointmentID, action, actorID, oldState, newState)
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if err := tx.Audit().Append(ctx, entry); err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return nil
}

func snapshotOf(appt *booking.Appointment) *audit.Snapshot {
	return &audit.Snapshot{
		Status:  appt.Status().String(),
		Start:   appt.Slot().Start(),
		End:     appt.Slot().End(),
		Version: appt.Version(),
	}
}

func actorIDOf(actor identity.Actor) *uuid.UUID {
	if actor.ID == uuid.Nil {
		return nil
	}
	id := actor.ID
	return &id
}

func mapTransitionErr(err error) error {
	switch {
	case errors.Is(err, booking.ErrAppointmentDeleted):
		return errs.ErrAppointmentNotFound
	case errors.Is(err, booking.ErrInvalidStatusTransition):
		return errs.ErrInvalidStatusTransition
	default:
		return errs.Mark(err, errs.ErrValidation)
	}
}
