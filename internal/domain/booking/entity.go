package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoCustomer              = errors.New("appointment requires a customer or guest contact")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrAppointmentDeleted      = errors.New("appointment is deleted")
)

// Appointment is a confirmed booking. It is never physically deleted;
// cancellation and soft-deletion leave the row for audit history. The
// version field is the optimistic-lock token surfaced to callers.
type Appointment struct {
	id         uuid.UUID
	businessID uuid.UUID
	serviceID  uuid.UUID
	customer   Customer
	slot       TimeSlot
	status     Status
	version    int32
	deletedAt  *time.Time
	createdAt  time.Time
	updatedAt  time.Time
}

func NewAppointment(businessID, serviceID uuid.UUID, customer Customer, slot TimeSlot) (*Appointment, error) {
	if customer.IsGuest() && customer.GuestEmail == "" {
		return nil, ErrNoCustomer
	}
	return &Appointment{
		id:         uuid.New(),
		businessID: businessID,
		serviceID:  serviceID,
		customer:   customer,
		slot:       slot,
		status:     StatusConfirmed,
		version:    1,
	}, nil
}

func ReconstructAppointment(
	id, businessID, serviceID uuid.UUID,
	customer Customer,
	slot TimeSlot,
	status Status,
	version int32,
	deletedAt *time.Time,
	createdAt, updatedAt time.Time,
) *Appointment {
	return &Appointment{
		id:         id,
		businessID: businessID,
		serviceID:  serviceID,
		customer:   customer,
		slot:       slot,
		status:     status,
		version:    version,
		deletedAt:  deletedAt,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

func (a *Appointment) ID() uuid.UUID         { return a.id }
func (a *Appointment) BusinessID() uuid.UUID { return a.businessID }
func (a *Appointment) ServiceID() uuid.UUID  { return a.serviceID }
func (a *Appointment) Customer() Customer    { return a.customer }
func (a *Appointment) Slot() TimeSlot        { return a.slot }
func (a *Appointment) Status() Status        { return a.status }
func (a *Appointment) Version() int32        { return a.version }
func (a *Appointment) DeletedAt() *time.Time { return a.deletedAt }
func (a *Appointment) CreatedAt() time.Time  { return a.createdAt }
func (a *Appointment) UpdatedAt() time.Time  { return a.updatedAt }

func (a *Appointment) IsDeleted() bool {
	return a.deletedAt != nil
}

// Reschedule moves the appointment to a new slot. Only confirmed,
// non-deleted appointments may move; the version bump itself happens in the
// conditioned storage update.
func (a *Appointment) Reschedule(newSlot TimeSlot) error {
	if a.IsDeleted() {
		return ErrAppointmentDeleted
	}
	if a.status != StatusConfirmed {
		return ErrInvalidStatusTransition
	}
	a.slot = newSlot
	a.version++
	return nil
}

// TransitionTo applies a status change, enforcing the state machine:
// confirmed -> {completed, canceled, no_show}, all terminal.
func (a *Appointment) TransitionTo(next Status) error {
	if a.IsDeleted() {
		return ErrAppointmentDeleted
	}
	if !a.status.CanTransitionTo(next) {
		return ErrInvalidStatusTransition
	}
	a.status = next
	return nil
}

func (a *Appointment) Cancel() error     { return a.TransitionTo(StatusCanceled) }
func (a *Appointment) Complete() error   { return a.TransitionTo(StatusCompleted) }
func (a *Appointment) MarkNoShow() error { return a.TransitionTo(StatusNoShow) }
