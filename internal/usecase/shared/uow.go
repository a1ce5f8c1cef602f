package shared

import (
	"context"
	"time"

	"slotbook/internal/domain/audit"
	"slotbook/internal/domain/booking"
	"slotbook/internal/domain/reservation"
	"slotbook/internal/domain/schedule"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: plain read-committed transaction.
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinSlotLock: transaction holding advisory locks for every day
	// bucket the interval touches, so concurrent capacity checks against
	// overlapping slots of one business are strictly serialized. Disjoint
	// buckets proceed in parallel.
	WithinSlotLock(ctx context.Context, businessID uuid.UUID, iv schedule.Interval, fn func(ctx context.Context, tx Tx) error) error
	// Reads: command-side reads outside any transaction.
	Reads() CommandReads
}

type Tx interface {
	Appointments() AppointmentRepository
	Reservations() ReservationRepository
	Audit() AuditRepository
	Reads() CommandReads
}

// CommandReads are the snapshot reads the write paths validate against.
// When obtained from a Tx they observe the transaction, which is what makes
// the locked capacity check-and-insert linearizable.
type CommandReads interface {
	ScheduleByBusiness(ctx context.Context, businessID uuid.UUID) (*schedule.BusinessSchedule, error)
	ServiceByID(ctx context.Context, businessID, serviceID uuid.UUID) (schedule.Service, error)
	// OccupantsInRange returns confirmed appointments and unexpired holds
	// for one service whose raw slot interval overlaps the window. Canceled,
	// no-show and soft-deleted appointments are excluded at the source.
	OccupantsInRange(ctx context.Context, businessID, serviceID uuid.UUID, window schedule.Interval) ([]schedule.Occupant, error)
	ReservationByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	ReservationByKey(ctx context.Context, businessID, idempotencyKey uuid.UUID) (*reservation.Reservation, error)
	AppointmentByID(ctx context.Context, id uuid.UUID) (*booking.Appointment, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, appt *booking.Appointment) error
	// UpdateSlot performs the version-conditioned reschedule write; false
	// means the condition (version + confirmed status) did not hold.
	UpdateSlot(ctx context.Context, id uuid.UUID, slot booking.TimeSlot, expectedVersion int32) (bool, error)
	// UpdateStatus is conditioned on the current status; false means the
	// appointment was not in the expected state.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to booking.Status) (bool, error)
}

type ReservationRepository interface {
	Create(ctx context.Context, res *reservation.Reservation) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

type AuditRepository interface {
	Append(ctx context.Context, entry audit.Entry) error
}
