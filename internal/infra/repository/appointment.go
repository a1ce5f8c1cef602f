package repository

import (
	"context"

	"slotbook/internal/domain/booking"
	"slotbook/internal/infra"
	"slotbook/internal/infra/db"

	"github.com/google/uuid"
)

type AppointmentRepository struct {
	db db.DBTX
}

func NewAppointmentRepository(dbtx db.DBTX) *AppointmentRepository {
	return &AppointmentRepository{db: dbtx}
}

func (r *AppointmentRepository) Create(ctx context.Context, appt *booking.Appointment) error {
	const query = `
		INSERT INTO appointments (
			id, business_id, service_id, customer_id, guest_name, guest_email,
			starts_at, ends_at, status, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	customer := appt.Customer()
	_, err := r.db.Exec(ctx, query,
		appt.ID(),
		appt.BusinessID(),
		appt.ServiceID(),
		customer.CustomerID,
		nullIfEmpty(customer.GuestName),
		nullIfEmpty(customer.GuestEmail),
		appt.Slot().Start(),
		appt.Slot().End(),
		string(appt.Status()),
		appt.Version(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create appointment", err)
	}
	return nil
}

// UpdateSlot moves the appointment only when the stored version and status
// still match what the caller validated against.
func (r *AppointmentRepository) UpdateSlot(ctx context.Context, id uuid.UUID, slot booking.TimeSlot, expectedVersion int32) (bool, error) {
	const query = `
		UPDATE appointments
		   SET starts_at = $1, ends_at = $2, version = version + 1, updated_at = now()
		 WHERE id = $3
		   AND version = $4
		   AND status = 'confirmed'
		   AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, slot.Start(), slot.End(), id, expectedVersion)
	if err != nil {
		return false, infra.WrapRepoErr("failed to update appointment slot", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to booking.Status) (bool, error) {
	const query = `
		UPDATE appointments
		   SET status = $1, version = version + 1, updated_at = now()
		 WHERE id = $2
		   AND status = $3
		   AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, string(to), id, string(from))
	if err != nil {
		return false, infra.WrapRepoErr("failed to update appointment status", err)
	}
	return tag.RowsAffected() == 1, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
