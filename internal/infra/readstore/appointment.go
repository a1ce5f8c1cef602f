package readstore

import (
	"context"
	"time"

	"slotbook/internal/domain/booking"
	"slotbook/internal/infra"
	"slotbook/internal/infra/db"
	"slotbook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type AppointmentReadStore struct {
	db db.DBTX
}

func NewAppointmentReadStore(dbtx db.DBTX) *AppointmentReadStore {
	return &AppointmentReadStore{db: dbtx}
}

// AppointmentByID reconstructs the write-side entity, soft-deleted rows
// included; the caller decides how deletion surfaces.
func (a *AppointmentReadStore) AppointmentByID(ctx context.Context, id uuid.UUID) (*booking.Appointment, error) {
	const query = `
		SELECT id, business_id, service_id, customer_id, guest_name, guest_email,
		       starts_at, ends_at, status, version, deleted_at, created_at, updated_at
		  FROM appointments
		 WHERE id = $1`

	var (
		apptID, businessID, serviceID uuid.UUID
		customerID                    *uuid.UUID
		guestName, guestEmail         *string
		start, end                    time.Time
		status                        string
		version                       int32
		deletedAt                     *time.Time
		createdAt, updatedAt          time.Time
	)
	err := a.db.QueryRow(ctx, query, id).Scan(
		&apptID, &businessID, &serviceID, &customerID, &guestName, &guestEmail,
		&start, &end, &status, &version, &deletedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("appointment not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load appointment", err)
	}

	customer := booking.Customer{CustomerID: customerID}
	if guestName != nil {
		customer.GuestName = *guestName
	}
	if guestEmail != nil {
		customer.GuestEmail = *guestEmail
	}

	return booking.ReconstructAppointment(
		apptID, businessID, serviceID,
		customer,
		booking.ReconstructTimeSlot(start, end),
		booking.Status(status),
		version,
		deletedAt,
		createdAt, updatedAt,
	), nil
}

const appointmentViewColumns = `
	a.id, a.business_id, a.service_id, s.name, a.customer_id, a.guest_name,
	a.guest_email, a.starts_at, a.ends_at, a.status, a.version, a.created_at, a.updated_at`

func (a *AppointmentReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.AppointmentView, error) {
	query := `
		SELECT ` + appointmentViewColumns + `
		  FROM appointments a
		  JOIN services s ON s.id = a.service_id
		 WHERE a.id = $1 AND a.deleted_at IS NULL`

	view, err := scanAppointmentView(a.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("appointment not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find appointment by ID", err)
	}
	return view, nil
}

func (a *AppointmentReadStore) ListByBusiness(ctx context.Context, businessID uuid.UUID, from, to time.Time) ([]*queries.AppointmentView, error) {
	query := `
		SELECT ` + appointmentViewColumns + `
		  FROM appointments a
		  JOIN services s ON s.id = a.service_id
		 WHERE a.business_id = $1
		   AND a.starts_at >= $2 AND a.starts_at < $3
		   AND a.deleted_at IS NULL
		 ORDER BY a.starts_at, a.id`

	rows, err := a.db.Query(ctx, query, businessID, from, to)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list appointments", err)
	}
	defer rows.Close()

	var views []*queries.AppointmentView
	for rows.Next() {
		view, err := scanAppointmentView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan appointment", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read appointments", err)
	}
	return views, nil
}

func scanAppointmentView(row pgx.Row) (*queries.AppointmentView, error) {
	var view queries.AppointmentView
	err := row.Scan(
		&view.ID, &view.BusinessID, &view.ServiceID, &view.ServiceName,
		&view.CustomerID, &view.GuestName, &view.GuestEmail,
		&view.Start, &view.End, &view.Status, &view.Version,
		&view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &view, nil
}
