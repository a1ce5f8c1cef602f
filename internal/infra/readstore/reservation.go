package readstore

import (
	"context"
	"time"

	"slotbook/internal/domain/booking"
	"slotbook/internal/domain/reservation"
	"slotbook/internal/infra"
	"slotbook/internal/infra/db"
	"slotbook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ReservationReadStore struct {
	db db.DBTX
}

func NewReservationReadStore(dbtx db.DBTX) *ReservationReadStore {
	return &ReservationReadStore{db: dbtx}
}

const reservationColumns = `id, business_id, service_id, starts_at, ends_at, idempotency_key, expires_at, created_at`

func (r *ReservationReadStore) ReservationByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	return r.scanReservation(r.db.QueryRow(ctx, query, id), "reservation not found")
}

func (r *ReservationReadStore) ReservationByKey(ctx context.Context, businessID, idempotencyKey uuid.UUID) (*reservation.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE business_id = $1 AND idempotency_key = $2`
	return r.scanReservation(r.db.QueryRow(ctx, query, businessID, idempotencyKey), "reservation not found for key")
}

func (r *ReservationReadStore) scanReservation(row pgx.Row, notFoundMsg string) (*reservation.Reservation, error) {
	var (
		id, businessID, serviceID uuid.UUID
		start, end                time.Time
		key                       uuid.UUID
		expiresAt, createdAt      time.Time
	)
	err := row.Scan(&id, &businessID, &serviceID, &start, &end, &key, &expiresAt, &createdAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr(notFoundMsg, err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load reservation", err)
	}

	return reservation.ReconstructReservation(
		id, businessID, serviceID,
		booking.ReconstructTimeSlot(start, end),
		key, expiresAt, createdAt,
	), nil
}

// FindByID serves the public reservation view. An expired hold is
// indistinguishable from a missing one.
func (r *ReservationReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ReservationView, error) {
	const query = `
		SELECT id, business_id, service_id, starts_at, ends_at, expires_at, created_at
		  FROM reservations
		 WHERE id = $1 AND expires_at > now()`

	var view queries.ReservationView
	err := r.db.QueryRow(ctx, query, id).Scan(
		&view.ID, &view.BusinessID, &view.ServiceID,
		&view.Start, &view.End, &view.ExpiresAt, &view.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation by ID", err)
	}
	return &view, nil
}
