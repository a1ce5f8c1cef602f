package repository

import (
	"context"
	"time"

	"slotbook/internal/domain/reservation"
	"slotbook/internal/infra"
	"slotbook/internal/infra/db"

	"github.com/google/uuid"
)

type ReservationRepository struct {
	db db.DBTX
}

func NewReservationRepository(dbtx db.DBTX) *ReservationRepository {
	return &ReservationRepository{db: dbtx}
}

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	const query = `
		INSERT INTO reservations (
			id, business_id, service_id, starts_at, ends_at, idempotency_key, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		res.ID(),
		res.BusinessID(),
		res.ServiceID(),
		res.Slot().Start(),
		res.Slot().End(),
		res.IdempotencyKey(),
		res.ExpiresAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create reservation", err)
	}
	return nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return false, infra.WrapRepoErr("failed to delete reservation", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ReservationRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM reservations WHERE expires_at <= $1`, before)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to purge expired reservations", err)
	}
	return tag.RowsAffected(), nil
}
