package readstore

import (
	"context"
	"time"

	"slotbook/internal/domain/schedule"
	"slotbook/internal/infra"
	"slotbook/internal/infra/db"

	"github.com/google/uuid"
)

// OccupantReadStore returns everything that consumes capacity for a service
// in a time window: confirmed and completed appointments plus reservation
// holds. Liveness of holds is left to the domain so that the same snapshot
// can be evaluated at different instants.
type OccupantReadStore struct {
	db db.DBTX
}

func NewOccupantReadStore(dbtx db.DBTX) *OccupantReadStore {
	return &OccupantReadStore{db: dbtx}
}

func (s *OccupantReadStore) OccupantsInRange(ctx context.Context, businessID, serviceID uuid.UUID, window schedule.Interval) ([]schedule.Occupant, error) {
	const query = `
		SELECT id, starts_at, ends_at, NULL::timestamptz AS expires_at
		  FROM appointments
		 WHERE business_id = $1 AND service_id = $2
		   AND deleted_at IS NULL
		   AND status IN ('confirmed', 'completed')
		   AND starts_at < $4 AND $3 < ends_at
		UNION ALL
		SELECT id, starts_at, ends_at, expires_at
		  FROM reservations
		 WHERE business_id = $1 AND service_id = $2
		   AND starts_at < $4 AND $3 < ends_at`

	rows, err := s.db.Query(ctx, query, businessID, serviceID, window.Start, window.End)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load occupants", err)
	}
	defer rows.Close()

	var occupants []schedule.Occupant
	for rows.Next() {
		var (
			id         uuid.UUID
			start, end time.Time
			expiresAt  *time.Time
		)
		if err := rows.Scan(&id, &start, &end, &expiresAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan occupant", err)
		}
		occupants = append(occupants, schedule.Occupant{
			ID:        id,
			Interval:  schedule.Interval{Start: start, End: end},
			ExpiresAt: expiresAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read occupants", err)
	}
	return occupants, nil
}
