package repository

import (
	"context"

	"slotbook/internal/domain/audit"
	"slotbook/internal/infra"
	"slotbook/internal/infra/db"
)

type AuditRepository struct {
	db db.DBTX
}

func NewAuditRepository(dbtx db.DBTX) *AuditRepository {
	return &AuditRepository{db: dbtx}
}

func (r *AuditRepository) Append(ctx context.Context, entry audit.Entry) error {
	const query = `
		INSERT INTO audit_log (id, appointment_id, action, actor_id, old_state, new_state)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.AppointmentID,
		string(entry.Action),
		entry.ActorID,
		nullIfEmptyJSON(entry.OldState),
		nullIfEmptyJSON(entry.NewState),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to append audit entry", err)
	}
	return nil
}

func nullIfEmptyJSON(raw []byte) []byte {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
