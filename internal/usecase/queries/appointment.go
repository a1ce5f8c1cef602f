package queries

import (
	"context"
	"time"

	"slotbook/internal/infra"
	"slotbook/internal/pkg/errs"

	"github.com/google/uuid"
)

type AppointmentReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*AppointmentView, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID, from, to time.Time) ([]*AppointmentView, error)
}

type AppointmentQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*AppointmentView, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID, from, to time.Time) ([]*AppointmentView, error)
}

type appointmentQueriesImpl struct {
	store AppointmentReadStore
}

func NewAppointmentQueries(store AppointmentReadStore) AppointmentQueries {
	return &appointmentQueriesImpl{store: store}
}

func (q *appointmentQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*AppointmentView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrAppointmentNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return view, nil
}

func (q *appointmentQueriesImpl) ListByBusiness(ctx context.Context, businessID uuid.UUID, from, to time.Time) ([]*AppointmentView, error) {
	if !to.After(from) {
		return nil, errs.ErrInvalidInterval
	}
	views, err := q.store.ListByBusiness(ctx, businessID, from, to)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return views, nil
}
