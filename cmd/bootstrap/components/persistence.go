package components

import (
	"slotbook/internal/infra/db"
	"slotbook/internal/infra/readstore"
	"slotbook/internal/infra/uow"
	"slotbook/internal/usecase/queries"
	"slotbook/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		uow.NewPostgresUoW,
		func(u shared.UnitOfWork) shared.CommandReads { return u.Reads() },
		fx.Annotate(
			readstore.NewReservationReadStore,
			fx.As(new(queries.ReservationReadStore)),
		),
		fx.Annotate(
			readstore.NewAppointmentReadStore,
			fx.As(new(queries.AppointmentReadStore)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
