package uow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"hash/fnv"
	"log/slog"
	"time"

	"slotbook/internal/domain/booking"
	"slotbook/internal/domain/reservation"
	"slotbook/internal/domain/schedule"
	"slotbook/internal/infra/db"
	"slotbook/internal/infra/readstore"
	"slotbook/internal/infra/repository"
	"slotbook/internal/pkg/errs"
	"slotbook/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"

	secondsPerDay = 86400
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

type PostgresUoW struct {
	pool *pgxpool.Pool
}

func NewPostgresUoW(pool *pgxpool.Pool) shared.UnitOfWork {
	return &PostgresUoW{pool: pool}
}

// ReadCommitted prevents dirty reads while allowing concurrent writes
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, nil, fn)
}

// WithinSlotLock serializes capacity checks per business and day. Each day
// bucket the interval touches maps to one advisory lock; locks are taken in
// ascending order so two writers never deadlock on overlapping spans, while
// writers on disjoint days proceed in parallel.
func (u *PostgresUoW) WithinSlotLock(ctx context.Context, businessID uuid.UUID, iv schedule.Interval, fn func(ctx context.Context, tx shared.Tx) error) error {
	keys := slotLockKeys(businessID, iv)
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, keys, fn)
}

func (u *PostgresUoW) Reads() shared.CommandReads {
	return &commandReads{dbtx: u.pool}
}

type lockKey struct {
	business int32
	day      int32
}

func slotLockKeys(businessID uuid.UUID, iv schedule.Interval) []lockKey {
	h := fnv.New32a()
	h.Write(businessID[:])
	business := int32(h.Sum32()) // #nosec G115 -- wraparound is fine for a lock key

	firstDay := int32(iv.Start.UTC().Unix() / secondsPerDay)
	lastDay := int32(iv.End.UTC().Add(-time.Nanosecond).Unix() / secondsPerDay)

	keys := make([]lockKey, 0, int(lastDay-firstDay)+1)
	for day := firstDay; day <= lastDay; day++ {
		keys = append(keys, lockKey{business: business, day: day})
	}
	return keys
}

// Avoids defer accumulation in retry loops to prevent connection leaks
func (u *PostgresUoW) runInTxWithOptions(ctx context.Context, options pgx.TxOptions, locks []lockKey, fn func(ctx context.Context, tx shared.Tx) error) error {
	const maxRetries = 3
	base := 100 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		pgxTx, err := u.pool.BeginTx(ctx, options)
		if err != nil {
			return errs.Mark(err, errTransactionBegin)
		}

		err = acquireLocks(ctx, pgxTx, locks)
		if err == nil {
			err = fn(ctx, &pgTx{dbtx: pgxTx})
		}
		if err == nil {
			if err = pgxTx.Commit(ctx); err == nil {
				return nil
			}
			err = errs.Mark(err, errTransactionCommit)
		}

		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("rollback failed", "attempt", attempt+1, "error", rollbackErr.Error())
			}
		}

		if !shouldRetry(err, attempt, maxRetries) {
			if attempt == maxRetries {
				slog.Error("transaction failed after max retries",
					"attempts", attempt+1,
					"error", err.Error())
				return errs.Mark(err, errMaxRetriesExceeded)
			}
			return err
		}

		waitTime := calculateBackoff(attempt, base)

		slog.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return errMaxRetriesExceeded
}

func acquireLocks(ctx context.Context, tx pgx.Tx, locks []lockKey) error {
	for _, key := range locks {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, key.business, key.day); err != nil {
			return errs.Wrap(err, "failed to acquire slot lock")
		}
	}
	return nil
}

func shouldRetry(err error, attempt, maxRetries int) bool {
	return isRetryableError(err) && attempt < maxRetries
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Fallback to a simple calculation if crypto/rand fails
		return 0
	}
	// Safe conversion: mask high bit to ensure positive int64
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	// #nosec G115 -- Intentionally safe conversion after masking
	return int64(uval) % n
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected:
		return true
	default:
		return false
	}
}

type pgTx struct {
	dbtx db.DBTX

	// Lazy-initialized repositories
	appointmentRepo shared.AppointmentRepository
	reservationRepo shared.ReservationRepository
	auditRepo       shared.AuditRepository
	commandReads    shared.CommandReads
}

func (t *pgTx) Appointments() shared.AppointmentRepository {
	if t.appointmentRepo == nil {
		t.appointmentRepo = repository.NewAppointmentRepository(t.dbtx)
	}
	return t.appointmentRepo
}

func (t *pgTx) Reservations() shared.ReservationRepository {
	if t.reservationRepo == nil {
		t.reservationRepo = repository.NewReservationRepository(t.dbtx)
	}
	return t.reservationRepo
}

func (t *pgTx) Audit() shared.AuditRepository {
	if t.auditRepo == nil {
		t.auditRepo = repository.NewAuditRepository(t.dbtx)
	}
	return t.auditRepo
}

func (t *pgTx) Reads() shared.CommandReads {
	if t.commandReads == nil {
		t.commandReads = &commandReads{dbtx: t.dbtx}
	}
	return t.commandReads
}

type commandReads struct {
	dbtx db.DBTX

	// Lazy-initialized readstores
	scheduleStore    *readstore.ScheduleReadStore
	occupantStore    *readstore.OccupantReadStore
	reservationStore *readstore.ReservationReadStore
	appointmentStore *readstore.AppointmentReadStore
}

func (c *commandReads) schedules() *readstore.ScheduleReadStore {
	if c.scheduleStore == nil {
		c.scheduleStore = readstore.NewScheduleReadStore(c.dbtx)
	}
	return c.scheduleStore
}

func (c *commandReads) occupants() *readstore.OccupantReadStore {
	if c.occupantStore == nil {
		c.occupantStore = readstore.NewOccupantReadStore(c.dbtx)
	}
	return c.occupantStore
}

func (c *commandReads) reservations() *readstore.ReservationReadStore {
	if c.reservationStore == nil {
		c.reservationStore = readstore.NewReservationReadStore(c.dbtx)
	}
	return c.reservationStore
}

func (c *commandReads) appointments() *readstore.AppointmentReadStore {
	if c.appointmentStore == nil {
		c.appointmentStore = readstore.NewAppointmentReadStore(c.dbtx)
	}
	return c.appointmentStore
}

func (c *commandReads) ScheduleByBusiness(ctx context.Context, businessID uuid.UUID) (*schedule.BusinessSchedule, error) {
	return c.schedules().ScheduleByBusiness(ctx, businessID)
}

func (c *commandReads) ServiceByID(ctx context.Context, businessID, serviceID uuid.UUID) (schedule.Service, error) {
	return c.schedules().ServiceByID(ctx, businessID, serviceID)
}

func (c *commandReads) OccupantsInRange(ctx context.Context, businessID, serviceID uuid.UUID, window schedule.Interval) ([]schedule.Occupant, error) {
	return c.occupants().OccupantsInRange(ctx, businessID, serviceID, window)
}

func (c *commandReads) ReservationByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	return c.reservations().ReservationByID(ctx, id)
}

func (c *commandReads) ReservationByKey(ctx context.Context, businessID, idempotencyKey uuid.UUID) (*reservation.Reservation, error) {
	return c.reservations().ReservationByKey(ctx, businessID, idempotencyKey)
}

func (c *commandReads) AppointmentByID(ctx context.Context, id uuid.UUID) (*booking.Appointment, error) {
	return c.appointments().AppointmentByID(ctx, id)
}
