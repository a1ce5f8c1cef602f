//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// Fixed reference IDs so e2e tests can address the seeded business and
// services without re-querying.
var (
	TestBusinessID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	// 30 minutes, no buffers, inherits the business capacity of 2.
	TestServiceID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	// 60 minutes with 30-minute buffers on both sides, capacity 1.
	TestBufferedServiceID = uuid.MustParse("33333333-3333-3333-3333-333333333333")
)

// inserts basic reference data needed by tests: one business open Monday
// through Friday 09:00-17:00 on a 30-minute grain, and two services.
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO businesses (id, name, timezone, grain_minutes, min_lead_time_minutes, max_advance_minutes, max_concurrent)
		VALUES ($1, 'Test Clinic', 'UTC', 30, 60, 43200, 2)
		ON CONFLICT (id) DO NOTHING;
	`, TestBusinessID)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO availability_rules (business_id, weekday, open_minutes, close_minutes)
		SELECT $1, weekday, 540, 1020
		FROM generate_series(1, 5) AS weekday
		ON CONFLICT DO NOTHING;
	`, TestBusinessID)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO services (id, business_id, name, duration_minutes, buffer_before_minutes, buffer_after_minutes, max_concurrent)
		VALUES
		    ($2, $1, 'Consultation', 30, 0, 0, 0),
		    ($3, $1, 'Treatment', 60, 30, 30, 1)
		ON CONFLICT (id) DO NOTHING;
	`, TestBusinessID, TestServiceID, TestBufferedServiceID)
	return err
}

// CreateTestAppointment inserts a confirmed appointment directly, bypassing
// the API, for seeding contention scenarios.
func CreateTestAppointment(t *testing.T, db DBLike, serviceID uuid.UUID, startsAt, endsAt time.Time) uuid.UUID {
	t.Helper()

	id := uuid.New()
	ctx := context.Background()
	_, err := db.Exec(ctx, `
		INSERT INTO appointments (id, business_id, service_id, customer_id, starts_at, ends_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'confirmed')`,
		id, TestBusinessID, serviceID, uuid.New(), startsAt, endsAt)
	require.NoError(t, err)
	return id
}

// CreateTestHold inserts a reservation row with an explicit expiry so tests
// can seed live or already-expired holds.
func CreateTestHold(t *testing.T, db DBLike, serviceID uuid.UUID, startsAt, endsAt, expiresAt time.Time) uuid.UUID {
	t.Helper()

	id := uuid.New()
	ctx := context.Background()
	_, err := db.Exec(ctx, `
		INSERT INTO reservations (id, business_id, service_id, starts_at, ends_at, idempotency_key, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, TestBusinessID, serviceID, startsAt, endsAt, uuid.New(), expiresAt)
	require.NoError(t, err)
	return id
}

// AddHoliday closes the seeded business on one date.
func AddHoliday(t *testing.T, db DBLike, date time.Time) {
	t.Helper()

	ctx := context.Background()
	_, err := db.Exec(ctx, `
		INSERT INTO availability_exceptions (business_id, date, closed)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (business_id, date) DO NOTHING`,
		TestBusinessID, date)
	require.NoError(t, err)
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
