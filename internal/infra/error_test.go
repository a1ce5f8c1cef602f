//go:build unit

package infra_test

import (
	"errors"
	"testing"

	"slotbook/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestWrapRepoErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind infra.RepositoryErrorKind
	}{
		{
			name: "no rows maps to not found",
			err:  pgx.ErrNoRows,
			kind: infra.KindNotFound,
		},
		{
			name: "unique violation maps to duplicate key",
			err:  &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"},
			kind: infra.KindDuplicateKey,
		},
		{
			name: "foreign key violation",
			err:  &pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"},
			kind: infra.KindForeignKeyViolated,
		},
		{
			name: "exclusion violation maps to capacity exceeded",
			err:  &pgconn.PgError{Code: "23P01", Message: "slot capacity exceeded"},
			kind: infra.KindCapacityExceeded,
		},
		{
			name: "anything else is a db failure",
			err:  errors.New("connection refused"),
			kind: infra.KindDBFailure,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			wrapped := infra.WrapRepoErr("insert appointment", c.err)
			assert.True(t, infra.IsKind(wrapped, c.kind))
			assert.ErrorContains(t, wrapped, "insert appointment")
		})
	}

	t.Run("explicit kind wins over classification", func(t *testing.T) {
		wrapped := infra.WrapRepoErr("load schedule", pgx.ErrNoRows, infra.KindDBFailure)
		assert.True(t, infra.IsKind(wrapped, infra.KindDBFailure))
		assert.False(t, infra.IsKind(wrapped, infra.KindNotFound))
	})

	t.Run("wrapped error stays reachable through errors.Is", func(t *testing.T) {
		wrapped := infra.WrapRepoErr("find reservation", pgx.ErrNoRows)
		assert.ErrorIs(t, wrapped, pgx.ErrNoRows)
	})

	t.Run("IsKind is false for unrelated errors", func(t *testing.T) {
		assert.False(t, infra.IsKind(errors.New("plain"), infra.KindDBFailure))
	})
}
