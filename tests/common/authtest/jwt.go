//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"slotbook/internal/domain/identity"
	"slotbook/internal/pkg/config"
	"slotbook/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TokenFor signs a bearer token for an actor. Identity lives outside this
// service, so tests mint tokens directly instead of going through a login.
func TokenFor(t *testing.T, cfg config.Config, actor identity.Actor) string {
	t.Helper()

	duration, err := time.ParseDuration(cfg.JWT.Duration)
	require.NoError(t, err)

	token, err := jwt.NewService(cfg.JWT.Secret, duration).GenerateToken(actor)
	require.NoError(t, err)
	return token
}

func StaffToken(t *testing.T, cfg config.Config, businessID uuid.UUID) string {
	t.Helper()
	return TokenFor(t, cfg, identity.Actor{ID: uuid.New(), Role: identity.RoleStaff, BusinessID: businessID})
}

func CustomerToken(t *testing.T, cfg config.Config, businessID uuid.UUID) (string, uuid.UUID) {
	t.Helper()
	customerID := uuid.New()
	return TokenFor(t, cfg, identity.Actor{ID: customerID, Role: identity.RoleCustomer, BusinessID: businessID}), customerID
}
