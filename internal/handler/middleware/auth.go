package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"slotbook/internal/domain/identity"
	"slotbook/internal/handler/httperr"
	"slotbook/internal/usecase"

	"github.com/gin-gonic/gin"
)

var (
	errMissingToken     = errors.New("access token required")
	errInvalidToken     = errors.New("invalid or expired token")
	errInsufficientRole = errors.New("insufficient permissions")
	errActorNotSet      = errors.New("actor missing before role check")
)

type AuthMiddleware struct {
	tokenValidator usecase.TokenValidator
}

const ctxActorKey = "actor"

var roleHierarchy = map[identity.Role]int{
	identity.RoleCustomer: 1,
	identity.RoleStaff:    2,
	identity.RoleAdmin:    3,
}

func NewAuthMiddleware(tokenValidator usecase.TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			httperr.AbortWithError(c, http.StatusUnauthorized, errMissingToken, "Access token required", nil)
			return
		}

		actor, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			httperr.AbortWithError(c, http.StatusUnauthorized, errInvalidToken, "Invalid or expired token", nil)
			return
		}

		setActor(c, actor)
		c.Next()
	}
}

// OptionalAuth authenticates the request if a token is present, but does not
// abort on failure. Guest booking flows pass through unauthenticated.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		actor, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			// Invalid token; continue without aborting.
			c.Next()
			return
		}

		setActor(c, actor)
		c.Next()
	}
}

func (m *AuthMiddleware) RequireRoleAtLeast(minRole identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			// Unexpected error: should be used after RequireAuth()
			httperr.AbortWithError(c, http.StatusInternalServerError, errActorNotSet, "Internal server error", nil)
			return
		}

		if !hasMinimumRole(actor.Role, minRole) {
			httperr.AbortWithError(c, http.StatusForbidden, errInsufficientRole, "Insufficient permissions", nil)
			return
		}

		c.Next()
	}
}

func hasMinimumRole(actorRole, minRole identity.Role) bool {
	actorLevel, actorExists := roleHierarchy[actorRole]
	minLevel, minExists := roleHierarchy[minRole]
	return actorExists && minExists && actorLevel >= minLevel
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	return ""
}

func setActor(c *gin.Context, actor identity.Actor) {
	c.Set(ctxActorKey, actor)
	c.Set("jwt_claims", map[string]any{
		"user_id": actor.ID.String(),
		"role":    string(actor.Role),
	})
}

func GetActor(c *gin.Context) (identity.Actor, bool) {
	value, exists := c.Get(ctxActorKey)
	if !exists {
		return identity.Actor{}, false
	}

	actor, ok := value.(identity.Actor)
	return actor, ok
}
