package jwt

import (
	"errors"
	"time"

	"slotbook/internal/domain/identity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

type Claims struct {
	UserID     uuid.UUID `json:"user_id"`
	Role       string    `json:"role"`
	BusinessID uuid.UUID `json:"business_id"`
	jwt.RegisteredClaims
}

type Service struct {
	secretKey     []byte
	tokenDuration time.Duration
}

func NewService(secretKey string, tokenDuration time.Duration) *Service {
	return &Service{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
	}
}

func (s *Service) GenerateToken(actor identity.Actor) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:     actor.ID,
		Role:       string(actor.Role),
		BusinessID: actor.BusinessID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenDuration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

func (s *Service) ValidateToken(tokenString string) (identity.Actor, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return identity.Actor{}, ErrExpiredToken
		}
		return identity.Actor{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return identity.Actor{}, ErrInvalidToken
	}

	role := identity.Role(claims.Role)
	if !role.IsValid() {
		return identity.Actor{}, ErrInvalidToken
	}

	return identity.Actor{
		ID:         claims.UserID,
		Role:       role,
		BusinessID: claims.BusinessID,
	}, nil
}
