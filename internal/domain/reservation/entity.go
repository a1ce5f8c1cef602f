package reservation

import (
	"errors"
	"time"

	"slotbook/internal/domain/booking"

	"github.com/google/uuid"
)

var (
	ErrInvalidTTL = errors.New("reservation TTL must be positive")
	ErrMissingKey = errors.New("reservation requires an idempotency key")
)

// Reservation is a short-lived capacity hold on a slot, created before the
// customer confirms. A hold counts toward capacity only while live; once the
// expiry passes it is inert even before the sweeper purges it. Exactly one
// reservation exists per idempotency key.
type Reservation struct {
	id             uuid.UUID
	businessID     uuid.UUID
	serviceID      uuid.UUID
	slot           booking.TimeSlot
	idempotencyKey uuid.UUID
	expiresAt      time.Time
	createdAt      time.Time
}

func NewReservation(businessID, serviceID uuid.UUID, slot booking.TimeSlot, idempotencyKey uuid.UUID, now time.Time, ttl time.Duration) (*Reservation, error) {
	if idempotencyKey == uuid.Nil {
		return nil, ErrMissingKey
	}
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}
	return &Reservation{
		id:             uuid.New(),
		businessID:     businessID,
		serviceID:      serviceID,
		slot:           slot,
		idempotencyKey: idempotencyKey,
		expiresAt:      now.Add(ttl),
	}, nil
}

func ReconstructReservation(
	id, businessID, serviceID uuid.UUID,
	slot booking.TimeSlot,
	idempotencyKey uuid.UUID,
	expiresAt, createdAt time.Time,
) *Reservation {
	return &Reservation{
		id:             id,
		businessID:     businessID,
		serviceID:      serviceID,
		slot:           slot,
		idempotencyKey: idempotencyKey,
		expiresAt:      expiresAt,
		createdAt:      createdAt,
	}
}

func (r *Reservation) ID() uuid.UUID             { return r.id }
func (r *Reservation) BusinessID() uuid.UUID     { return r.businessID }
func (r *Reservation) ServiceID() uuid.UUID      { return r.serviceID }
func (r *Reservation) Slot() booking.TimeSlot    { return r.slot }
func (r *Reservation) IdempotencyKey() uuid.UUID { return r.idempotencyKey }
func (r *Reservation) ExpiresAt() time.Time      { return r.expiresAt }
func (r *Reservation) CreatedAt() time.Time      { return r.createdAt }

// IsLive reports whether the hold still counts toward capacity: the expiry
// must be strictly after now.
func (r *Reservation) IsLive(now time.Time) bool {
	return r.expiresAt.After(now)
}
