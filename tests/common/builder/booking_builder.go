//go:build unit || e2e

package builder

import (
	"time"

	"slotbook/internal/domain/booking"
	"slotbook/internal/domain/reservation"
	"slotbook/internal/usecase/queries"

	"github.com/google/uuid"
)

// AppointmentBuilder assembles appointments on a Tuesday morning slot far
// enough in the future that lead-time rules never interfere.
type AppointmentBuilder struct {
	BusinessID uuid.UUID
	ServiceID  uuid.UUID
	CustomerID *uuid.UUID
	GuestName  string
	GuestEmail string
	Start      time.Time
	End        time.Time
	Grain      time.Duration
}

func NewAppointmentBuilder() *AppointmentBuilder {
	customerID := uuid.New()
	start := time.Date(2030, 6, 4, 10, 0, 0, 0, time.UTC) // a Tuesday
	return &AppointmentBuilder{
		BusinessID: uuid.New(),
		ServiceID:  uuid.New(),
		CustomerID: &customerID,
		Start:      start,
		End:        start.Add(30 * time.Minute),
		Grain:      30 * time.Minute,
	}
}

func (b *AppointmentBuilder) With(mutate func(*AppointmentBuilder)) *AppointmentBuilder {
	mutate(b)
	return b
}

func (b *AppointmentBuilder) BuildDomain() (*booking.Appointment, error) {
	slot, err := booking.NewTimeSlot(b.Start, b.End, b.Grain, time.UTC)
	if err != nil {
		return nil, err
	}
	return booking.NewAppointment(b.BusinessID, b.ServiceID, b.buildCustomer(), slot)
}

func (b *AppointmentBuilder) BuildView() *queries.AppointmentView {
	var guestName, guestEmail *string
	if b.GuestName != "" {
		guestName = &b.GuestName
	}
	if b.GuestEmail != "" {
		guestEmail = &b.GuestEmail
	}
	now := time.Now()
	return &queries.AppointmentView{
		ID:          uuid.New(),
		BusinessID:  b.BusinessID,
		ServiceID:   b.ServiceID,
		ServiceName: "Consultation",
		CustomerID:  b.CustomerID,
		GuestName:   guestName,
		GuestEmail:  guestEmail,
		Start:       b.Start,
		End:         b.End,
		Status:      booking.StatusConfirmed.String(),
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (b *AppointmentBuilder) buildCustomer() booking.Customer {
	return booking.Customer{
		CustomerID: b.CustomerID,
		GuestName:  b.GuestName,
		GuestEmail: b.GuestEmail,
	}
}

// Fluent builder methods
func (b *AppointmentBuilder) WithBusinessID(id uuid.UUID) *AppointmentBuilder {
	b.BusinessID = id
	return b
}

func (b *AppointmentBuilder) WithServiceID(id uuid.UUID) *AppointmentBuilder {
	b.ServiceID = id
	return b
}

func (b *AppointmentBuilder) WithSlot(start, end time.Time) *AppointmentBuilder {
	b.Start = start
	b.End = end
	return b
}

func (b *AppointmentBuilder) WithGrain(grain time.Duration) *AppointmentBuilder {
	b.Grain = grain
	return b
}

func (b *AppointmentBuilder) AsGuest(name, email string) *AppointmentBuilder {
	b.CustomerID = nil
	b.GuestName = name
	b.GuestEmail = email
	return b
}

// ReservationBuilder assembles capacity holds on the same default slot as
// AppointmentBuilder.
type ReservationBuilder struct {
	BusinessID     uuid.UUID
	ServiceID      uuid.UUID
	Start          time.Time
	End            time.Time
	Grain          time.Duration
	IdempotencyKey uuid.UUID
	Now            time.Time
	TTL            time.Duration
}

func NewReservationBuilder() *ReservationBuilder {
	start := time.Date(2030, 6, 4, 10, 0, 0, 0, time.UTC)
	return &ReservationBuilder{
		BusinessID:     uuid.New(),
		ServiceID:      uuid.New(),
		Start:          start,
		End:            start.Add(30 * time.Minute),
		Grain:          30 * time.Minute,
		IdempotencyKey: uuid.New(),
		Now:            time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC),
		TTL:            10 * time.Minute,
	}
}

func (b *ReservationBuilder) With(mutate func(*ReservationBuilder)) *ReservationBuilder {
	mutate(b)
	return b
}

func (b *ReservationBuilder) BuildDomain() (*reservation.Reservation, error) {
	slot, err := booking.NewTimeSlot(b.Start, b.End, b.Grain, time.UTC)
	if err != nil {
		return nil, err
	}
	return reservation.NewReservation(b.BusinessID, b.ServiceID, slot, b.IdempotencyKey, b.Now, b.TTL)
}

func (b *ReservationBuilder) BuildView() *queries.ReservationView {
	return &queries.ReservationView{
		ID:         uuid.New(),
		BusinessID: b.BusinessID,
		ServiceID:  b.ServiceID,
		Start:      b.Start,
		End:        b.End,
		ExpiresAt:  b.Now.Add(b.TTL),
		CreatedAt:  b.Now,
	}
}

// Fluent builder methods
func (b *ReservationBuilder) WithBusinessID(id uuid.UUID) *ReservationBuilder {
	b.BusinessID = id
	return b
}

func (b *ReservationBuilder) WithServiceID(id uuid.UUID) *ReservationBuilder {
	b.ServiceID = id
	return b
}

func (b *ReservationBuilder) WithSlot(start, end time.Time) *ReservationBuilder {
	b.Start = start
	b.End = end
	return b
}

func (b *ReservationBuilder) WithIdempotencyKey(key uuid.UUID) *ReservationBuilder {
	b.IdempotencyKey = key
	return b
}

func (b *ReservationBuilder) WithTTL(ttl time.Duration) *ReservationBuilder {
	b.TTL = ttl
	return b
}

func (b *ReservationBuilder) WithNow(now time.Time) *ReservationBuilder {
	b.Now = now
	return b
}
