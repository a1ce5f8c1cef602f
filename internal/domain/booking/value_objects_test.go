//go:build unit

package booking_test

import (
	"testing"
	"time"

	"slotbook/internal/domain/booking"
	"slotbook/internal/domain/schedule"
	"slotbook/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeSlot(t *testing.T) {
	grain := 30 * time.Minute
	start := time.Date(2030, 6, 4, 10, 0, 0, 0, time.UTC)

	t.Run("valid slot", func(t *testing.T) {
		slot, err := booking.NewTimeSlot(start, start.Add(grain), grain, time.UTC)
		require.NoError(t, err)
		assert.Equal(t, start, slot.Start())
		assert.Equal(t, start.Add(grain), slot.End())
		assert.Equal(t, grain, slot.Duration())
	})

	t.Run("end must be after start", func(t *testing.T) {
		_, err := booking.NewTimeSlot(start, start, grain, time.UTC)
		assert.ErrorIs(t, err, booking.ErrInvalidTimeSlot)

		_, err = booking.NewTimeSlot(start, start.Add(-grain), grain, time.UTC)
		assert.ErrorIs(t, err, booking.ErrInvalidTimeSlot)
	})

	t.Run("misaligned boundaries are rejected not rounded", func(t *testing.T) {
		_, err := booking.NewTimeSlot(start.Add(15*time.Minute), start.Add(45*time.Minute), grain, time.UTC)
		assert.ErrorIs(t, err, booking.ErrNotGrainAligned)

		_, err = booking.NewTimeSlot(start, start.Add(45*time.Minute), grain, time.UTC)
		assert.ErrorIs(t, err, booking.ErrNotGrainAligned)
	})

	t.Run("alignment follows the business-local grid", func(t *testing.T) {
		kathmandu, err := time.LoadLocation("Asia/Kathmandu") // UTC+05:45
		require.NoError(t, err)

		// 09:00 local is 03:15 UTC: aligned on the Kathmandu grid even
		// though the UTC instant is not a multiple of 30m from the epoch.
		localStart := time.Date(2030, 6, 3, 9, 0, 0, 0, kathmandu)
		slot, err := booking.NewTimeSlot(localStart, localStart.Add(grain), grain, kathmandu)
		require.NoError(t, err)
		assert.Equal(t, localStart, slot.Start())

		// Same instant judged against UTC is off-grid.
		_, err = booking.NewTimeSlot(localStart, localStart.Add(grain), grain, time.UTC)
		assert.ErrorIs(t, err, booking.ErrNotGrainAligned)

		// 09:10 local is off-grid everywhere.
		_, err = booking.NewTimeSlot(localStart.Add(10*time.Minute), localStart.Add(40*time.Minute), grain, kathmandu)
		assert.ErrorIs(t, err, booking.ErrNotGrainAligned)
	})
}

// Every slot the generator offers must survive TimeSlot validation, also in
// timezones whose UTC offset is not a multiple of the grain.
func TestGeneratedSlotsAreBookable(t *testing.T) {
	sched, err := builder.NewScheduleBuilder().WithTimezone("Asia/Kathmandu").BuildDomain()
	require.NoError(t, err)
	svc, err := builder.NewServiceBuilder().BuildDomain()
	require.NoError(t, err)

	now := time.Date(2030, 6, 2, 12, 0, 0, 0, time.UTC)
	from := time.Date(2030, 6, 4, 0, 0, 0, 0, sched.Location()) // a Tuesday
	to := from.AddDate(0, 0, 1)

	slots := sched.GenerateSlots(svc, from, to, nil, now, schedule.SlotOptions{})
	require.NotEmpty(t, slots)

	for _, s := range slots {
		_, err := booking.NewTimeSlot(s.Start, s.End, sched.Grain(), sched.Location())
		require.NoError(t, err, "generated slot at %s must be bookable", s.Start)
	}
}

func TestCustomerIsGuest(t *testing.T) {
	id := uuid.New()
	assert.False(t, booking.Customer{CustomerID: &id}.IsGuest())
	assert.True(t, booking.Customer{GuestName: "Ada", GuestEmail: "ada@example.com"}.IsGuest())
}

func TestStatus(t *testing.T) {
	t.Run("transitions", func(t *testing.T) {
		assert.True(t, booking.StatusConfirmed.CanTransitionTo(booking.StatusCompleted))
		assert.True(t, booking.StatusConfirmed.CanTransitionTo(booking.StatusCanceled))
		assert.True(t, booking.StatusConfirmed.CanTransitionTo(booking.StatusNoShow))

		assert.False(t, booking.StatusConfirmed.CanTransitionTo(booking.StatusConfirmed))
		assert.False(t, booking.StatusCompleted.CanTransitionTo(booking.StatusCanceled))
		assert.False(t, booking.StatusCanceled.CanTransitionTo(booking.StatusConfirmed))
	})

	t.Run("capacity accounting", func(t *testing.T) {
		assert.True(t, booking.StatusConfirmed.CountsTowardCapacity())
		assert.True(t, booking.StatusCompleted.CountsTowardCapacity())
		assert.False(t, booking.StatusCanceled.CountsTowardCapacity())
		assert.False(t, booking.StatusNoShow.CountsTowardCapacity())
	})
}
