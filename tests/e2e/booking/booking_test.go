//go:build e2e

package booking_test

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"slotbook/internal/handler/dto/request"
	"slotbook/internal/handler/dto/response"
	"slotbook/tests/common/authtest"
	"slotbook/tests/common/dbtest"
	"slotbook/tests/common/httptest"
	"slotbook/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	slotsURL        = "/api/businesses/%s/services/%s/slots?from=%s&to=%s"
	reservationsURL = "/api/reservations"
	reservationURL  = "/api/reservations/%s"
	commitURL       = "/api/reservations/%s/commit"
	appointmentsURL = "/api/appointments"
	appointmentURL  = "/api/appointments/%s"
	rescheduleURL   = "/api/appointments/%s/reschedule"
)

type BookingSuite struct {
	e2e.SharedSuite
}

func (s *BookingSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()
}

func TestBookingSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(BookingSuite))
}

// futureSlot returns a grain-aligned slot on an open weekday at least
// daysAhead days out, safely past the lead time and inside opening hours.
func futureSlot(daysAhead, hour, minute int) (time.Time, time.Time) {
	day := time.Now().UTC().AddDate(0, 0, daysAhead)
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, 1)
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC)
	return start, start.Add(30 * time.Minute)
}

func (s *BookingSuite) createHold(t *testing.T, start, end time.Time, key string) *response.ReservationResponse {
	t.Helper()

	reqBody := request.CreateReservationRequest{
		BusinessID: dbtest.TestBusinessID,
		ServiceID:  dbtest.TestServiceID,
		StartTime:  start,
		EndTime:    end,
	}
	w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, reservationsURL, reqBody, "",
		map[string]string{"Idempotency-Key": key})
	require.Equal(t, http.StatusCreated, w.Code, "hold creation failed: %s", w.Body.String())

	var created response.ReservationResponse
	require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &created))
	return &created
}

// =============================================================================
// TestAvailabilityGrid - Slot grid reflects seeded schedule and occupancy
// =============================================================================

func (s *BookingSuite) TestAvailabilityGrid() {
	s.Run("Normal case: Full open day yields the complete slot grid", func() {
		t := s.T()

		dayStart, _ := futureSlot(7, 0, 0)
		url := fmt.Sprintf(slotsURL, dbtest.TestBusinessID, dbtest.TestServiceID,
			dayStart.Format(time.RFC3339), dayStart.AddDate(0, 0, 1).Format(time.RFC3339))

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, url, nil, "")

		var grid response.SlotsResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &grid)
		require.Len(t, grid.Slots, 16, "09:00-17:00 at 30m grain is 16 slots")
		require.Equal(t, dayStart.Add(9*time.Hour), grid.Slots[0].Start)
		for _, slot := range grid.Slots {
			require.True(t, slot.Available)
			require.Equal(t, 2, slot.RemainingCapacity)
		}
	})

	s.Run("Normal case: Booked-out slot is reported full", func() {
		t := s.T()

		start, end := futureSlot(7, 10, 0)
		dbtest.CreateTestAppointment(t, s.DB, dbtest.TestServiceID, start, end)
		dbtest.CreateTestAppointment(t, s.DB, dbtest.TestServiceID, start, end)

		url := fmt.Sprintf(slotsURL, dbtest.TestBusinessID, dbtest.TestServiceID,
			start.Format(time.RFC3339), end.Format(time.RFC3339))

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, url, nil, "")

		var grid response.SlotsResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &grid)
		require.Len(t, grid.Slots, 1)
		require.False(t, grid.Slots[0].Available)
		require.Equal(t, 0, grid.Slots[0].RemainingCapacity)
		require.Equal(t, "full", grid.Slots[0].Reason)
	})

	s.Run("Error case: Holiday closes the whole day", func() {
		t := s.T()

		dayStart, _ := futureSlot(7, 0, 0)
		dbtest.AddHoliday(t, s.DB, dayStart)

		url := fmt.Sprintf(slotsURL, dbtest.TestBusinessID, dbtest.TestServiceID,
			dayStart.Format(time.RFC3339), dayStart.AddDate(0, 0, 1).Format(time.RFC3339))

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, url, nil, "")

		var grid response.SlotsResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &grid)
		require.Empty(t, grid.Slots)
	})
}

// =============================================================================
// TestConcurrentHolds - Capacity holds under concurrent contention
// =============================================================================

func (s *BookingSuite) TestConcurrentHolds() {
	s.Run("Normal case: Exactly capacity-many concurrent holds succeed", func() {
		t := s.T()

		start, end := futureSlot(7, 10, 0)
		reqBody := request.CreateReservationRequest{
			BusinessID: dbtest.TestBusinessID,
			ServiceID:  dbtest.TestServiceID,
			StartTime:  start,
			EndTime:    end,
		}

		const attempts = 6
		codes := make([]int, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, reservationsURL, reqBody, "",
					map[string]string{"Idempotency-Key": uuid.New().String()})
				codes[i] = w.Code
			}(i)
		}
		wg.Wait()

		created, rejected := 0, 0
		for _, code := range codes {
			switch code {
			case http.StatusCreated:
				created++
			case http.StatusConflict:
				rejected++
			default:
				t.Fatalf("unexpected status %d", code)
			}
		}
		require.Equal(t, 2, created, "slot capacity is 2")
		require.Equal(t, attempts-2, rejected)
	})

	s.Run("Normal case: Expired holds do not block fresh ones", func() {
		t := s.T()

		start, end := futureSlot(7, 10, 0)
		past := time.Now().UTC().Add(-time.Minute)
		dbtest.CreateTestHold(t, s.DB, dbtest.TestServiceID, start, end, past)
		dbtest.CreateTestHold(t, s.DB, dbtest.TestServiceID, start, end, past)

		s.createHold(t, start, end, uuid.New().String())
		s.createHold(t, start, end, uuid.New().String())
	})

	s.Run("Normal case: Replayed idempotency key returns the original hold", func() {
		t := s.T()

		start, end := futureSlot(7, 10, 0)
		key := uuid.New().String()
		first := s.createHold(t, start, end, key)
		require.False(t, first.Replayed)

		reqBody := request.CreateReservationRequest{
			BusinessID: dbtest.TestBusinessID,
			ServiceID:  dbtest.TestServiceID,
			StartTime:  start,
			EndTime:    end,
		}
		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, reservationsURL, reqBody, "",
			map[string]string{"Idempotency-Key": key})

		var replayed response.ReservationResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &replayed)
		require.Equal(t, first.ID, replayed.ID)
		require.True(t, replayed.Replayed)
	})

	s.Run("Normal case: Releasing a hold frees its capacity", func() {
		t := s.T()

		start, end := futureSlot(7, 10, 0)
		held := s.createHold(t, start, end, uuid.New().String())
		s.createHold(t, start, end, uuid.New().String())

		reqBody := request.CreateReservationRequest{
			BusinessID: dbtest.TestBusinessID,
			ServiceID:  dbtest.TestServiceID,
			StartTime:  start,
			EndTime:    end,
		}
		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, reservationsURL, reqBody, "",
			map[string]string{"Idempotency-Key": uuid.New().String()})
		httptest.AssertErrorResponse(t, w, http.StatusConflict, "")

		w = httptest.PerformRequest(t, s.Router, http.MethodDelete, fmt.Sprintf(reservationURL, held.ID), nil, "")
		require.Equal(t, http.StatusNoContent, w.Code)

		s.createHold(t, start, end, uuid.New().String())
	})

	s.Run("Error case: Buffered service admits a single booking per window", func() {
		t := s.T()

		start, _ := futureSlot(7, 10, 0)
		end := start.Add(time.Hour)
		dbtest.CreateTestAppointment(t, s.DB, dbtest.TestBufferedServiceID, start, end)

		// 30m buffers on both sides keep 11:30 occupied even though the
		// appointment itself ends at 11:00.
		reqBody := request.CreateReservationRequest{
			BusinessID: dbtest.TestBusinessID,
			ServiceID:  dbtest.TestBufferedServiceID,
			StartTime:  start.Add(90 * time.Minute),
			EndTime:    start.Add(150 * time.Minute),
		}
		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, reservationsURL, reqBody, "",
			map[string]string{"Idempotency-Key": uuid.New().String()})
		httptest.AssertErrorResponse(t, w, http.StatusConflict, "")

		// One more buffer width out the windows no longer touch.
		reqBody.StartTime = start.Add(2 * time.Hour)
		reqBody.EndTime = start.Add(3 * time.Hour)
		w = httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, reservationsURL, reqBody, "",
			map[string]string{"Idempotency-Key": uuid.New().String()})
		require.Equal(t, http.StatusCreated, w.Code, "response: %s", w.Body.String())
	})
}

// =============================================================================
// TestCommitFlow - Hold to appointment conversion
// =============================================================================

func (s *BookingSuite) TestCommitFlow() {
	s.Run("Normal case: Guest commits a hold into a confirmed appointment", func() {
		t := s.T()

		start, end := futureSlot(7, 10, 0)
		held := s.createHold(t, start, end, uuid.New().String())

		name := "Taro Yamada"
		email := "taro@example.com"
		commitBody := request.CommitReservationRequest{GuestName: &name, GuestEmail: &email}

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(commitURL, held.ID), commitBody, "")

		var appt response.AppointmentResponse
		httptest.AssertSuccessResponse(t, w, http.StatusCreated, &appt)
		require.Equal(t, "confirmed", appt.Status)
		require.Equal(t, int32(1), appt.Version)
		require.Equal(t, start, appt.Start.UTC())
		require.NotNil(t, appt.GuestEmail)
		require.Equal(t, email, *appt.GuestEmail)

		// The hold is consumed by the commit.
		w = httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf(reservationURL, held.ID), nil, "")
		httptest.AssertErrorResponse(t, w, http.StatusNotFound, "")

		var audited int
		err := s.DB.QueryRow(context.Background(),
			"SELECT COUNT(*) FROM audit_log WHERE appointment_id = $1 AND action = 'commit_reservation'",
			appt.ID).Scan(&audited)
		require.NoError(t, err)
		require.Equal(t, 1, audited, "commit must leave an audit record")
	})

	s.Run("Error case: Committing an expired hold returns 404", func() {
		t := s.T()

		start, end := futureSlot(7, 10, 0)
		holdID := dbtest.CreateTestHold(t, s.DB, dbtest.TestServiceID, start, end, time.Now().UTC().Add(-time.Minute))

		email := "late@example.com"
		commitBody := request.CommitReservationRequest{GuestEmail: &email}

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(commitURL, holdID), commitBody, "")
		httptest.AssertErrorResponse(t, w, http.StatusNotFound, "")
	})

	s.Run("Error case: A hold cannot be committed twice", func() {
		t := s.T()

		start, end := futureSlot(7, 10, 0)
		held := s.createHold(t, start, end, uuid.New().String())

		email := "once@example.com"
		commitBody := request.CommitReservationRequest{GuestEmail: &email}

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(commitURL, held.ID), commitBody, "")
		require.Equal(t, http.StatusCreated, w.Code)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(commitURL, held.ID), commitBody, "")
		httptest.AssertErrorResponse(t, w, http.StatusNotFound, "")
	})
}

// =============================================================================
// TestStaffBooking - Direct booking and role enforcement
// =============================================================================

func (s *BookingSuite) TestStaffBooking() {
	s.Run("Normal case: Staff books past the advance window", func() {
		t := s.T()

		token := authtest.StaffToken(t, s.Config, dbtest.TestBusinessID)
		start, end := futureSlot(45, 10, 0)

		name := "Walk-in"
		reqBody := request.CreateAppointmentRequest{
			BusinessID: dbtest.TestBusinessID,
			ServiceID:  dbtest.TestServiceID,
			StartTime:  start,
			EndTime:    end,
			GuestName:  &name,
		}
		email := "walkin@example.com"
		reqBody.GuestEmail = &email

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, appointmentsURL, reqBody, token)

		var appt response.AppointmentResponse
		httptest.AssertSuccessResponse(t, w, http.StatusCreated, &appt)
		require.Equal(t, "confirmed", appt.Status)
	})

	s.Run("Error case: Customer token is rejected on staff routes", func() {
		t := s.T()

		token, customerID := authtest.CustomerToken(t, s.Config, dbtest.TestBusinessID)
		start, end := futureSlot(7, 10, 0)

		reqBody := request.CreateAppointmentRequest{
			BusinessID: dbtest.TestBusinessID,
			ServiceID:  dbtest.TestServiceID,
			StartTime:  start,
			EndTime:    end,
			CustomerID: &customerID,
		}
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, appointmentsURL, reqBody, token)
		httptest.AssertErrorResponse(t, w, http.StatusForbidden, "")

		w = httptest.PerformRequest(t, s.Router, http.MethodGet,
			appointmentsURL+"?from="+start.Format(time.RFC3339)+"&to="+end.Format(time.RFC3339), nil, token)
		httptest.AssertErrorResponse(t, w, http.StatusForbidden, "")
	})

	s.Run("Error case: Off-time is enforced even for staff", func() {
		t := s.T()

		token := authtest.StaffToken(t, s.Config, dbtest.TestBusinessID)
		start, _ := futureSlot(7, 18, 0) // after closing

		email := "after-hours@example.com"
		reqBody := request.CreateAppointmentRequest{
			BusinessID: dbtest.TestBusinessID,
			ServiceID:  dbtest.TestServiceID,
			StartTime:  start,
			EndTime:    start.Add(30 * time.Minute),
			GuestEmail: &email,
		}
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, appointmentsURL, reqBody, token)
		httptest.AssertErrorResponse(t, w, http.StatusUnprocessableEntity, "")
	})

	s.Run("Normal case: Listing returns appointments inside the window", func() {
		t := s.T()

		token := authtest.StaffToken(t, s.Config, dbtest.TestBusinessID)
		start, end := futureSlot(7, 10, 0)
		dbtest.CreateTestAppointment(t, s.DB, dbtest.TestServiceID, start, end)
		dbtest.CreateTestAppointment(t, s.DB, dbtest.TestServiceID, start.Add(time.Hour), end.Add(time.Hour))

		dayStart := start.Truncate(24 * time.Hour)
		url := appointmentsURL + "?from=" + dayStart.Format(time.RFC3339) +
			"&to=" + dayStart.AddDate(0, 0, 1).Format(time.RFC3339)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, url, nil, token)

		var list response.AppointmentListResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &list)
		require.Len(t, list.Appointments, 2)
	})
}

// =============================================================================
// TestLifecycle - Reschedule, cancellation and capacity release
// =============================================================================

func (s *BookingSuite) TestLifecycle() {
	s.Run("Normal case: Stale expected version loses the reschedule", func() {
		t := s.T()

		token := authtest.StaffToken(t, s.Config, dbtest.TestBusinessID)
		start, end := futureSlot(7, 10, 0)
		apptID := dbtest.CreateTestAppointment(t, s.DB, dbtest.TestServiceID, start, end)

		first := request.RescheduleRequest{
			StartTime:       start.Add(time.Hour),
			EndTime:         end.Add(time.Hour),
			ExpectedVersion: 1,
		}
		w := httptest.PerformRequest(t, s.Router, http.MethodPatch, fmt.Sprintf(rescheduleURL, apptID), first, token)

		var moved response.AppointmentResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &moved)
		require.Equal(t, int32(2), moved.Version)

		second := request.RescheduleRequest{
			StartTime:       start.Add(2 * time.Hour),
			EndTime:         end.Add(2 * time.Hour),
			ExpectedVersion: 1,
		}
		w = httptest.PerformRequest(t, s.Router, http.MethodPatch, fmt.Sprintf(rescheduleURL, apptID), second, token)
		httptest.AssertErrorResponse(t, w, http.StatusConflict, "")
	})

	s.Run("Normal case: Cancellation frees the slot", func() {
		t := s.T()

		token := authtest.StaffToken(t, s.Config, dbtest.TestBusinessID)
		start, end := futureSlot(7, 10, 0)
		apptID := dbtest.CreateTestAppointment(t, s.DB, dbtest.TestServiceID, start, end)
		dbtest.CreateTestAppointment(t, s.DB, dbtest.TestServiceID, start, end)

		reqBody := request.CreateReservationRequest{
			BusinessID: dbtest.TestBusinessID,
			ServiceID:  dbtest.TestServiceID,
			StartTime:  start,
			EndTime:    end,
		}
		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, reservationsURL, reqBody, "",
			map[string]string{"Idempotency-Key": uuid.New().String()})
		httptest.AssertErrorResponse(t, w, http.StatusConflict, "")

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(appointmentURL+"/cancel", apptID), nil, token)
		require.Equal(t, http.StatusNoContent, w.Code, "response: %s", w.Body.String())

		s.createHold(t, start, end, uuid.New().String())
	})

	s.Run("Error case: Terminal appointments reject further transitions", func() {
		t := s.T()

		token := authtest.StaffToken(t, s.Config, dbtest.TestBusinessID)
		start, end := futureSlot(7, 10, 0)
		apptID := dbtest.CreateTestAppointment(t, s.DB, dbtest.TestServiceID, start, end)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(appointmentURL+"/cancel", apptID), nil, token)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(appointmentURL+"/complete", apptID), nil, token)
		httptest.AssertErrorResponse(t, w, http.StatusConflict, "")
	})
}
