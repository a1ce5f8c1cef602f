//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"slotbook/internal/handler/api"
	resdto "slotbook/internal/handler/dto/response"
	"slotbook/internal/pkg/errs"
	"slotbook/internal/usecase/commands"
	"slotbook/tests/common/builder"
	"slotbook/tests/common/httptest"
	"slotbook/tests/common/testutil"
	commandsmock "slotbook/tests/mock/commands"
	queriesmock "slotbook/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ReservationHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockReservationCommands
	mockQueries  *queriesmock.MockReservationQueries
	handler      *api.ReservationHandler
}

func (s *ReservationHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockReservationCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockReservationQueries(s.mockCtrl)
	s.handler = api.NewReservationHandler(s.mockCommands, s.mockQueries)

	s.router.POST("/reservations", s.handler.CreateReservation)
	s.router.GET("/reservations/:id", s.handler.GetReservation)
	s.router.DELETE("/reservations/:id", s.handler.ReleaseReservation)
}

func (s *ReservationHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestReservationHandlerSuite(t *testing.T) {
	suite.Run(t, new(ReservationHandlerTestSuite))
}

// ================================================================================
// TestCreateReservation
// ================================================================================

func (s *ReservationHandlerTestSuite) TestCreateReservation() {
	url := "/reservations"
	key := uuid.New().String()
	reqBuilder := builder.NewReservationBuilder()
	reqBody := testutil.DtoMap(s.T(), map[string]any{
		"business_id": reqBuilder.BusinessID,
		"service_id":  reqBuilder.ServiceID,
		"start_time":  reqBuilder.Start,
		"end_time":    reqBuilder.End,
	})

	s.Run("success: returns 201 Created for a fresh hold", func() {
		res, err := reqBuilder.BuildDomain()
		s.Require().NoError(err)
		s.mockCommands.EXPECT().CreateReservation(gomock.Any(), gomock.Any()).
			Return(&commands.CreateReservationResult{Reservation: res}, nil).Times(1)

		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "", map[string]string{"Idempotency-Key": key})

		var body resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal(res.ID(), body.ID)
		s.False(body.Replayed)
	})

	s.Run("success: returns 200 OK for a replayed hold", func() {
		res, err := reqBuilder.BuildDomain()
		s.Require().NoError(err)
		s.mockCommands.EXPECT().CreateReservation(gomock.Any(), gomock.Any()).
			Return(&commands.CreateReservationResult{Reservation: res, IsReplayed: true}, nil).Times(1)

		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "", map[string]string{"Idempotency-Key": key})

		var body resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.True(body.Replayed)
	})

	s.Run("error: 400 without an Idempotency-Key header", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Idempotency-Key")
	})

	s.Run("error: 400 on a malformed Idempotency-Key", func() {
		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "", map[string]string{"Idempotency-Key": "not-a-uuid"})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Idempotency-Key")
	})

	s.Run("error: 400 on missing required fields", func() {
		body := testutil.DtoMap(s.T(), reqBody, testutil.Field("business_id", nil))
		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, body, "", map[string]string{"Idempotency-Key": key})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})

	s.Run("error: 409 when the slot is full", func() {
		s.mockCommands.EXPECT().CreateReservation(gomock.Any(), gomock.Any()).
			Return(nil, errs.ErrCapacityExceeded).Times(1)

		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "", map[string]string{"Idempotency-Key": key})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "")
	})

	s.Run("error: 422 when the slot is in off-time", func() {
		s.mockCommands.EXPECT().CreateReservation(gomock.Any(), gomock.Any()).
			Return(nil, errs.ErrOffTime).Times(1)

		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "", map[string]string{"Idempotency-Key": key})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnprocessableEntity, "")
	})

	s.Run("error: 404 for an unknown business", func() {
		s.mockCommands.EXPECT().CreateReservation(gomock.Any(), gomock.Any()).
			Return(nil, errs.ErrBusinessNotFound).Times(1)

		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "", map[string]string{"Idempotency-Key": key})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "")
	})
}

// ================================================================================
// TestGetReservation
// ================================================================================

func (s *ReservationHandlerTestSuite) TestGetReservation() {
	s.Run("success: returns the hold", func() {
		view := builder.NewReservationBuilder().BuildView()
		s.mockQueries.EXPECT().GetByID(gomock.Any(), view.ID).Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/"+view.ID.String(), nil, "")

		var body resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(view.ID, body.ID)
		s.Equal(view.ExpiresAt.UTC(), body.ExpiresAt.UTC())
	})

	s.Run("error: 404 for an unknown or expired hold", func() {
		id := uuid.New()
		s.mockQueries.EXPECT().GetByID(gomock.Any(), id).Return(nil, errs.ErrReservationNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/"+id.String(), nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "")
	})

	s.Run("error: 400 for a malformed id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/nope", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})
}

// ================================================================================
// TestReleaseReservation
// ================================================================================

func (s *ReservationHandlerTestSuite) TestReleaseReservation() {
	s.Run("success: returns 204", func() {
		id := uuid.New()
		s.mockCommands.EXPECT().Release(gomock.Any(), id).Return(nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/reservations/"+id.String(), nil, "")
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("error: 404 when the hold is gone", func() {
		id := uuid.New()
		s.mockCommands.EXPECT().Release(gomock.Any(), id).Return(errs.ErrReservationNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/reservations/"+id.String(), nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "")
	})
}
