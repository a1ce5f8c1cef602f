//go:build unit

package api_test

import (
	"net/http"
	"testing"
	"time"

	"slotbook/internal/domain/identity"
	"slotbook/internal/handler/api"
	resdto "slotbook/internal/handler/dto/response"
	"slotbook/internal/pkg/errs"
	"slotbook/internal/usecase/queries"
	"slotbook/tests/common/httptest"
	queriesmock "slotbook/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type AvailabilityHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockCtrl    *gomock.Controller
	mockQueries *queriesmock.MockAvailabilityQueries
	handler     *api.AvailabilityHandler
}

func (s *AvailabilityHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockQueries = queriesmock.NewMockAvailabilityQueries(s.mockCtrl)
	s.handler = api.NewAvailabilityHandler(s.mockQueries)

	// Optional authentication: a bearer token marks the caller as staff.
	optionalAuth := func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			c.Set("actor", identity.Actor{ID: uuid.New(), Role: identity.RoleStaff, BusinessID: uuid.New()})
		}
		c.Next()
	}

	s.router.GET("/businesses/:businessID/services/:serviceID/slots", optionalAuth, s.handler.GetSlots)
}

func (s *AvailabilityHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestAvailabilityHandlerSuite(t *testing.T) {
	suite.Run(t, new(AvailabilityHandlerTestSuite))
}

func (s *AvailabilityHandlerTestSuite) TestGetSlots() {
	businessID := uuid.New()
	serviceID := uuid.New()
	from := time.Date(2030, 6, 4, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	url := "/businesses/" + businessID.String() + "/services/" + serviceID.String() + "/slots" +
		"?from=" + from.Format(time.RFC3339) + "&to=" + to.Format(time.RFC3339)

	slotViews := []queries.SlotView{
		{Start: from.Add(9 * time.Hour), End: from.Add(9*time.Hour + 30*time.Minute), Available: true, RemainingCapacity: 2},
		{Start: from.Add(10 * time.Hour), End: from.Add(10*time.Hour + 30*time.Minute), Available: false, RemainingCapacity: 0, Reason: "full"},
	}

	s.Run("success: returns the slot grid", func() {
		s.mockQueries.EXPECT().GenerateSlots(gomock.Any(), queries.GenerateSlotsParams{
			BusinessID: businessID,
			ServiceID:  serviceID,
			From:       from,
			To:         to,
		}).Return(slotViews, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "")

		var resp resdto.SlotsResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &resp)
		s.Require().Len(resp.Slots, 2)
		s.True(resp.Slots[0].Available)
		s.Equal(2, resp.Slots[0].RemainingCapacity)
		s.False(resp.Slots[1].Available)
		s.Equal("full", resp.Slots[1].Reason)
	})

	s.Run("success: staff tokens bypass the advance window", func() {
		s.mockQueries.EXPECT().GenerateSlots(gomock.Any(), queries.GenerateSlotsParams{
			BusinessID:          businessID,
			ServiceID:           serviceID,
			From:                from,
			To:                  to,
			BypassAdvanceWindow: true,
		}).Return(slotViews, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "staff-token")
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("error: 400 without window bounds", func() {
		bare := "/businesses/" + businessID.String() + "/services/" + serviceID.String() + "/slots"
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, bare, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})

	s.Run("error: 400 on a malformed business id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/businesses/nope/services/"+serviceID.String()+"/slots", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})

	s.Run("error: 404 for an unknown service", func() {
		s.mockQueries.EXPECT().GenerateSlots(gomock.Any(), gomock.Any()).
			Return(nil, errs.ErrServiceNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "")
	})
}
