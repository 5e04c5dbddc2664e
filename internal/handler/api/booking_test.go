//go:build unit

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"trimline/internal/domain/booking"
	"trimline/internal/handler/api"
	reqdto "trimline/internal/handler/dto/request"
	"trimline/internal/pkg/clock"
	"trimline/internal/pkg/errs"
	"trimline/internal/usecase"
)

type stubBookingUseCase struct {
	createView *usecase.BookingView
	createErr  error
	getView    *usecase.BookingView
	getErr     error
	listViews  []usecase.BookingView
	updateView *usecase.BookingView
	updateErr  error

	gotStatus booking.Status
}

func (s *stubBookingUseCase) CreateBooking(_ context.Context, _ reqdto.CreateBookingRequest, _ uuid.UUID) (*usecase.BookingView, error) {
	return s.createView, s.createErr
}

func (s *stubBookingUseCase) GetBooking(_ context.Context, _ uuid.UUID) (*usecase.BookingView, error) {
	return s.getView, s.getErr
}

func (s *stubBookingUseCase) GetCustomerBookings(_ context.Context, _ uuid.UUID, _ booking.Date) ([]usecase.BookingView, error) {
	return s.listViews, nil
}

func (s *stubBookingUseCase) UpdateStatus(_ context.Context, _ uuid.UUID, status booking.Status) (*usecase.BookingView, error) {
	s.gotStatus = status
	return s.updateView, s.updateErr
}

type BookingHandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
	stub   *stubBookingUseCase
}

func (s *BookingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.stub = &stubBookingUseCase{}

	clk := clock.NewMockClock(time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC))
	handler := api.NewBookingHandler(s.stub, clk)

	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
			return
		}
		c.Set("customer_id", uuid.New())
		c.Next()
	}

	s.router.POST("/bookings", authMiddleware, handler.CreateBooking)
	s.router.GET("/bookings", authMiddleware, handler.GetMyBookings)
	s.router.GET("/bookings/:id", authMiddleware, handler.GetBooking)
	s.router.PATCH("/bookings/:id/status", authMiddleware, handler.UpdateStatus)
}

func TestBookingHandlerSuite(t *testing.T) {
	suite.Run(t, new(BookingHandlerTestSuite))
}

func (s *BookingHandlerTestSuite) request(method, url string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Authorization", "Bearer test-token")
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func validCreateBody() map[string]any {
	return map[string]any{
		"resource_id": uuid.New().String(),
		"date":        "2025-03-10",
		"mode":        "queue",
	}
}

func (s *BookingHandlerTestSuite) TestCreate_Created() {
	pos := 1
	s.stub.createView = &usecase.BookingView{ID: uuid.New(), Mode: "queue", QueuePosition: &pos}

	rec := s.request(http.MethodPost, "/bookings", validCreateBody())

	s.Equal(http.StatusCreated, rec.Code)
	s.Contains(rec.Body.String(), `"queuePosition":1`)
}

func (s *BookingHandlerTestSuite) TestCreate_RequiresAuth() {
	req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewBufferString("{}"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *BookingHandlerTestSuite) TestCreate_BindingRejectsBadMode() {
	body := validCreateBody()
	body["mode"] = "walkup"

	rec := s.request(http.MethodPost, "/bookings", body)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *BookingHandlerTestSuite) TestCreate_ConflictReturnsSuggestions() {
	start := "08:00"
	s.stub.createErr = &usecase.ConflictError{
		Suggestions: []usecase.GapCandidateView{
			{Start: &start, Efficiency: 1.0},
			{JoinQueue: true, QueuePosition: 2, Efficiency: -1.0},
		},
	}

	rec := s.request(http.MethodPost, "/bookings", validCreateBody())

	s.Equal(http.StatusConflict, rec.Code)
	s.Contains(rec.Body.String(), "suggestions")
	s.Contains(rec.Body.String(), `"joinQueue":true`)
}

func (s *BookingHandlerTestSuite) TestCreate_StatusMapping() {
	testCases := []struct {
		name       string
		err        error
		expectCode int
	}{
		{name: "capacity", err: errs.ErrCapacity, expectCode: http.StatusUnprocessableEntity},
		{name: "validation", err: errs.Mark(errs.New("bad"), errs.ErrValidation), expectCode: http.StatusBadRequest},
		{name: "unknown", err: errs.New("boom"), expectCode: http.StatusInternalServerError},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.stub.createErr = tc.err
			rec := s.request(http.MethodPost, "/bookings", validCreateBody())
			s.Equal(tc.expectCode, rec.Code)
		})
	}
}

func (s *BookingHandlerTestSuite) TestGet_NotFound() {
	s.stub.getErr = errs.ErrBookingNotFound

	rec := s.request(http.MethodGet, "/bookings/"+uuid.New().String(), nil)

	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *BookingHandlerTestSuite) TestGet_InvalidID() {
	rec := s.request(http.MethodGet, "/bookings/not-a-uuid", nil)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *BookingHandlerTestSuite) TestUpdateStatus_PassesStatusThrough() {
	s.stub.updateView = &usecase.BookingView{ID: uuid.New(), Status: "cancelled"}

	rec := s.request(http.MethodPatch, "/bookings/"+uuid.New().String()+"/status",
		map[string]any{"status": "cancelled"})

	s.Equal(http.StatusOK, rec.Code)
	s.Equal(booking.StatusCancelled, s.stub.gotStatus)
}

func (s *BookingHandlerTestSuite) TestUpdateStatus_InvalidTransition() {
	s.stub.updateErr = errs.Mark(errs.New("done is terminal"), errs.ErrInvalidTransition)

	rec := s.request(http.MethodPatch, "/bookings/"+uuid.New().String()+"/status",
		map[string]any{"status": "ongoing"})

	s.Equal(http.StatusUnprocessableEntity, rec.Code)
}

func (s *BookingHandlerTestSuite) TestList_ReturnsCustomerBookings() {
	s.stub.listViews = []usecase.BookingView{{ID: uuid.New()}, {ID: uuid.New()}}

	rec := s.request(http.MethodGet, "/bookings?date=2025-03-10", nil)

	s.Equal(http.StatusOK, rec.Code)
	var got []usecase.BookingView
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Len(got, 2)
}
