package api

import (
	"errors"
	"net/http"

	reqdto "trimline/internal/handler/dto/request"
	"trimline/internal/handler/httperr"
	"trimline/internal/handler/middleware"
	"trimline/internal/usecase"

	"trimline/internal/domain/booking"
	"trimline/internal/pkg/clock"
	"trimline/internal/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	bookingUseCase usecase.BookingUseCase
	clock          clock.Clock
}

func NewBookingHandler(bookingUseCase usecase.BookingUseCase, clock clock.Clock) *BookingHandler {
	return &BookingHandler{
		bookingUseCase: bookingUseCase,
		clock:          clock,
	}
}

// @Summary Create booking
// @Description Create a scheduled or queue booking for a resource-day
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateBookingRequest true "Booking request"
// @Success 201 {object} usecase.BookingView
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	customerID, ok := middleware.GetCustomerID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errs.New("missing customer context"), "Internal server error", nil)
		return
	}

	var req reqdto.CreateBookingRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	view, err := h.bookingUseCase.CreateBooking(c.Request.Context(), req, customerID)
	if err != nil {
		var conflict *usecase.ConflictError
		switch {
		case errors.As(err, &conflict):
			httperr.AbortWithError(c, http.StatusConflict, err,
				"Requested slot overlaps an existing booking", gin.H{"suggestions": conflict.Suggestions})
		case errors.Is(err, errs.ErrCapacity):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Queue is at capacity", nil)
		case errors.Is(err, errs.ErrValidation):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusCreated, view)
}

// @Summary Get booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} usecase.BookingView
// @Failure 404 {object} httperr.Response
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking ID", nil)
		return
	}

	view, err := h.bookingUseCase.GetBooking(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, errs.ErrBookingNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Booking not found", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, view)
}

// @Summary List my bookings
// @Description List the authenticated customer's bookings for a date (today when omitted)
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param date query string false "Date (YYYY-MM-DD)"
// @Success 200 {array} usecase.BookingView
// @Router /bookings [get]
func (h *BookingHandler) GetMyBookings(c *gin.Context) {
	customerID, ok := middleware.GetCustomerID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errs.New("missing customer context"), "Internal server error", nil)
		return
	}

	date := booking.DateOf(h.clock.Now())
	if raw := c.Query("date"); raw != "" {
		parsed, err := booking.ParseDate(raw)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid date", nil)
			return
		}
		date = parsed
	}

	views, err := h.bookingUseCase.GetCustomerBookings(c.Request.Context(), customerID, date)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, views)
}

// @Summary Update booking status
// @Description Move a booking through its status state machine
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.UpdateBookingStatusRequest true "New status"
// @Success 200 {object} usecase.BookingView
// @Failure 404 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /bookings/{id}/status [patch]
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking ID", nil)
		return
	}

	var req reqdto.UpdateBookingStatusRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	view, err := h.bookingUseCase.UpdateStatus(c.Request.Context(), id, booking.Status(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrBookingNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Booking not found", nil)
		case errors.Is(err, errs.ErrInvalidTransition):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Status transition not allowed", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, view)
}
