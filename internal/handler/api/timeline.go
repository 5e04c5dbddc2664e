package api

import (
	"errors"
	"net/http"
	"strconv"

	reqdto "trimline/internal/handler/dto/request"
	"trimline/internal/handler/httperr"
	"trimline/internal/usecase"

	"trimline/internal/dispatch"
	"trimline/internal/domain/booking"
	"trimline/internal/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TimelineHandler struct {
	timelineUseCase usecase.TimelineUseCase
	dispatcher      *dispatch.Dispatcher
}

func NewTimelineHandler(timelineUseCase usecase.TimelineUseCase, dispatcher *dispatch.Dispatcher) *TimelineHandler {
	return &TimelineHandler{
		timelineUseCase: timelineUseCase,
		dispatcher:      dispatcher,
	}
}

// @Summary Resource timeline
// @Description Merged scheduled + queue timeline for a resource-day
// @Tags timeline
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} usecase.TimelineView
// @Failure 400 {object} httperr.Response
// @Router /resources/{id}/timeline [get]
func (h *TimelineHandler) GetTimeline(c *gin.Context) {
	resourceID, date, ok := h.resourceAndDate(c)
	if !ok {
		return
	}

	// Serve the dispatcher's snapshot when a mutation already rebuilt this
	// resource-day; it is byte-identical to a fresh build.
	if payload, ok := h.dispatcher.Snapshot(resourceID, date); ok {
		c.Data(http.StatusOK, "application/json", payload)
		return
	}

	view, err := h.timelineUseCase.GetTimeline(c.Request.Context(), resourceID, date)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, view)
}

// @Summary Gap suggestions
// @Description Ranked placement candidates for a requested duration
// @Tags timeline
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param duration query int false "Required minutes (service default when omitted)"
// @Success 200 {object} usecase.GapsView
// @Failure 400 {object} httperr.Response
// @Router /resources/{id}/gaps [get]
func (h *TimelineHandler) FindGaps(c *gin.Context) {
	resourceID, date, ok := h.resourceAndDate(c)
	if !ok {
		return
	}

	duration := 0
	if raw := c.Query("duration"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httperr.AbortWithError(c, http.StatusBadRequest, errs.New("invalid duration"), "Invalid duration", nil)
			return
		}
		duration = parsed
	}

	view, err := h.timelineUseCase.FindGaps(c.Request.Context(), resourceID, date, duration)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, view)
}

// @Summary Apply delay
// @Description Push every future projected start on the resource-day forward
// @Tags timeline
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Param request body reqdto.ApplyDelayRequest true "Delay"
// @Success 200 {object} usecase.DelayView
// @Failure 400 {object} httperr.Response
// @Router /resources/{id}/delay [post]
func (h *TimelineHandler) ApplyDelay(c *gin.Context) {
	resourceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid resource ID", nil)
		return
	}

	var req reqdto.ApplyDelayRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}
	date, err := booking.ParseDate(req.Date)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid date", nil)
		return
	}

	view, err := h.timelineUseCase.ApplyDelay(c.Request.Context(), resourceID, date, req.DelayMinutes)
	if err != nil {
		if errors.Is(err, errs.ErrValidation) {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid delay", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *TimelineHandler) resourceAndDate(c *gin.Context) (uuid.UUID, booking.Date, bool) {
	resourceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid resource ID", nil)
		return uuid.Nil, booking.Date{}, false
	}

	date, err := booking.ParseDate(c.Query("date"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid date", nil)
		return uuid.Nil, booking.Date{}, false
	}
	return resourceID, date, true
}
