package api

import (
	"net/http"

	reqdto "trimline/internal/handler/dto/request"
	"trimline/internal/handler/httperr"
	"trimline/internal/handler/middleware"
	"trimline/internal/usecase"

	"trimline/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

type PushHandler struct {
	pushUseCase usecase.PushUseCase
}

func NewPushHandler(pushUseCase usecase.PushUseCase) *PushHandler {
	return &PushHandler{pushUseCase: pushUseCase}
}

// @Summary VAPID public key
// @Tags push
// @Produce json
// @Success 200 {object} map[string]string
// @Router /push/vapid [get]
func (h *PushHandler) GetVAPIDKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"publicKey": h.pushUseCase.VAPIDPublicKey()})
}

// @Summary Register push subscription
// @Tags push
// @Accept json
// @Security BearerAuth
// @Param request body reqdto.PushSubscribeRequest true "Browser subscription"
// @Success 204
// @Failure 400 {object} httperr.Response
// @Router /push/subscriptions [post]
func (h *PushHandler) Subscribe(c *gin.Context) {
	customerID, ok := middleware.GetCustomerID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errs.New("missing customer context"), "Internal server error", nil)
		return
	}

	var req reqdto.PushSubscribeRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	if err := h.pushUseCase.Subscribe(c.Request.Context(), customerID, req); err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Remove push subscription
// @Tags push
// @Security BearerAuth
// @Param endpoint query string true "Subscription endpoint"
// @Success 204
// @Router /push/subscriptions [delete]
func (h *PushHandler) Unsubscribe(c *gin.Context) {
	endpoint := c.Query("endpoint")
	if endpoint == "" {
		httperr.AbortWithError(c, http.StatusBadRequest, errs.New("endpoint required"), "Endpoint required", nil)
		return
	}

	if err := h.pushUseCase.Unsubscribe(c.Request.Context(), endpoint); err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.Status(http.StatusNoContent)
}
