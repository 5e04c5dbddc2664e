package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"trimline/internal/dispatch"
	"trimline/internal/domain/booking"
	"trimline/internal/handler/httperr"
	"trimline/internal/handler/middleware"
	"trimline/internal/pkg/errs"
	"trimline/internal/telemetry"
	"trimline/internal/usecase"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Cross-origin browsers are expected; auth happens via the token, CORS
	// covers the REST surface.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSHandler struct {
	hub             *dispatch.Hub
	timelineUseCase usecase.TimelineUseCase
}

func NewWSHandler(hub *dispatch.Hub, timelineUseCase usecase.TimelineUseCase) *WSHandler {
	return &WSHandler{
		hub:             hub,
		timelineUseCase: timelineUseCase,
	}
}

// SubscribeTimeline streams full timeline snapshots for one resource-day.
// The current state is pushed immediately on connect, then every rebuild.
func (h *WSHandler) SubscribeTimeline(c *gin.Context) {
	resourceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid resource ID", nil)
		return
	}
	date, err := booking.ParseDate(c.Query("date"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid date", nil)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	sub := h.hub.Subscribe(resourceID, date)
	telemetry.SubscriberGauge.Inc()
	defer func() {
		h.hub.Unsubscribe(sub)
		telemetry.SubscriberGauge.Dec()
		conn.Close()
	}()

	if view, err := h.timelineUseCase.GetTimeline(c.Request.Context(), resourceID, date); err == nil {
		if payload, err := json.Marshal(view); err == nil {
			frame := dispatch.UpdateFrame(dispatch.TriggerSnapshot, uuid.Nil, resourceID, date, payload)
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
	}

	pump(conn, sub)
}

// SubscribeCustomer streams the authenticated customer's booking events.
func (h *WSHandler) SubscribeCustomer(c *gin.Context) {
	customerID, ok := middleware.GetCustomerID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errs.New("missing customer context"), "Internal server error", nil)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	sub := h.hub.SubscribeCustomer(customerID)
	telemetry.SubscriberGauge.Inc()
	defer func() {
		h.hub.Unsubscribe(sub)
		telemetry.SubscriberGauge.Dec()
		conn.Close()
	}()

	pump(conn, sub)
}

// pump writes hub payloads until either side closes. Reads are drained in a
// second goroutine so client close frames are noticed.
func pump(conn *websocket.Conn, sub *dispatch.Subscription) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case payload, open := <-sub.C:
			if !open {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
