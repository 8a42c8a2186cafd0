package api

import (
	"context"
	"time"

	"PortfolioSim/internal/domain/models"
	xhttp "PortfolioSim/pkg/http"
	xlogger "PortfolioSim/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const writeWait = 10 * time.Second

// Stream upgrades to a websocket, reads one request and writes every event of
// the run as a JSON text frame. Closing the socket cancels the run.
func (h *SimulationsEchoHandler) Stream(c echo.Context) error {
	if !h.limiter.Allow(c.RealIP()) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many simulation requests"))
	}
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	var req models.SimulationRequest
	_ = conn.SetReadDeadline(time.Now().Add(h.readWait))
	if err := conn.ReadJSON(&req); err != nil {
		h.writeEvent(conn, models.ErrorEvent("", models.NewConfigurationError("request", "malformed request: %v", err)))
		h.closeNormal(conn)
		return nil
	}
	_ = conn.SetReadDeadline(time.Time{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	x := h.executor.Start(ctx, req)
	log := h.logger.With(xlogger.String("run_id", x.ID()))
	log.Info("stream opened", xlogger.String("remote", c.RealIP()))

	// Any read error, including a client close, ends interest in the run.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	// The channel is drained to the end even after a write failure so that the
	// execution reaches its terminal event.
	alive := true
	for ev := range x.Events() {
		if !alive {
			continue
		}
		if err := h.writeEvent(conn, ev); err != nil {
			log.Warn("stream write failed", xlogger.Error(err))
			alive = false
			cancel()
		}
	}
	if alive {
		h.closeNormal(conn)
	}
	log.Info("stream closed")
	return nil
}

func (h *SimulationsEchoHandler) writeEvent(conn *websocket.Conn, ev models.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(ev)
}

func (h *SimulationsEchoHandler) closeNormal(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
