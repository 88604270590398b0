package server

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	apperrors "github.com/ngeran/xaos/internal/errors"
	"github.com/ngeran/xaos/internal/hub"
)

const writeDeadline = 5 * time.Second

// handleWebSocket upgrades the request, registers the connection with the
// hub, and runs the read loop until the socket dies. The write pump drains
// the connection's outbound queue in a separate goroutine so a slow socket
// never blocks the hub.
func (s *Server) handleWebSocket(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "remote_addr", c.RealIP(), "error", err)
		return nil
	}

	hc, err := s.hub.Register(c.Request().RemoteAddr, c.Request().UserAgent())
	if err != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "maximum connections reached")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeDeadline))
		_ = conn.Close()
		return nil
	}

	go s.writePump(conn, hc)
	s.readPump(conn, hc)

	s.hub.Remove(hc.ID())
	_ = conn.Close()
	return nil
}

func (s *Server) readPump(conn *websocket.Conn, hc *hub.Conn) {
	conn.SetReadLimit(int64(s.config.MaxMessageSize))

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("Read loop ended", "connection_id", hc.ID(), "error", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		if err := s.hub.HandleInbound(hc.ID(), data); err != nil {
			if apperrors.IsType(err, apperrors.TypeMessageTooLarge) {
				slog.Warn("Closing connection: inbound frame too large", "connection_id", hc.ID())
			}
			return
		}
	}
}

func (s *Server) writePump(conn *websocket.Conn, hc *hub.Conn) {
	for {
		select {
		case data := <-hc.Outbound():
			_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Debug("Write failed", "connection_id", hc.ID(), "error", err)
				s.hub.Remove(hc.ID())
				_ = conn.Close()
				return
			}
		case <-hc.Done():
			_ = conn.Close()
			return
		}
	}
}
