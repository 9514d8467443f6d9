package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"lumera.app/lumera/internal/core"
	"lumera.app/lumera/internal/logger"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 54 * time.Second
	writeWait    = 10 * time.Second
	eventBuffer  = 16
)

type event struct {
	Type string        `json:"type"`
	Data core.Snapshot `json:"data"`
}

// EventHub streams snapshots of the active chat session over WebSocket.
type EventHub struct {
	companion *core.Companion
	upgrader  websocket.Upgrader
}

func NewEventHub(c *core.Companion) *EventHub {
	return &EventHub{
		companion: c,
		upgrader: websocket.Upgrader{
			// loopback clients only, enforced by the router
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	snaps := make(chan core.Snapshot, eventBuffer)
	unsubscribe := h.companion.Subscribe(func(s core.Snapshot) {
		select {
		case snaps <- s:
		default:
			logger.Warnw("event subscriber too slow, dropping snapshot", "session_id", s.SessionID)
		}
	})
	defer unsubscribe()

	snaps <- h.companion.Current().Snapshot()
	logger.Debugw("event subscriber connected", "remote_addr", r.RemoteAddr)

	go h.readLoop(conn, cancel)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case s := <-snaps:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event{Type: "snapshot", Data: s}); err != nil {
				logger.Debugw("event write failed", "error", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop drains client frames so pongs and close frames are processed.
func (h *EventHub) readLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debugw("event subscriber read error", "error", err)
			}
			return
		}
	}
}
