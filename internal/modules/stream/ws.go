package stream

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const wsBufferSize = 1024

func newUpgrader(checkOrigin func(string) bool) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  wsBufferSize,
		WriteBufferSize: wsBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			return checkOrigin(origin)
		},
	}
}

func (h *Handler) ws(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the handshake error response.
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	id := h.hub.Add(TransportWebSocket)
	defer h.hub.Remove(id)
	h.log.Info("ws subscriber connected", zap.String("subscriber", id), zap.String("ip", c.ClientIP()))
	defer h.log.Info("ws subscriber disconnected", zap.String("subscriber", id))

	// Read pump: inbound frames are discarded, but reading is what
	// surfaces the close handshake and dead peers.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		summary := h.reg.Summarize(time.Now().Unix())
		if err := conn.WriteJSON(summary); err != nil {
			return
		}
		select {
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		case <-h.ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
