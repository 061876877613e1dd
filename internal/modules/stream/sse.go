package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/solar-nova/presence-core/internal/modules/presence"
	"go.uber.org/zap"
)

// Handler serves the live summary stream over SSE and WebSocket. Each
// connection gets its own delivery loop: tick, snapshot, classify, emit.
// Loops share nothing but the registry, so observers never block each
// other and a dropped connection only ends its own loop. All loops end
// when the app context is cancelled at shutdown.
type Handler struct {
	ctx      context.Context
	reg      *presence.Registry
	hub      *Hub
	log      *zap.Logger
	interval time.Duration
	upgrader websocket.Upgrader
}

func NewHandler(ctx context.Context, reg *presence.Registry, hub *Hub, log *zap.Logger, interval time.Duration, checkOrigin func(string) bool) *Handler {
	return &Handler{
		ctx:      ctx,
		reg:      reg,
		hub:      hub,
		log:      log,
		interval: interval,
		upgrader: newUpgrader(checkOrigin),
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/sse/online", h.sse)
	rg.GET("/ws/online", h.ws)
}

func (h *Handler) sse(c *gin.Context) {
	// X-Accel-Buffering disables proxy response buffering so each event
	// reaches the client within one tick of being computed.
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	id := h.hub.Add(TransportSSE)
	defer h.hub.Remove(id)
	h.log.Info("sse subscriber connected", zap.String("subscriber", id), zap.String("ip", c.ClientIP()))
	defer h.log.Info("sse subscriber disconnected", zap.String("subscriber", id))

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	done := c.Request.Context().Done()
	for {
		if err := h.writeEvent(c); err != nil {
			return
		}
		select {
		case <-done:
			return
		case <-h.ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (h *Handler) writeEvent(c *gin.Context) error {
	summary := h.reg.Summarize(time.Now().Unix())
	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", payload); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}
