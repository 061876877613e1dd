package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/solar-nova/presence-core/internal/modules/health"
	"github.com/solar-nova/presence-core/internal/modules/presence"
	"github.com/solar-nova/presence-core/internal/modules/stream"
	"github.com/solar-nova/presence-core/internal/pkg/response"
)

func (a *App) registerRoutes(originAllowed func(string) bool) {
	r := a.router

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	root := r.Group("")

	health.RegisterRoutes(root)
	presence.NewHandler(a.reg, a.logger).RegisterRoutes(root)

	interval := time.Duration(a.cfg.Presence.BroadcastInterval) * time.Second
	stream.NewHandler(a.ctx, a.reg, a.hub, a.logger, interval, originAllowed).RegisterRoutes(root)

	root.GET("/v1/stats", func(c *gin.Context) {
		response.Data(c, gin.H{
			"uptime_ms": time.Since(processStart).Milliseconds(),
			"records":   a.reg.Len(),
			"subscribers": gin.H{
				"sse":       a.hub.Count(stream.TransportSSE),
				"websocket": a.hub.Count(stream.TransportWebSocket),
				"total":     a.hub.Count(""),
			},
			"jobs": a.sched.List(),
		})
	})
}

var processStart = time.Now()
