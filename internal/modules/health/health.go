package health

import (
	"github.com/gin-gonic/gin"
	"github.com/solar-nova/presence-core/internal/pkg/response"
)

// RegisterRoutes mounts the liveness and readiness probes. Both are
// unconditionally healthy: the registry needs no warm-up and has no
// downstream dependency to wait on.
func RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/healthz", func(c *gin.Context) { response.OK(c) })
	rg.GET("/readyz", func(c *gin.Context) { response.OK(c) })
}
