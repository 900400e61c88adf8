package router

import (
	"github.com/gin-gonic/gin"
)

// setupHealthRoutes registers health check endpoints backed by the
// container's periodic checker.
func (r *Router) setupHealthRoutes() {
	handler := gin.WrapF(r.Container.Health.HTTPHandler())

	// Register both paths so probes and the versioned API agree
	r.Engine.GET("/health", handler)
	r.Engine.GET("/api/v1/health", handler)
}
