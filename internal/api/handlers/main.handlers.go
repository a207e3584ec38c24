package routes

import (
	"net/http"

	"atlas/internal/metrics"

	"github.com/gin-gonic/gin"
)

// SetupMainHandlers registers the service info and metrics endpoints
func SetupMainHandlers(router *gin.RouterGroup, info map[string]string) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":  info["service"],
			"port":     info["port"],
			"features": info["features"],
			"postgres": info["postgres"],
			"redis":    info["redis"],
		})
	})

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
}
