package api

import (
	routes "atlas/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// SetupRouter initializes all application routes
func SetupRouter(r *gin.Engine, info map[string]string, deps routes.Deps) {
	r.Use(RequestLogger(deps.Logger), gin.Recovery())

	// API group
	api := r.Group("/api")

	// Setup main handlers
	routes.SetupMainHandlers(r.Group(""), info)

	// Setup entity and session handlers
	routes.SetupEntityHandlers(api, deps)
	routes.SetupSessionHandlers(api, deps)
}
