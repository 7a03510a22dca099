package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/forgegate-inc/forgegate/internal/interfaces/http/handlers"
	"github.com/forgegate-inc/forgegate/internal/interfaces/http/middleware"
)

// RegisterSettingRoutes wires group settings.
func RegisterSettingRoutes(
	rg *gin.RouterGroup,
	settings *handlers.GroupSettingHandler,
	auth *middleware.AuthMiddleware,
) {
	groups := rg.Group("/groups/:id", auth.OptionalAuth())
	{
		groups.GET("/settings", settings.Get)
		groups.PUT("/settings", settings.Update)
	}
}
