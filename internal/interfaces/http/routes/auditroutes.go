package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/forgegate-inc/forgegate/internal/interfaces/http/handlers"
	"github.com/forgegate-inc/forgegate/internal/interfaces/http/middleware"
)

// RegisterAuditRoutes wires the audit trail read endpoint.
func RegisterAuditRoutes(
	rg *gin.RouterGroup,
	audits *handlers.AuditEventHandler,
	auth *middleware.AuthMiddleware,
) {
	rg.GET("/resources/:id/audit_events", auth.OptionalAuth(), audits.List)
}
