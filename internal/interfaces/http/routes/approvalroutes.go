package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/forgegate-inc/forgegate/internal/interfaces/http/handlers"
	"github.com/forgegate-inc/forgegate/internal/interfaces/http/middleware"
)

// RegisterApprovalRoutes wires merge request approvals and project approval
// rules.
func RegisterApprovalRoutes(
	rg *gin.RouterGroup,
	approvals *handlers.ApprovalHandler,
	auth *middleware.AuthMiddleware,
) {
	mrs := rg.Group("/merge_requests/:mr_id", auth.OptionalAuth())
	{
		mrs.POST("/approve", approvals.Approve)
		mrs.POST("/unapprove", approvals.Unapprove)
		mrs.GET("/approval_state", approvals.GetState)
		mrs.POST("/finalize_approvals", approvals.Finalize)
		mrs.POST("/merge", approvals.Merge)
	}

	rg.POST("/projects/:id/approval_rules", auth.OptionalAuth(), approvals.CreateRule)
}
