package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/forgegate-inc/forgegate/internal/interfaces/http/handlers"
	"github.com/forgegate-inc/forgegate/internal/interfaces/http/middleware"
)

// RegisterMembershipRoutes wires member management and custom member roles.
// Member routes hang off the generic resource path because membership applies
// to projects and groups alike; member roles are group-only.
func RegisterMembershipRoutes(
	rg *gin.RouterGroup,
	members *handlers.MemberHandler,
	roles *handlers.MemberRoleHandler,
	auth *middleware.AuthMiddleware,
) {
	resources := rg.Group("/resources/:id", auth.OptionalAuth())
	{
		resources.POST("/members", members.Add)
		resources.PUT("/members/:member_id", members.UpdateLevel)
		resources.POST("/members/:member_id/approve", members.Approve)
		resources.POST("/members/approve_all", members.ApproveAll)
		resources.GET("/pending_members", members.ListPending)
	}

	groups := rg.Group("/groups/:id", auth.OptionalAuth())
	{
		groups.GET("/member_roles", roles.List)
		groups.POST("/member_roles", roles.Create)
		groups.DELETE("/member_roles/:role_id", roles.Delete)
	}
}
