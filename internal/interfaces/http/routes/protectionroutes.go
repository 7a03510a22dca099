// Package routes binds handlers to paths. Almost every route runs behind
// OptionalAuth: visibility of private resources is the gate's decision, so
// anonymous requests must reach the use cases.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/forgegate-inc/forgegate/internal/domain/protection"
	"github.com/forgegate-inc/forgegate/internal/interfaces/http/handlers"
	"github.com/forgegate-inc/forgegate/internal/interfaces/http/middleware"
)

// RegisterProtectionRoutes wires protected branches, protected environments,
// deployment approvals, and external status checks.
func RegisterProtectionRoutes(
	rg *gin.RouterGroup,
	branches *handlers.ProtectedBranchHandler,
	environments *handlers.ProtectedEnvironmentHandler,
	deployments *handlers.DeploymentApprovalHandler,
	checks *handlers.StatusCheckHandler,
	auth *middleware.AuthMiddleware,
) {
	projects := rg.Group("/projects/:id", auth.OptionalAuth())
	{
		projects.GET("/protected_branches", branches.List(protection.ScopeProject))
		projects.POST("/protected_branches", branches.Protect(protection.ScopeProject))
		projects.PATCH("/protected_branches/:name", branches.Update(protection.ScopeProject))
		projects.DELETE("/protected_branches/:name", branches.Unprotect(protection.ScopeProject))

		projects.GET("/protected_environments", environments.List(protection.ScopeProject))
		projects.POST("/protected_environments", environments.Protect(protection.ScopeProject))
		projects.PUT("/protected_environments/:name", environments.Update(protection.ScopeProject))
		projects.DELETE("/protected_environments/:name", environments.Unprotect(protection.ScopeProject))

		projects.POST("/deployments/:deployment_id/approval", deployments.Approve)

		projects.GET("/external_status_checks", checks.List)
		projects.POST("/external_status_checks", checks.Create)
		projects.POST("/external_status_checks/:check_id/retry", checks.Retry)
	}

	groups := rg.Group("/groups/:id", auth.OptionalAuth())
	{
		groups.GET("/protected_branches", branches.List(protection.ScopeGroup))
		groups.POST("/protected_branches", branches.Protect(protection.ScopeGroup))
		groups.PATCH("/protected_branches/:name", branches.Update(protection.ScopeGroup))
		groups.DELETE("/protected_branches/:name", branches.Unprotect(protection.ScopeGroup))

		groups.GET("/protected_environments", environments.List(protection.ScopeGroup))
		groups.POST("/protected_environments", environments.Protect(protection.ScopeGroup))
		groups.PUT("/protected_environments/:name", environments.Update(protection.ScopeGroup))
		groups.DELETE("/protected_environments/:name", environments.Unprotect(protection.ScopeGroup))
	}
}
