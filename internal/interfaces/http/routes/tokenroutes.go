package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/forgegate-inc/forgegate/internal/interfaces/http/handlers"
	"github.com/forgegate-inc/forgegate/internal/interfaces/http/middleware"
)

// RegisterTokenRoutes wires personal access token issuance and rotation.
// Token endpoints always require an authenticated caller.
func RegisterTokenRoutes(
	rg *gin.RouterGroup,
	tokens *handlers.TokenHandler,
	auth *middleware.AuthMiddleware,
) {
	rg.POST("/personal_access_tokens", auth.RequireAuth(), tokens.Create)
	rg.POST("/users/:user_id/personal_access_tokens/:token_id/rotate", auth.RequireAuth(), tokens.Rotate)
}
