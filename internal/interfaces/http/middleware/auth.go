package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/infrastructure/auth"
	"github.com/forgegate-inc/forgegate/internal/shared/constants"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
	"github.com/forgegate-inc/forgegate/internal/shared/utils"
)

// AuthMiddleware verifies bearer tokens and puts the resulting actor into the
// request context. Authorization itself happens in the gate, not here.
type AuthMiddleware struct {
	jwtService *auth.JWTService
	logger     logger.Interface
}

// NewAuthMiddleware creates an auth middleware instance.
func NewAuthMiddleware(jwtService *auth.JWTService, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		logger:     logger,
	}
}

// RequireAuth rejects requests without a valid access token.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)
		if tokenString == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, constants.ErrMsgUnauthorized)
			c.Abort()
			return
		}

		claims, err := m.jwtService.Verify(tokenString)
		if err != nil {
			m.logger.Debugw("token verification failed", "error", err)
			utils.ErrorResponse(c, http.StatusUnauthorized, constants.ErrMsgUnauthorized)
			c.Abort()
			return
		}

		actor, err := membership.NewActor(claims.ActorID, claims.Username, claims.Admin)
		if err != nil {
			m.logger.Warnw("token carried invalid identity",
				"actor_id", claims.ActorID, "error", err)
			utils.ErrorResponse(c, http.StatusUnauthorized, constants.ErrMsgUnauthorized)
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyActor, actor)
		c.Set(constants.ContextKeyActorID, actor.ID())
		c.Next()
	}
}

// OptionalAuth resolves the actor when a token is present but lets anonymous
// requests through with no actor set. Public resources answer reads to
// anonymous callers; the gate decides, so the middleware must not.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		// A malformed token on an optional route is still a hard failure:
		// silently downgrading a bad credential to anonymous would mask
		// expired tokens as 404s on private resources.
		claims, err := m.jwtService.Verify(tokenString)
		if err != nil {
			m.logger.Debugw("token verification failed", "error", err)
			utils.ErrorResponse(c, http.StatusUnauthorized, constants.ErrMsgUnauthorized)
			c.Abort()
			return
		}

		actor, err := membership.NewActor(claims.ActorID, claims.Username, claims.Admin)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, constants.ErrMsgUnauthorized)
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyActor, actor)
		c.Set(constants.ContextKeyActorID, actor.ID())
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader(constants.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
