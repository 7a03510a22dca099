// Package http assembles the gin engine: middleware chain, route groups, and
// the dependency wiring from database handles down to handlers.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/forgegate-inc/forgegate/internal/infrastructure/auth"
	"github.com/forgegate-inc/forgegate/internal/infrastructure/config"
	"github.com/forgegate-inc/forgegate/internal/interfaces/http/middleware"
	"github.com/forgegate-inc/forgegate/internal/interfaces/http/routes"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

// Router holds the configured engine and its middleware.
type Router struct {
	engine         *gin.Engine
	authMiddleware *middleware.AuthMiddleware
	rateLimiter    *middleware.RateLimiter
}

// NewRouter builds the full HTTP surface over the given connections.
func NewRouter(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) (*Router, error) {
	engine := gin.New()

	if err := registerValidations(); err != nil {
		return nil, err
	}

	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestLogger(log))
	engine.Use(middleware.ErrorHandler())
	engine.Use(middleware.SecurityHeaders())
	engine.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	jwtService := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes)
	authMiddleware := middleware.NewAuthMiddleware(jwtService, log)
	rateLimiter := middleware.NewRateLimiter(redisClient, 300, time.Minute)

	h, err := buildHandlers(db, redisClient, cfg, log)
	if err != nil {
		return nil, err
	}

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/api/v1", rateLimiter.Limit())
	routes.RegisterProtectionRoutes(v1, h.branches, h.environments, h.deployments, h.checks, authMiddleware)
	routes.RegisterMembershipRoutes(v1, h.members, h.roles, authMiddleware)
	routes.RegisterApprovalRoutes(v1, h.approvals, authMiddleware)
	routes.RegisterSettingRoutes(v1, h.settings, authMiddleware)
	routes.RegisterTokenRoutes(v1, h.tokens, authMiddleware)
	routes.RegisterAuditRoutes(v1, h.audits, authMiddleware)

	return &Router{
		engine:         engine,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
	}, nil
}

// Engine exposes the underlying gin engine for the HTTP server.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
