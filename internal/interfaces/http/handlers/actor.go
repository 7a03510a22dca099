// Package handlers holds the gin handlers. They stay thin: bind the request,
// build the command with the actor from context, execute, map the result.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/shared/constants"
)

// currentActor returns the authenticated actor, or nil for anonymous
// requests. Handlers pass nil through; the gate decides what anonymous
// callers may see.
func currentActor(c *gin.Context) *membership.Actor {
	v, ok := c.Get(constants.ContextKeyActor)
	if !ok {
		return nil
	}
	actor, _ := v.(*membership.Actor)
	return actor
}
