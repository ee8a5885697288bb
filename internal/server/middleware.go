package server

import (
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/sunset/internal/actorctx"
)

// actorMiddleware threads the acting admin username from the trigger
// request into the context for note composition and audit entries.
func actorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor := c.GetHeader("X-Admin-User"); actor != "" {
			c.Request = c.Request.WithContext(actorctx.WithActor(c.Request.Context(), actor))
		}
		c.Next()
	}
}
