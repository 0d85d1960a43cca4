package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/boardsync/internal/middleware"
	"github.com/charlesng35/boardsync/internal/permissions"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

func principalFrom(c *gin.Context) permissions.Principal {
	return middleware.PrincipalFrom(c)
}
