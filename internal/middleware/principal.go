package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/boardsync/internal/auditctx"
	"github.com/charlesng35/boardsync/internal/permissions"
	"github.com/charlesng35/boardsync/pkg/errors"
	"github.com/charlesng35/boardsync/pkg/metrics"
	"github.com/charlesng35/boardsync/pkg/response"
)

// PrincipalResolver loads the principal behind an authenticated user id.
type PrincipalResolver interface {
	Resolve(ctx context.Context, userID string) (permissions.Principal, error)
}

// ResolvePrincipal loads the caller's groups and global permissions once per request and
// attaches the audit actor to the request context.
// Requests that passed OptionalAuth without a token get the anonymous principal.
func ResolvePrincipal(resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := resolver.Resolve(c.Request.Context(), c.GetString(CtxUserIDKey))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Set(CtxPrincipalKey, principal)

		actor := auditctx.Actor{
			UserID:    principal.UserID,
			Username:  principal.Username,
			Source:    auditctx.SourceAPI,
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		c.Request = c.Request.WithContext(auditctx.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

// PrincipalFrom returns the principal stored by ResolvePrincipal, or the anonymous principal.
func PrincipalFrom(c *gin.Context) permissions.Principal {
	if v, ok := c.Get(CtxPrincipalKey); ok {
		if principal, ok := v.(permissions.Principal); ok {
			return principal
		}
	}
	return permissions.Anonymous()
}

// RequirePermission checks that the resolved principal holds the global permission.
func RequirePermission(permissionID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := PrincipalFrom(c)
		if principal.IsAnonymous() {
			metrics.PermissionChecks.WithLabelValues(permissionID, "denied").Inc()
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !principal.Has(permissionID) {
			metrics.PermissionChecks.WithLabelValues(permissionID, "denied").Inc()
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		metrics.PermissionChecks.WithLabelValues(permissionID, "allowed").Inc()
		c.Next()
	}
}
