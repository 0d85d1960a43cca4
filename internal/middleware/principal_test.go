package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/boardsync/internal/auditctx"
	"github.com/charlesng35/boardsync/internal/permissions"
	"github.com/charlesng35/boardsync/pkg/errors"
)

type stubResolver map[string]permissions.Principal

func (s stubResolver) Resolve(_ context.Context, userID string) (permissions.Principal, error) {
	if userID == "" {
		return permissions.Anonymous(), nil
	}
	principal, ok := s[userID]
	if !ok {
		return permissions.Principal{}, errors.ErrUnauthorized
	}
	return principal, nil
}

func TestRequirePermission(t *testing.T) {
	gin.SetMode(gin.TestMode)

	resolver := stubResolver{
		"admin": {UserID: "admin", Permissions: permissions.NewSet(permissions.IntegrationFullAll)},
		"plain": {UserID: "plain", Permissions: permissions.NewSet()},
	}

	r := gin.New()
	r.POST("/integrations",
		func(c *gin.Context) {
			if id := c.GetHeader("X-Test-User"); id != "" {
				c.Set(CtxUserIDKey, id)
			}
			c.Next()
		},
		ResolvePrincipal(resolver),
		RequirePermission(permissions.IntegrationFullAll),
		func(c *gin.Context) {
			c.String(http.StatusOK, PrincipalFrom(c).UserID)
		},
	)

	cases := []struct {
		user   string
		status int
	}{
		{"", http.StatusUnauthorized},
		{"plain", http.StatusForbidden},
		{"ghost", http.StatusUnauthorized},
		{"admin", http.StatusOK},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/integrations", nil)
		if tc.user != "" {
			req.Header.Set("X-Test-User", tc.user)
		}
		r.ServeHTTP(w, req)
		require.Equal(t, tc.status, w.Code, "user %q", tc.user)
	}
}

func TestPrincipalFromDefaultsToAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	require.True(t, PrincipalFrom(c).IsAnonymous())
}

func TestResolvePrincipalAttachesAuditActor(t *testing.T) {
	gin.SetMode(gin.TestMode)

	resolver := stubResolver{"u1": {UserID: "u1", Username: "alice", Permissions: permissions.NewSet()}}

	var actor auditctx.Actor
	r := gin.New()
	r.GET("/whoami",
		func(c *gin.Context) {
			c.Set(CtxUserIDKey, "u1")
			c.Next()
		},
		ResolvePrincipal(resolver),
		func(c *gin.Context) {
			actor, _ = auditctx.FromContext(c.Request.Context())
			c.Status(http.StatusNoContent)
		},
	)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("User-Agent", "board-test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "u1", actor.UserID)
	require.Equal(t, "alice", actor.Username)
	require.Equal(t, auditctx.SourceAPI, actor.Source)
	require.Equal(t, "board-test", actor.UserAgent)
	require.NotEmpty(t, actor.IPAddress)
}
