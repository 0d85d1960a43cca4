package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/boardsync/internal/auth"
	"github.com/charlesng35/boardsync/pkg/errors"
	"github.com/charlesng35/boardsync/pkg/response"
)

const (
	CtxClaimsKey    = "authClaims"
	CtxUserIDKey    = "userID"
	CtxPrincipalKey = "principal"
)

// Auth enforces JWT authentication using the supplied JWT service.
func Auth(jwt *iauth.JWTService) gin.HandlerFunc {
	return authenticate(jwt, true)
}

// OptionalAuth accepts requests without an Authorization header as anonymous. A header that is
// present must still carry a valid token.
func OptionalAuth(jwt *iauth.JWTService) gin.HandlerFunc {
	return authenticate(jwt, false)
}

func authenticate(jwt *iauth.JWTService, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if strings.TrimSpace(header) == "" && !required {
			c.Next()
			return
		}

		token, err := iauth.BearerToken(header)
		if err != nil {
			unauthorized(c)
			return
		}

		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			unauthorized(c)
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUserIDKey, claims.UserID)

		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	response.Error(c, errors.ErrUnauthorized)
	c.Abort()
}
