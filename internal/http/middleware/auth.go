// Package middleware holds the gin middleware chain: auth, request
// logging, and panic recovery.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/KHY90/cartpilot-backend/internal/infra"
)

const callerUserIDKey = "caller_user_id"

// Auth is optional: a missing Authorization header is not an error, since
// the chat endpoint serves anonymous turns — it just leaves CallerUserID
// empty. A header that does not use the Bearer scheme, or a bearer token
// that fails verification, is rejected with 401, since a caller attempting
// auth and failing should not silently fall back to anonymous.
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			c.AbortWithStatusJSON(401, gin.H{"error": "authorization header must use the Bearer scheme"})
			return
		}

		claims, err := verifier.Verify(c.Request.Context(), strings.TrimPrefix(header, prefix))
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(callerUserIDKey, claims.UserID)
		c.Next()
	}
}

// RequireAuth guards an operation §7 marks Unauthorized-without-a-bearer:
// wishlist, rating, purchase, and admin endpoints all sit behind this.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CallerUserID(c) == "" {
			c.AbortWithStatusJSON(401, gin.H{"error": "authorization required"})
			return
		}
		c.Next()
	}
}

// CallerUserID returns the authenticated user id Auth populated, or "" for
// an anonymous request.
func CallerUserID(c *gin.Context) string {
	v, ok := c.Get(callerUserIDKey)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
