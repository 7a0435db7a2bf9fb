package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tallysync/backend/internal/infrastructure/auth"
	"github.com/tallysync/backend/internal/infrastructure/logger"
)

// Auth context keys
const (
	IdentityKey   = "identity"
	UIDKey        = "uid"
	AuthHeaderKey = "Authorization"
)

// BearerAuth verifies the bearer token with verifier and stores the caller's
// identity in the context. Failures answer 401 with the portal's error shape.
func BearerAuth(verifier auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader(AuthHeaderKey))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			logger.GetGinLogger(c).Warn("Token verification failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(IdentityKey, identity)
		c.Set(UIDKey, identity.UID)
		c.Next()
	}
}

// bearerToken takes the second space-separated part of the header
func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// GetUID returns the verified caller uid, empty on unauthenticated routes
func GetUID(c *gin.Context) string {
	return c.GetString(UIDKey)
}

// GetIdentity returns the verified caller identity
func GetIdentity(c *gin.Context) *auth.Identity {
	if v, ok := c.Get(IdentityKey); ok {
		if id, ok := v.(*auth.Identity); ok {
			return id
		}
	}
	return nil
}
