package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"user_auth/internal/model"
	"user_auth/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const AuthUserKey = "authUser"

var errBadHeader = errors.New("invalid authorization header")

// Authenticator resolves a bearer string to a user
type Authenticator interface {
	Authenticate(ctx context.Context, bearer string) (*model.User, error)
}

// TokenAuthMiddleware rejects requests without a live token
func TokenAuthMiddleware(auth Authenticator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided."})
			return
		}

		bearer, err := parseAuthHeader(authHeader)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token header."})
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), bearer)
		if err != nil {
			if errors.Is(err, service.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token."})
				return
			}
			logger.Error("failed to authenticate request", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "An unexpected internal error occurred"})
			return
		}

		c.Set(AuthUserKey, user)
		c.Next()
	}
}

// OptionalTokenAuth sets the user when a live token is presented and lets
// every request through
func OptionalTokenAuth(auth Authenticator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		bearer, err := parseAuthHeader(c.GetHeader("Authorization"))
		if err == nil {
			user, err := auth.Authenticate(c.Request.Context(), bearer)
			switch {
			case err == nil:
				c.Set(AuthUserKey, user)
			case !errors.Is(err, service.ErrInvalidToken):
				logger.Warn("failed to authenticate request", zap.Error(err))
			}
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user or nil
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(AuthUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}

// parseAuthHeader accepts "Bearer <token>" and "Token <token>"
func parseAuthHeader(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return "", errBadHeader
	}
	switch strings.ToLower(parts[0]) {
	case "bearer", "token":
		return parts[1], nil
	}
	return "", errBadHeader
}
