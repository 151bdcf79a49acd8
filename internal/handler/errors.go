package handler

import (
	"errors"
	"net/http"

	"user_auth/internal/service"
	"user_auth/internal/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps service errors to HTTP responses
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var verr *service.ValidationError
	var conflict *service.ConflictError

	switch {
	case errors.As(err, &verr):
		respondValidation(c, verr.Fields)
	case errors.As(err, &conflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": conflict.Message, "field": conflict.Field})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, service.ErrInvalidToken):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token."})
	case errors.Is(err, service.ErrNotAuthenticated):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You are not logged in"})
	case errors.Is(err, service.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action."})
	case errors.Is(err, service.ErrProfileNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Not found."})
	default:
		logger.Error("unhandled internal error", zap.Error(err), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "An unexpected internal error occurred"})
	}
}

func respondValidation(c *gin.Context, fields validator.Errors) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": fields})
}

func respondBadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
}
