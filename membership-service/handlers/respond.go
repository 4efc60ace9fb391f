package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"orghub-backend/membership-service/services"
	"orghub-backend/shared/utils/apperrors"
)

// actorFromContext reads the identity the auth middleware stored
func actorFromContext(c *gin.Context) (services.Actor, bool) {
	userID, ok := c.Get("userID")
	if !ok {
		return services.Actor{}, false
	}
	email, ok := c.Get("userEmail")
	if !ok {
		return services.Actor{}, false
	}
	id, ok := userID.(uuid.UUID)
	if !ok {
		return services.Actor{}, false
	}
	emailStr, ok := email.(string)
	if !ok {
		return services.Actor{}, false
	}
	return services.Actor{ID: id, Email: emailStr}, true
}

// respondError translates an error into the HTTP response envelope
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		log.Printf("❌ Unhandled error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Internal server error",
		})
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Kind {
	case apperrors.KindNotAuthenticated:
		status = http.StatusUnauthorized
	case apperrors.KindNotAuthorized:
		status = http.StatusForbidden
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindConflict:
		status = http.StatusConflict
	case apperrors.KindExpired:
		status = http.StatusGone
	case apperrors.KindValidation:
		status = http.StatusBadRequest
	case apperrors.KindCritical:
		log.Printf("🚨 Critical failure on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		status = http.StatusInternalServerError
	}

	c.JSON(status, gin.H{
		"success": false,
		"error":   appErr.Message,
	})
}

// parseUUIDParam parses a path parameter as a UUID
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid " + name + " format",
		})
		return uuid.Nil, false
	}
	return id, true
}
