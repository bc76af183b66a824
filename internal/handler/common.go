package handler

import (
	"errors"
	"net/http"

	apperrors "go-gin-meetup/pkg/app_errors"
	"go-gin-meetup/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func BindJson(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

func BindQuery(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

// ParseUUIDParam 解析路徑參數，失敗時直接回 400
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// handleError 將 service 錯誤對應到 HTTP 狀態碼，未知錯誤一律 500
func handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case errors.Is(err, apperrors.ErrProfileNotFound):
		log.Warn("Profile not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
	case errors.Is(err, apperrors.ErrEventFull):
		log.Warn("Event is full")
		c.JSON(http.StatusConflict, gin.H{"error": "Event is full"})
	case errors.Is(err, apperrors.ErrAlreadyParticipant):
		log.Warn("Already a participant")
		c.JSON(http.StatusConflict, gin.H{"error": "Already a participant"})
	case errors.Is(err, apperrors.ErrNotParticipant):
		log.Warn("Not a participant")
		c.JSON(http.StatusConflict, gin.H{"error": "Not a participant"})
	case errors.Is(err, apperrors.ErrProfileExists):
		log.Warn("Profile already exists")
		c.JSON(http.StatusConflict, gin.H{"error": "Profile already exists"})
	case errors.Is(err, apperrors.ErrEventNotUpcoming):
		log.Warn("Event has already started")
		c.JSON(http.StatusConflict, gin.H{"error": "Event has already started"})
	case errors.Is(err, apperrors.ErrOwnerCannotParticipate):
		log.Warn("Organizer cannot join own event")
		c.JSON(http.StatusForbidden, gin.H{"error": "Organizer cannot join own event"})
	case errors.Is(err, apperrors.ErrForbidden):
		log.Warn("Forbidden")
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, apperrors.ErrUnauthorized):
		log.Warn("Unauthorized")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
