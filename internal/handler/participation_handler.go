package handler

import (
	"net/http"

	"go-gin-meetup/internal/model"
	"go-gin-meetup/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ParticipationHandler struct {
	service service.ParticipationService
}

func NewParticipationHandler(service service.ParticipationService) *ParticipationHandler {
	return &ParticipationHandler{service: service}
}

func (h *ParticipationHandler) RegisterRoutes(router *gin.RouterGroup, auth *AuthMiddleware) {
	group := router.Group("events/:id/participation", auth.RequireSession())
	{
		group.GET("", h.Status)
		group.POST("toggle", h.Toggle)
		group.PUT("", h.Join)
		group.DELETE("", h.Leave)
	}
}

type participationAction func(c *gin.Context, session *model.Session, eventID uuid.UUID) (*model.ParticipationState, error)

func (h *ParticipationHandler) run(c *gin.Context, operation string, action participationAction) {
	eventID, ok := ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	state, err := action(c, SessionFrom(c), eventID)
	if err != nil {
		handleError(c, err, operation)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *ParticipationHandler) Status(c *gin.Context) {
	h.run(c, "ParticipationStatus", func(c *gin.Context, s *model.Session, id uuid.UUID) (*model.ParticipationState, error) {
		return h.service.Status(c, s, id)
	})
}

func (h *ParticipationHandler) Toggle(c *gin.Context) {
	h.run(c, "ToggleParticipation", func(c *gin.Context, s *model.Session, id uuid.UUID) (*model.ParticipationState, error) {
		return h.service.Toggle(c, s, id)
	})
}

func (h *ParticipationHandler) Join(c *gin.Context) {
	h.run(c, "JoinEvent", func(c *gin.Context, s *model.Session, id uuid.UUID) (*model.ParticipationState, error) {
		return h.service.Join(c, s, id)
	})
}

func (h *ParticipationHandler) Leave(c *gin.Context) {
	h.run(c, "LeaveEvent", func(c *gin.Context, s *model.Session, id uuid.UUID) (*model.ParticipationState, error) {
		return h.service.Leave(c, s, id)
	})
}
