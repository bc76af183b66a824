package handler

import (
	"net/http"

	"go-gin-meetup/internal/model"
	"go-gin-meetup/internal/service"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	service service.EventService
}

func NewEventHandler(service service.EventService) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) RegisterRoutes(router *gin.RouterGroup, auth *AuthMiddleware) {
	router.GET("events", auth.OptionalSession(), h.List)
	router.GET("events/:id", auth.OptionalSession(), h.GetDetail)
	router.POST("events", auth.RequireSession(), h.Create)
	router.PUT("events/:id", auth.RequireSession(), h.Update)
	router.GET("events/:id/participants", h.ListParticipants)
}

// ListEventsQuery scope: all | upcoming | past；首頁只取前幾筆時帶 limit
type ListEventsQuery struct {
	Scope  string `form:"scope"`
	Search string `form:"search"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// CreateEventRequest 建立活動請求
type CreateEventRequest struct {
	Title           string  `json:"title" binding:"required"`
	Description     string  `json:"description" binding:"required"`
	Date            string  `json:"date" binding:"required"`
	Time            string  `json:"time" binding:"required"`
	Location        string  `json:"location" binding:"required"`
	MaxParticipants int     `json:"max_participants" binding:"required"`
	ImageURL        *string `json:"image_url"`
}

// UpdateEventRequest 更新活動請求，只更新有帶的欄位
type UpdateEventRequest struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	Date            *string `json:"date"`
	Time            *string `json:"time"`
	Location        *string `json:"location"`
	MaxParticipants *int    `json:"max_participants"`
	ImageURL        *string `json:"image_url"`
}

func (h *EventHandler) List(c *gin.Context) {
	var query ListEventsQuery
	if err := BindQuery(c, &query); err != nil {
		return
	}
	events, err := h.service.List(c, model.EventScope(query.Scope), query.Search, query.Limit)
	if err != nil {
		handleError(c, err, "ListEvents")
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) GetDetail(c *gin.Context) {
	eventID, ok := ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.service.GetDetail(c, SessionFrom(c), eventID)
	if err != nil {
		handleError(c, err, "GetEventDetail")
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *EventHandler) Create(c *gin.Context) {
	var req CreateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	created, err := h.service.Create(c, SessionFrom(c), model.CreateEventParams{
		Title:           req.Title,
		Description:     req.Description,
		Date:            req.Date,
		Time:            req.Time,
		Location:        req.Location,
		MaxParticipants: req.MaxParticipants,
		ImageURL:        req.ImageURL,
	})
	if err != nil {
		handleError(c, err, "CreateEvent")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *EventHandler) Update(c *gin.Context) {
	eventID, ok := ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	params := model.UpdateEventParams{
		Title:           req.Title,
		Description:     req.Description,
		Date:            req.Date,
		Time:            req.Time,
		Location:        req.Location,
		MaxParticipants: req.MaxParticipants,
		ImageURL:        req.ImageURL,
	}
	if params.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one field is required"})
		return
	}
	updated, err := h.service.Update(c, SessionFrom(c), eventID, params)
	if err != nil {
		handleError(c, err, "UpdateEvent")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *EventHandler) ListParticipants(c *gin.Context) {
	eventID, ok := ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	participants, err := h.service.ListParticipants(c, eventID)
	if err != nil {
		handleError(c, err, "ListParticipants")
		return
	}
	c.JSON(http.StatusOK, participants)
}
