package handler

import (
	"net/http"

	"go-gin-meetup/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(service service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup, auth *AuthMiddleware) {
	router.GET("dashboard", auth.RequireSession(), h.Get)
}

func (h *DashboardHandler) Get(c *gin.Context) {
	dashboard, err := h.service.Get(c, SessionFrom(c))
	if err != nil {
		handleError(c, err, "GetDashboard")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
