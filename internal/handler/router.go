package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Event         *EventHandler
	Participation *ParticipationHandler
	Profile       *ProfileHandler
	Dashboard     *DashboardHandler
}

// NewRouter 所有 API 掛在 /api/v1 之下
func NewRouter(h Handlers, auth *AuthMiddleware) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(), gin.Recovery())

	api := r.Group("/api/v1")
	api.GET("ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	h.Event.RegisterRoutes(api, auth)
	h.Participation.RegisterRoutes(api, auth)
	h.Profile.RegisterRoutes(api, auth)
	h.Dashboard.RegisterRoutes(api, auth)

	return r
}
