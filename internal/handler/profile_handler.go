package handler

import (
	"net/http"

	"go-gin-meetup/internal/model"
	"go-gin-meetup/internal/service"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	service service.ProfileService
}

func NewProfileHandler(service service.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup, auth *AuthMiddleware) {
	router.POST("profiles", auth.RequireSession(), h.Register)
	router.GET("profiles/me", auth.RequireSession(), h.Me)
	router.PUT("profiles/me", auth.RequireSession(), h.Update)
	router.GET("profiles/:id", h.Get)
}

type ProfileRequest struct {
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
	Bio       *string `json:"bio"`
}

func (r ProfileRequest) params() model.UpdateProfileParams {
	return model.UpdateProfileParams{FullName: r.FullName, AvatarURL: r.AvatarURL, Bio: r.Bio}
}

func (h *ProfileHandler) Register(c *gin.Context) {
	var req ProfileRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	profile, err := h.service.Register(c, SessionFrom(c), req.params())
	if err != nil {
		handleError(c, err, "RegisterProfile")
		return
	}
	c.JSON(http.StatusCreated, profile)
}

func (h *ProfileHandler) Me(c *gin.Context) {
	profile, err := h.service.Me(c, SessionFrom(c))
	if err != nil {
		handleError(c, err, "GetMyProfile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) Update(c *gin.Context) {
	var req ProfileRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	profile, err := h.service.Update(c, SessionFrom(c), req.params())
	if err != nil {
		handleError(c, err, "UpdateProfile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) Get(c *gin.Context) {
	id, ok := ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	profile, err := h.service.Get(c, id)
	if err != nil {
		handleError(c, err, "GetProfile")
		return
	}
	c.JSON(http.StatusOK, profile)
}
