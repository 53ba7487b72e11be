package handler

import (
	"net/http"

	"visitepulse/internal/middleware"
	"visitepulse/internal/rbac"
	"visitepulse/internal/service"
	"visitepulse/pkg/response"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsService service.SettingsService
}

func NewSettingsHandler(settingsService service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup) {
	// The landing page reads branding before anyone authenticates.
	router.GET("/settings/public", h.GetPublic)

	admin := router.Group("/admin/settings", middleware.RequireRole(rbac.RoleAdmin))
	{
		admin.GET("", h.Get)
		admin.PUT("", h.Update)
	}
}

// GetPublic returns the branding subset shown on the landing page
// @Summary      Public settings
// @Tags         settings
// @Produce      json
// @Success      200  {object}  response.Response{data=model.PublicSettings}
// @Router       /settings/public [get]
func (h *SettingsHandler) GetPublic(c *gin.Context) {
	settings, err := h.settingsService.GetPublic(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, settings))
}

// Get returns the full settings row for the admin console
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, settings))
}

// Update applies a partial settings update
// @Summary      Update settings
// @Tags         settings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.UpdateSettingsRequest  true  "Settings Payload"
// @Success      200      {object}  response.Response{data=model.SystemSettings}
// @Failure      400      {object}  response.Response
// @Router       /admin/settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req service.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	settings, err := h.settingsService.Update(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, settings))
}
