package plugin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/caretide/hospital-api/internal/handler"
	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/service/plugin"
)

type Handler struct {
	service plugin.PluginService
}

func NewHandler(service plugin.PluginService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	plugins := r.Group("/plugins")
	{
		plugins.GET("", h.ListPlugins)
		plugins.POST("/:name/activate", h.Activate)
		plugins.POST("/:name/deactivate", h.Deactivate)
		plugins.PUT("/:name/settings", h.UpdateSettings)
	}
}

func (h *Handler) ListPlugins(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}

	plugins, err := h.service.ListPlugins(c.Request.Context(), hospitalID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(plugins))
}

func (h *Handler) Activate(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}
	actorID, _ := handler.ActorID(c)

	var req model.ActivatePluginRequest
	// Settings are optional on activation.
	_ = c.ShouldBindJSON(&req)

	activation, err := h.service.Activate(c.Request.Context(), hospitalID, actorID, c.Param("name"), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(activation))
}

func (h *Handler) Deactivate(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}
	actorID, _ := handler.ActorID(c)

	if err := h.service.Deactivate(c.Request.Context(), hospitalID, actorID, c.Param("name")); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "plugin deactivated"}))
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}
	actorID, _ := handler.ActorID(c)

	var req model.UpdatePluginSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	activation, err := h.service.UpdateSettings(c.Request.Context(), hospitalID, actorID, c.Param("name"), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(activation))
}
