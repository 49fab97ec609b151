package hospital

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/caretide/hospital-api/internal/email"
	"github.com/caretide/hospital-api/internal/handler"
	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/service/hospital"
)

type Handler struct {
	service hospital.HospitalService
	mailer  email.Service
}

func NewHandler(service hospital.HospitalService, mailer email.Service) *Handler {
	return &Handler{service: service, mailer: mailer}
}

// RegisterAdminRoutes mounts the cross-tenant management surface used by
// the platform operator.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	hospitals := r.Group("/hospitals")
	{
		hospitals.POST("", h.CreateHospital)
		hospitals.GET("", h.ListHospitals)
		hospitals.GET("/:id", h.GetHospital)
		hospitals.PUT("/:id", h.UpdateHospital)
		hospitals.DELETE("/:id", h.DeactivateHospital)
		hospitals.GET("/:id/subscription", h.GetSubscription)
		hospitals.PUT("/:id/subscription", h.ChangePlan)
	}
	r.POST("/email/test", h.TestEmail)
}

// RegisterTenantRoutes mounts the hospital-scoped endpoints.
func (h *Handler) RegisterTenantRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard", h.Dashboard)
	r.GET("/hospital", h.CurrentHospital)
}

func (h *Handler) CreateHospital(c *gin.Context) {
	var req model.CreateHospitalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.CreateHospital(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) ListHospitals(c *gin.Context) {
	hospitals, err := h.service.ListHospitals(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(hospitals))
}

func (h *Handler) GetHospital(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid hospital id"))
		return
	}

	found, err := h.service.GetHospital(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

func (h *Handler) UpdateHospital(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid hospital id"))
		return
	}

	var req model.UpdateHospitalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.UpdateHospital(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) DeactivateHospital(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid hospital id"))
		return
	}

	if err := h.service.DeactivateHospital(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "hospital deactivated"}))
}

func (h *Handler) GetSubscription(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid hospital id"))
		return
	}

	sub, err := h.service.GetSubscription(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(sub))
}

func (h *Handler) ChangePlan(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid hospital id"))
		return
	}

	var req struct {
		Plan model.SubscriptionPlan `json:"plan" binding:"required,oneof=basic premium enterprise"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.ChangePlan(c.Request.Context(), id, req.Plan); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"plan": req.Plan}))
}

// TestEmail sends a throwaway message so operators can verify SMTP
// settings without waiting for a real trigger.
func (h *Handler) TestEmail(c *gin.Context) {
	var req struct {
		To string `json:"to" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	err := h.mailer.SendCustom(c.Request.Context(), req.To, "SMTP configuration test",
		"<p>This is a test message. Your SMTP settings are working.</p>")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "test email sent"}))
}

func (h *Handler) Dashboard(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}

	stats, err := h.service.GetDashboardStats(c.Request.Context(), hospitalID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(stats))
}

func (h *Handler) CurrentHospital(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}

	found, err := h.service.GetHospital(c.Request.Context(), hospitalID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}
