package appointment

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/caretide/hospital-api/internal/handler"
	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/service/appointment"
)

type Handler struct {
	service appointment.AppointmentService
}

func NewHandler(service appointment.AppointmentService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.CreateAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id", h.UpdateAppointment)
		appointments.POST("/:id/cancel", h.CancelAppointment)
	}
	r.GET("/doctors/:id/schedule", h.GetDoctorSchedule)
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}
	actorID, _ := handler.ActorID(c)

	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.CreateAppointment(c.Request.Context(), hospitalID, actorID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) GetAppointment(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment id"))
		return
	}

	found, err := h.service.GetAppointment(c.Request.Context(), hospitalID, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}
	actorID, _ := handler.ActorID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment id"))
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.UpdateAppointment(c.Request.Context(), hospitalID, actorID, id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}
	actorID, _ := handler.ActorID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment id"))
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	// Body is optional for cancellations.
	_ = c.ShouldBindJSON(&req)

	if err := h.service.CancelAppointment(c.Request.Context(), hospitalID, actorID, id, req.Reason); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "appointment cancelled"}))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}

	filters := &model.AppointmentFilters{
		HospitalID: hospitalID,
		Status:     model.AppointmentStatus(c.Query("status")),
	}
	if raw := c.Query("patient_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient_id"))
			return
		}
		filters.PatientID = id
	}
	if raw := c.Query("doctor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor_id"))
			return
		}
		filters.DoctorID = id
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid from timestamp"))
			return
		}
		filters.StartDate = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid to timestamp"))
			return
		}
		filters.EndDate = t
	}

	appointments, err := h.service.ListAppointments(c.Request.Context(), filters)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) GetDoctorSchedule(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}

	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor id"))
		return
	}

	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		date, err = time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid date, expected YYYY-MM-DD"))
			return
		}
	}

	slots, err := h.service.GetDoctorSchedule(c.Request.Context(), hospitalID, doctorID, date)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(slots))
}
