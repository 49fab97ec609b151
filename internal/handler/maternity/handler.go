package maternity

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/caretide/hospital-api/internal/handler"
	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/service/maternity"
)

type Handler struct {
	service maternity.MaternityService
}

func NewHandler(service maternity.MaternityService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	antenatal := r.Group("/antenatal")
	{
		antenatal.POST("", h.CreateAntenatalRecord)
		antenatal.GET("", h.ListAntenatalRecords)
		antenatal.GET("/:id", h.GetAntenatalRecord)
		antenatal.POST("/:id/visits", h.AddVisit)
		antenatal.POST("/:id/close", h.CloseAntenatalRecord)
	}
	neonatal := r.Group("/neonatal")
	{
		neonatal.POST("", h.CreateNeonatalRecord)
		neonatal.GET("", h.ListNeonatalRecords)
		neonatal.GET("/:id", h.GetNeonatalRecord)
	}
}

func (h *Handler) CreateAntenatalRecord(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}
	actorID, _ := handler.ActorID(c)

	var req model.CreateAntenatalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.CreateAntenatalRecord(c.Request.Context(), hospitalID, actorID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) GetAntenatalRecord(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid record id"))
		return
	}

	record, err := h.service.GetAntenatalRecord(c.Request.Context(), hospitalID, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(record))
}

func (h *Handler) ListAntenatalRecords(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}

	patientID, err := uuid.Parse(c.Query("patient_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("patient_id is required"))
		return
	}

	records, err := h.service.ListAntenatalRecords(c.Request.Context(), hospitalID, patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}

func (h *Handler) AddVisit(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}
	actorID, _ := handler.ActorID(c)

	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid record id"))
		return
	}

	var req model.CreateAntenatalVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	visit, err := h.service.AddVisit(c.Request.Context(), hospitalID, actorID, recordID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(visit))
}

func (h *Handler) CloseAntenatalRecord(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}
	actorID, _ := handler.ActorID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid record id"))
		return
	}

	var req struct {
		Status model.AntenatalStatus `json:"status" binding:"required,oneof=delivered closed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.CloseAntenatalRecord(c.Request.Context(), hospitalID, actorID, id, req.Status); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"status": req.Status}))
}

func (h *Handler) CreateNeonatalRecord(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}
	actorID, _ := handler.ActorID(c)

	var req model.CreateNeonatalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.CreateNeonatalRecord(c.Request.Context(), hospitalID, actorID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) GetNeonatalRecord(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid record id"))
		return
	}

	record, err := h.service.GetNeonatalRecord(c.Request.Context(), hospitalID, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(record))
}

func (h *Handler) ListNeonatalRecords(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}

	motherID, err := uuid.Parse(c.Query("mother_patient_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("mother_patient_id is required"))
		return
	}

	records, err := h.service.ListNeonatalRecords(c.Request.Context(), hospitalID, motherID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}
