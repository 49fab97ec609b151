package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/caretide/hospital-api/internal/handler"
	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/service/billing"
)

type Handler struct {
	service billing.BillingService
}

func NewHandler(service billing.BillingService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	bills := r.Group("/bills")
	{
		bills.POST("", h.CreateBill)
		bills.GET("", h.ListBills)
		bills.GET("/:id", h.GetBill)
		bills.POST("/:id/issue", h.IssueBill)
		bills.POST("/:id/void", h.VoidBill)
		bills.POST("/:id/payments", h.RecordPayment)
	}
	r.GET("/patients/:id/outstanding", h.OutstandingForPatient)
}

func (h *Handler) CreateBill(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}
	actorID, _ := handler.ActorID(c)

	var req model.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.CreateBill(c.Request.Context(), hospitalID, actorID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) GetBill(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid bill id"))
		return
	}

	bill, err := h.service.GetBill(c.Request.Context(), hospitalID, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(bill))
}

func (h *Handler) IssueBill(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}
	actorID, _ := handler.ActorID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid bill id"))
		return
	}

	issued, err := h.service.IssueBill(c.Request.Context(), hospitalID, actorID, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(issued))
}

func (h *Handler) VoidBill(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}
	actorID, _ := handler.ActorID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid bill id"))
		return
	}

	voided, err := h.service.VoidBill(c.Request.Context(), hospitalID, actorID, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(voided))
}

func (h *Handler) RecordPayment(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}
	actorID, _ := handler.ActorID(c)

	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid bill id"))
		return
	}

	var req model.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	bill, err := h.service.RecordPayment(c.Request.Context(), hospitalID, actorID, billID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(bill))
}

func (h *Handler) ListBills(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}

	filters := &model.BillFilters{
		HospitalID: hospitalID,
		Status:     model.BillStatus(c.Query("status")),
	}
	if raw := c.Query("patient_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient_id"))
			return
		}
		filters.PatientID = id
	}

	bills, err := h.service.ListBills(c.Request.Context(), filters)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(bills))
}

func (h *Handler) OutstandingForPatient(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}

	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient id"))
		return
	}

	outstanding, err := h.service.OutstandingForPatient(c.Request.Context(), hospitalID, patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"outstanding_cents": outstanding}))
}
