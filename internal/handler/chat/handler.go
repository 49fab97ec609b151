package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/caretide/hospital-api/internal/handler"
	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/service/chat"
)

type Handler struct {
	service chat.ChatService
}

func NewHandler(service chat.ChatService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	rooms := r.Group("/chat/rooms")
	{
		rooms.POST("", h.CreateRoom)
		rooms.GET("", h.ListRooms)
		rooms.GET("/:id", h.GetRoom)
		rooms.POST("/:id/messages", h.PostMessage)
		rooms.GET("/:id/messages", h.ListMessages)
		rooms.GET("/:id/unread", h.UnreadCount)
	}
}

func (h *Handler) CreateRoom(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}
	actorID, _ := handler.ActorID(c)

	var req model.CreateChatRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	room, err := h.service.CreateRoom(c.Request.Context(), hospitalID, actorID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(room))
}

func (h *Handler) GetRoom(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid room id"))
		return
	}

	room, err := h.service.GetRoom(c.Request.Context(), hospitalID, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(room))
}

func (h *Handler) ListRooms(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}

	var patientID *uuid.UUID
	if raw := c.Query("patient_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient_id"))
			return
		}
		patientID = &id
	}

	rooms, err := h.service.ListRooms(c.Request.Context(), hospitalID, patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(rooms))
}

func (h *Handler) PostMessage(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}
	senderID, _ := handler.ActorID(c)

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid room id"))
		return
	}

	var req model.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	message, err := h.service.PostMessage(c.Request.Context(), hospitalID, roomID, senderID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(message))
}

func (h *Handler) ListMessages(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}
	readerID, _ := handler.ActorID(c)

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid room id"))
		return
	}

	messages, err := h.service.ListMessages(c.Request.Context(), hospitalID, roomID, readerID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(messages))
}

func (h *Handler) UnreadCount(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}
	readerID, _ := handler.ActorID(c)

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid room id"))
		return
	}

	count, err := h.service.UnreadCount(c.Request.Context(), hospitalID, roomID, readerID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"unread": count}))
}
