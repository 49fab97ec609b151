package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/caretide/hospital-api/internal/handler"
	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/service/auth"
)

type Handler struct {
	service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes mounts the endpoints that require no token.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	a := r.Group("/auth")
	{
		a.POST("/login", h.Login)
		a.POST("/refresh", h.Refresh)
		a.POST("/forgot-password", h.ForgotPassword)
		a.POST("/reset-password", h.ResetPassword)
		a.POST("/verify-email", h.VerifyEmail)
		a.POST("/otp/request", h.RequestOTP)
		a.POST("/otp/verify", h.VerifyOTP)
	}
}

// RegisterProtectedRoutes mounts the endpoints behind authentication.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	a := r.Group("/auth")
	{
		a.POST("/logout", h.Logout)
		a.POST("/totp/setup", h.SetupTOTP)
		a.POST("/totp/confirm", h.ConfirmTOTP)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	tokens, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		switch err {
		case auth.ErrAccountLocked:
			c.JSON(http.StatusTooManyRequests, handler.NewErrorResponse(err.Error()))
		case auth.ErrTOTPRequired:
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse(err.Error()))
		default:
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid credentials"))
		}
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(tokens))
}

func (h *Handler) Refresh(c *gin.Context) {
	var req model.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	tokens, err := h.service.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid refresh token"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(tokens))
}

func (h *Handler) Logout(c *gin.Context) {
	accessToken := bearerToken(c)
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = c.ShouldBindJSON(&req)

	if err := h.service.Logout(c.Request.Context(), accessToken, req.RefreshToken); err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to log out"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "logged out"}))
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to process request"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "if the email exists, a reset link was sent"}))
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid or expired token"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "password updated"}))
}

func (h *Handler) VerifyEmail(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid or expired token"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "email verified"}))
}

// RequestOTP starts the patient portal phone login for the current
// tenant.
func (h *Handler) RequestOTP(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}

	var req model.RequestOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.RequestOTP(c.Request.Context(), hospitalID, req.Phone); err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to send code"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "if the number is registered, a code was sent"}))
}

func (h *Handler) VerifyOTP(c *gin.Context) {
	hospitalID, ok := handler.HospitalID(c)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
		return
	}

	var req model.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	tokens, err := h.service.VerifyOTP(c.Request.Context(), hospitalID, req.Phone, req.Code)
	if err != nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid or expired code"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(tokens))
}

func (h *Handler) SetupTOTP(c *gin.Context) {
	actorID, ok := handler.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing credentials"))
		return
	}

	setup, err := h.service.SetupTOTP(c.Request.Context(), actorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to set up totp"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(setup))
}

func (h *Handler) ConfirmTOTP(c *gin.Context) {
	actorID, ok := handler.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing credentials"))
		return
	}

	var req model.TOTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.ConfirmTOTP(c.Request.Context(), actorID, req.Code); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid code"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "totp enabled"}))
}

func bearerToken(c *gin.Context) string {
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
