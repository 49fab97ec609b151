package handler

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/caretide/hospital-api/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError maps service errors onto HTTP statuses. Unknown errors
// become a 500 without leaking internals.
func RespondError(c *gin.Context, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Code {
	case errors.ErrNotFound:
		status = http.StatusNotFound
	case errors.ErrBadRequest:
		status = http.StatusBadRequest
	case errors.ErrUnauthorized:
		status = http.StatusUnauthorized
	case errors.ErrForbidden:
		status = http.StatusForbidden
	case errors.ErrConflict:
		status = http.StatusConflict
	}

	c.JSON(status, NewErrorResponse(appErr.Message))
}
