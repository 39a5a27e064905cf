package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/salonhq/salon-api/pkg/errors"
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

// Error writes the JSON error response for err, mapping application error
// codes to HTTP statuses. Unknown errors are reported as 500 without
// leaking their message.
func Error(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	status := http.StatusInternalServerError
	message := "internal server error"

	switch apperrors.CodeOf(err) {
	case apperrors.ErrNotFound:
		status = http.StatusNotFound
	case apperrors.ErrBadRequest:
		status = http.StatusBadRequest
	case apperrors.ErrUnauthorized:
		status = http.StatusUnauthorized
	case apperrors.ErrConflict:
		status = http.StatusConflict
	}

	if status != http.StatusInternalServerError {
		appErr = apperrors.AsAppError(err)
		message = appErr.Message
	}

	c.Error(err)
	c.JSON(status, NewErrorResponse(message))
}
