package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tonedial/calltone-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// statusFor maps taxonomy codes to transport statuses. This is the only
// place HTTP statuses are derived from core errors.
func statusFor(code apierr.Code) int {
	switch code {
	case apierr.CodeInvalidFileType, apierr.CodeValidation:
		return http.StatusBadRequest
	case apierr.CodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case apierr.CodeUnauthorized:
		return http.StatusUnauthorized
	case apierr.CodeForbidden:
		return http.StatusForbidden
	case apierr.CodeNotFound:
		return http.StatusNotFound
	case apierr.CodeStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	code := apierr.CodeOf(err)
	msg := "internal server error"
	if code != apierr.CodeInternal && err != nil {
		msg = err.Error()
	}
	c.JSON(statusFor(code), ErrorEnvelope{
		Error: APIError{Message: msg, Code: string(code)},
	})
}

func respondOK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

func respondCreated(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusCreated, payload)
}
