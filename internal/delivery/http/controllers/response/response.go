package response

import (
	"context"
	"errors"
	"net/http"

	"LearnForge/internal/app_errors"
	"LearnForge/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CodeValidation   = "validation_error"
	CodeNotFound     = "not_found"
	CodeUpload       = "upload_error"
	CodeForbidden    = "forbidden"
	CodeUnauthorized = "unauthorized"
	CodeTimeout      = "timeout"
	CodeInternal     = "internal"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// Fail maps a service error to its status and code. Unexpected errors are
// logged and reported without detail.
func Fail(c *gin.Context, log logger.Log, err error) {
	status, code := Classify(err)
	if status == http.StatusInternalServerError {
		log.ErrorErr("request failed", err, "method", c.Request.Method, "route", c.FullPath())
		_ = c.Error(err)
		RespondError(c, status, code, errors.New("internal error"))
		return
	}
	RespondError(c, status, code, err)
}

func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, app_errors.ErrValidation):
		return http.StatusBadRequest, CodeValidation
	case app_errors.IsNotFound(err):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, app_errors.ErrFileSize):
		return http.StatusRequestEntityTooLarge, CodeUpload
	case errors.Is(err, app_errors.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType, CodeUpload
	case errors.Is(err, app_errors.ErrUpload):
		return http.StatusBadRequest, CodeUpload
	case errors.Is(err, app_errors.ErrForbidden):
		return http.StatusForbidden, CodeForbidden
	case errors.Is(err, app_errors.ErrTokenExpired), errors.Is(err, app_errors.ErrInvalidToken):
		return http.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, CodeTimeout
	}
	return http.StatusInternalServerError, CodeInternal
}

func BadRequest(c *gin.Context, msg string) {
	RespondError(c, http.StatusBadRequest, CodeValidation, errors.New(msg))
}

// ParamUUID parses a path parameter, responding 400 when it is malformed.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		BadRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
