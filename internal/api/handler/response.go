package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/grandnode/mobile-api/internal/core/domain"
)

// APIVersion is reported in every response envelope.
const APIVersion = "v3"

// Error codes carried in error.code.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeAuthentication = "AUTHENTICATION_ERROR"
	CodeAuthorization  = "AUTHORIZATION_ERROR"
	CodeNotFound       = "NOT_FOUND_ERROR"
	CodeConflict       = "CONFLICT_ERROR"
	CodeInternal       = "INTERNAL_SERVER_ERROR"
	CodeBadRequest     = "BAD_REQUEST_ERROR"
	CodeRateLimited    = "RATE_LIMIT_ERROR"
)

// Envelope wraps every mobile API response. Absent data, message and error
// are rendered as null.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data"`
	Message *string    `json:"message"`
	Error   *ErrorBody `json:"error"`
	Meta    Meta       `json:"meta"`
}

type ErrorBody struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details []domain.FieldError `json:"details,omitempty"`
}

type Meta struct {
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

func newMeta() Meta {
	return Meta{Timestamp: time.Now().UTC(), Version: APIVersion}
}

func success(c echo.Context, data any, message string) error {
	env := Envelope{Success: true, Data: data, Meta: newMeta()}
	if message != "" {
		env.Message = &message
	}
	return c.JSON(http.StatusOK, env)
}

// ErrorEnvelope renders a failure envelope.
func ErrorEnvelope(code, message string, details []domain.FieldError) Envelope {
	return Envelope{
		Error: &ErrorBody{Code: code, Message: message, Details: details},
		Meta:  newMeta(),
	}
}

// Classify maps a service error to its status, code and client-safe message.
// Anything that is not a *domain.Error is reported as an internal error.
func Classify(err error) (status int, code, message string, details []domain.FieldError) {
	var de *domain.Error
	if !errors.As(err, &de) {
		return http.StatusInternalServerError, CodeInternal, "An unexpected error occurred", nil
	}

	switch de.Kind {
	case domain.KindValidation:
		return http.StatusUnprocessableEntity, CodeValidation, de.Message, de.Details
	case domain.KindAuthentication:
		return http.StatusUnauthorized, CodeAuthentication, de.Message, nil
	case domain.KindAuthorization:
		return http.StatusForbidden, CodeAuthorization, de.Message, nil
	case domain.KindNotFound:
		return http.StatusNotFound, CodeNotFound, de.Message, nil
	case domain.KindConflict:
		return http.StatusConflict, CodeConflict, de.Message, nil
	case domain.KindInvalidState, domain.KindStepUpRequired:
		return http.StatusBadRequest, CodeBadRequest, de.Message, nil
	default:
		return http.StatusInternalServerError, CodeInternal, de.Message, nil
	}
}

// outcome is the metrics label for a handler result.
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	_, code, _, _ := Classify(err)
	return code
}
