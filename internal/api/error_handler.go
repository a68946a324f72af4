package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/grandnode/mobile-api/internal/api/handler"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors to their HTTP status and error code.
//   - Logs internal failures with their cause without leaking it to the client.
//   - Renders the standard mobile API envelope.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, env := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, env)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.Envelope) {
	// Echo's own errors (router 404/405, rate limiter, body limit).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status, code := normalizeStatus(he.Code)
		return status, handler.ErrorEnvelope(code, fmt.Sprintf("%v", he.Message), nil)
	}

	status, code, msg, details := handler.Classify(err)
	if status == http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Msg("internal error")
	}
	return status, handler.ErrorEnvelope(code, msg, details)
}

// normalizeStatus maps an echo status onto the envelope codes. Every code
// goes out with its own status, so a 405 or 413 becomes a 400.
func normalizeStatus(status int) (int, string) {
	switch status {
	case http.StatusUnauthorized:
		return status, handler.CodeAuthentication
	case http.StatusForbidden:
		return status, handler.CodeAuthorization
	case http.StatusNotFound:
		return status, handler.CodeNotFound
	case http.StatusConflict:
		return status, handler.CodeConflict
	case http.StatusUnprocessableEntity:
		return status, handler.CodeValidation
	case http.StatusTooManyRequests:
		return status, handler.CodeRateLimited
	}
	if status >= http.StatusInternalServerError {
		return http.StatusInternalServerError, handler.CodeInternal
	}
	return http.StatusBadRequest, handler.CodeBadRequest
}
