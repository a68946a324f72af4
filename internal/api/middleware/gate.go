package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/grandnode/mobile-api/internal/core/domain"
)

// Enabled rejects every request while the mobile API is switched off.
func Enabled(enabled bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !enabled {
				return domain.InvalidState("Mobile API is disabled")
			}
			return next(c)
		}
	}
}
