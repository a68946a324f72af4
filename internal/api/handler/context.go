package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/grandnode/mobile-api/internal/api/middleware"
	"github.com/grandnode/mobile-api/internal/core/domain"
)

// ctxIdentity returns the identity injected by the Auth middleware. Its
// absence means the route was mounted without authentication.
func ctxIdentity(c echo.Context) (domain.SessionIdentity, error) {
	identity, ok := c.Get(middleware.IdentityKey).(domain.SessionIdentity)
	if !ok {
		return domain.SessionIdentity{}, domain.Authentication("Authentication required")
	}
	return identity, nil
}
