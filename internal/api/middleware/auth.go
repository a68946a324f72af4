package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/grandnode/mobile-api/internal/core/domain"
	"github.com/grandnode/mobile-api/internal/core/ports"
)

// IdentityKey is the echo context key holding the caller's domain.SessionIdentity.
const IdentityKey = "identity"

// BearerToken extracts the token of an "Authorization: Bearer <token>"
// header. Other schemes are ignored.
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// Auth resolves the bearer token into a session identity and injects it into
// the context. Guest and registered identities are both accepted.
func Auth(resolver ports.IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return domain.Authentication("Authentication required")
			}

			token, ok := BearerToken(c.Request())
			if !ok {
				return domain.Authentication("Invalid authorization header")
			}

			identity, err := resolver.Resolve(token)
			if err != nil {
				return err
			}

			c.Set(IdentityKey, identity)
			return next(c)
		}
	}
}
