package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/grandnode/mobile-api/internal/core/domain"
)

type stubResolver struct {
	identity domain.SessionIdentity
	err      error
	got      string
}

func (s *stubResolver) Resolve(token string) (domain.SessionIdentity, error) {
	s.got = token
	return s.identity, s.err
}

func runAuth(t *testing.T, resolver *stubResolver, header string) (bool, echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(resolver)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	err := handler(c)
	return called, c, err
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	want := domain.SessionIdentity{SubjectID: uuid.New(), UserType: domain.UserTypeGuest}
	resolver := &stubResolver{identity: want}

	called, c, err := runAuth(t, resolver, "Bearer abc.def.ghi")
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if resolver.got != "abc.def.ghi" {
		t.Fatalf("resolver got %q", resolver.got)
	}
	got, ok := c.Get(IdentityKey).(domain.SessionIdentity)
	if !ok || got != want {
		t.Fatalf("identity not set: %+v", c.Get(IdentityKey))
	}
}

func TestAuthMiddleware_SchemeIsCaseInsensitive(t *testing.T) {
	called, _, err := runAuth(t, &stubResolver{}, "bearer tok")
	if err != nil || !called {
		t.Fatalf("expected pass-through, got called=%v err=%v", called, err)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	called, _, err := runAuth(t, &stubResolver{}, "")
	if called {
		t.Fatalf("next should not be called")
	}
	if domain.KindOf(err) != domain.KindAuthentication {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestAuthMiddleware_RejectsOtherSchemes(t *testing.T) {
	for _, header := range []string{"Basic dXNlcjpwYXNz", "Token abc", "Bearer ", "abc"} {
		resolver := &stubResolver{}
		called, _, err := runAuth(t, resolver, header)
		if called {
			t.Fatalf("%q: next should not be called", header)
		}
		if domain.KindOf(err) != domain.KindAuthentication {
			t.Fatalf("%q: expected authentication error, got %v", header, err)
		}
		if resolver.got != "" {
			t.Fatalf("%q: resolver should not be called", header)
		}
	}
}

func TestAuthMiddleware_ResolverFailure(t *testing.T) {
	resolver := &stubResolver{err: domain.Authentication("Invalid or expired token")}

	called, _, err := runAuth(t, resolver, "Bearer expired")
	if called {
		t.Fatalf("next should not be called")
	}
	if err == nil || err.Error() != "authentication: Invalid or expired token" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnabled(t *testing.T) {
	e := echo.New()
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	rec := httptest.NewRecorder()
	if err := Enabled(true)(next)(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)); err != nil {
		t.Fatalf("enabled gate returned %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	err := Enabled(false)(next)(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder()))
	if domain.KindOf(err) != domain.KindInvalidState {
		t.Fatalf("expected invalid state, got %v", err)
	}
}
