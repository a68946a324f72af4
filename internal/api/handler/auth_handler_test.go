package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/grandnode/mobile-api/internal/api/middleware"
	"github.com/grandnode/mobile-api/internal/core/domain"
	"github.com/grandnode/mobile-api/internal/core/ports"
)

type stubAuthService struct {
	guestFn    func(ctx context.Context) (*domain.TokenPair, error)
	loginFn    func(ctx context.Context, email, password string) (*domain.TokenPair, error)
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.TokenPair, error)
	refreshFn  func(ctx context.Context, access, refresh string) (*domain.TokenPair, error)
	logoutFn   func(ctx context.Context, id domain.SessionIdentity) error
}

func (s *stubAuthService) CreateGuest(ctx context.Context) (*domain.TokenPair, error) {
	return s.guestFn(ctx)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.TokenPair, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Refresh(ctx context.Context, access, refresh string) (*domain.TokenPair, error) {
	return s.refreshFn(ctx, access, refresh)
}

func (s *stubAuthService) Logout(ctx context.Context, id domain.SessionIdentity) error {
	return s.logoutFn(ctx, id)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func assertKind(t *testing.T, err error, kind domain.ErrorKind) *domain.Error {
	t.Helper()
	if domain.KindOf(err) != kind {
		t.Fatalf("expected %s error, got %v", kind, err)
	}
	de, _ := err.(*domain.Error)
	return de
}

func registeredPair() *domain.TokenPair {
	return &domain.TokenPair{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresIn:    time.Hour,
		UserType:     domain.UserTypeRegistered,
		CustomerGUID: uuid.MustParse("7b0c4f5e-2d0a-4c55-9a63-0d7b8c2f1e11"),
		Customer:     &domain.CustomerInfo{Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"},
	}
}

func TestAuthHandler_CreateGuest(t *testing.T) {
	e := newTestEcho()
	guid := uuid.New()
	h := NewAuthHandler(&stubAuthService{guestFn: func(context.Context) (*domain.TokenPair, error) {
		return &domain.TokenPair{AccessToken: "a", RefreshToken: "r", ExpiresIn: time.Hour, UserType: domain.UserTypeGuest, CustomerGUID: guid}, nil
	}})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/mobile-api/auth/guest", nil), rec)
	if err := h.CreateGuest(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decodeEnvelope(t, rec)
	if resp["success"] != true || resp["message"] != "Guest session created successfully" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	data := resp["data"].(map[string]any)
	if data["userType"] != "guest" || data["customerGuid"] != guid.String() || data["expiresIn"] != float64(3600) {
		t.Fatalf("unexpected token payload: %+v", data)
	}
	if _, ok := data["customerInfo"]; ok {
		t.Fatalf("guest must not carry customerInfo")
	}
	meta := resp["meta"].(map[string]any)
	if meta["version"] != "v3" {
		t.Fatalf("unexpected meta: %+v", meta)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{loginFn: func(_ context.Context, email, password string) (*domain.TokenPair, error) {
		if email != "ada@example.com" || password != "secret1" {
			t.Fatalf("unexpected args: %s %s", email, password)
		}
		return registeredPair(), nil
	}})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/mobile-api/auth/login", `{"email":"ada@example.com","password":"secret1"}`), rec)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	info := data["customerInfo"].(map[string]any)
	if info["fullName"] != "Ada Lovelace" || data["userType"] != "registered" {
		t.Fatalf("unexpected payload: %+v", data)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{loginFn: func(context.Context, string, string) (*domain.TokenPair, error) {
		t.Fatalf("service must not be called")
		return nil, nil
	}})

	c := e.NewContext(jsonRequest(http.MethodPost, "/", `{"email":"not-an-email"}`), httptest.NewRecorder())
	de := assertKind(t, h.Login(c), domain.KindValidation)
	if de.Message != "Invalid login data" {
		t.Fatalf("unexpected message %q", de.Message)
	}
	fields := map[string]bool{}
	for _, d := range de.Details {
		fields[d.Field] = true
	}
	if !fields["email"] || !fields["password"] {
		t.Fatalf("expected email and password details, got %+v", de.Details)
	}

	c = e.NewContext(jsonRequest(http.MethodPost, "/", `{broken`), httptest.NewRecorder())
	assertKind(t, h.Login(c), domain.KindValidation)
}

func TestAuthHandler_Login_ServiceError(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{loginFn: func(context.Context, string, string) (*domain.TokenPair, error) {
		return nil, domain.Authentication("Invalid email or password")
	}})

	c := e.NewContext(jsonRequest(http.MethodPost, "/", `{"email":"a@example.com","password":"x"}`), httptest.NewRecorder())
	assertKind(t, h.Login(c), domain.KindAuthentication)
}

func TestAuthHandler_Register_PassesGuestBearer(t *testing.T) {
	e := newTestEcho()
	var got ports.RegisterInput
	h := NewAuthHandler(&stubAuthService{registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.TokenPair, error) {
		got = in
		return registeredPair(), nil
	}})

	req := jsonRequest(http.MethodPost, "/", `{"email":"ada@example.com","password":"secret1","confirmPassword":"secret1","firstName":"Ada"}`)
	req.Header.Set("Authorization", "Bearer guest-token")
	rec := httptest.NewRecorder()
	if err := h.Register(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if got.BearerToken != "guest-token" || got.ConfirmPassword != "secret1" || got.FirstName != "Ada" {
		t.Fatalf("unexpected input: %+v", got)
	}
	if decodeEnvelope(t, rec)["message"] != "Registration successful" {
		t.Fatalf("unexpected message")
	}
}

func TestAuthHandler_Register_WithoutBearer(t *testing.T) {
	e := newTestEcho()
	var got ports.RegisterInput
	h := NewAuthHandler(&stubAuthService{registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.TokenPair, error) {
		got = in
		return nil, domain.Conflict("Email address is already registered")
	}})

	req := jsonRequest(http.MethodPost, "/", `{"email":"ada@example.com","password":"secret1","confirmPassword":"secret1"}`)
	req.Header.Set("Authorization", "Basic abc")
	assertKind(t, h.Register(e.NewContext(req, httptest.NewRecorder())), domain.KindConflict)
	if got.BearerToken != "" {
		t.Fatalf("non-bearer header must be ignored, got %q", got.BearerToken)
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{refreshFn: func(_ context.Context, access, refresh string) (*domain.TokenPair, error) {
		if access != "old-access" || refresh != "old-refresh" {
			t.Fatalf("unexpected args: %s %s", access, refresh)
		}
		return registeredPair(), nil
	}})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/", `{"accessToken":"old-access","refreshToken":"old-refresh"}`), rec)
	if err := h.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if decodeEnvelope(t, rec)["message"] != "Token refreshed successfully" {
		t.Fatalf("unexpected message")
	}

	c = e.NewContext(jsonRequest(http.MethodPost, "/", `{"accessToken":"x"}`), httptest.NewRecorder())
	de := assertKind(t, h.Refresh(c), domain.KindValidation)
	if de.Message != "Invalid refresh token data" {
		t.Fatalf("unexpected message %q", de.Message)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newTestEcho()
	identity := domain.SessionIdentity{SubjectID: uuid.New(), UserType: domain.UserTypeGuest}
	var got domain.SessionIdentity
	h := NewAuthHandler(&stubAuthService{logoutFn: func(_ context.Context, id domain.SessionIdentity) error {
		got = id
		return nil
	}})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
	c.Set(middleware.IdentityKey, identity)
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got != identity {
		t.Fatalf("logout got %+v", got)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())
	assertKind(t, h.Logout(c), domain.KindAuthentication)
}
