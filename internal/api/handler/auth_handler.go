package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/grandnode/mobile-api/internal/api/metrics"
	"github.com/grandnode/mobile-api/internal/api/middleware"
	"github.com/grandnode/mobile-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// CreateGuest starts an anonymous session.
//
// @Summary      Create guest session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  Envelope{data=tokenResponse}
// @Failure      500  {object}  Envelope
// @Router       /mobile-api/auth/guest [post]
func (h *AuthHandler) CreateGuest(c echo.Context) error {
	pair, err := h.authService.CreateGuest(c.Request().Context())
	metrics.AuthRequestsTotal.WithLabelValues("guest", outcome(err)).Inc()
	if err != nil {
		return err
	}
	return success(c, toTokenResponse(pair), "Guest session created successfully")
}

// Login authenticates a registered customer.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  Envelope{data=tokenResponse}
// @Failure      400   {object}  Envelope
// @Failure      401   {object}  Envelope
// @Failure      422   {object}  Envelope
// @Router       /mobile-api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req, "Invalid login data"); err != nil {
		metrics.AuthRequestsTotal.WithLabelValues("login", CodeValidation).Inc()
		return err
	}

	pair, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	metrics.AuthRequestsTotal.WithLabelValues("login", outcome(err)).Inc()
	if err != nil {
		return err
	}
	return success(c, toTokenResponse(pair), "Login successful")
}

// Register creates an account, upgrading the caller's guest session in place
// when a guest bearer token is presented.
//
// @Summary      Register
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      200   {object}  Envelope{data=tokenResponse}
// @Failure      409   {object}  Envelope
// @Failure      422   {object}  Envelope
// @Router       /mobile-api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req, "Invalid registration data"); err != nil {
		metrics.AuthRequestsTotal.WithLabelValues("register", CodeValidation).Inc()
		return err
	}

	bearer, _ := middleware.BearerToken(c.Request())
	pair, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		BearerToken:     bearer,
	})
	metrics.AuthRequestsTotal.WithLabelValues("register", outcome(err)).Inc()
	if err != nil {
		return err
	}
	return success(c, toTokenResponse(pair), "Registration successful")
}

// Refresh exchanges an access token (expired or not) and its refresh token
// for a new pair.
//
// @Summary      Refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Current token pair"
// @Success      200   {object}  Envelope{data=tokenResponse}
// @Failure      401   {object}  Envelope
// @Failure      422   {object}  Envelope
// @Router       /mobile-api/auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := bind(c, &req, "Invalid refresh token data"); err != nil {
		metrics.AuthRequestsTotal.WithLabelValues("refresh", CodeValidation).Inc()
		return err
	}

	pair, err := h.authService.Refresh(c.Request().Context(), req.AccessToken, req.RefreshToken)
	metrics.AuthRequestsTotal.WithLabelValues("refresh", outcome(err)).Inc()
	if err != nil {
		return err
	}
	return success(c, toTokenResponse(pair), "Token refreshed successfully")
}

// Logout revokes the caller's refresh token.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope
// @Failure      401  {object}  Envelope
// @Router       /mobile-api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	err = h.authService.Logout(c.Request().Context(), identity)
	metrics.AuthRequestsTotal.WithLabelValues("logout", outcome(err)).Inc()
	if err != nil {
		return err
	}
	return success(c, nil, "Logout successful")
}
