package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"github.com/grandnode/mobile-api/internal/api/handler"
	"github.com/grandnode/mobile-api/internal/api/middleware"
	"github.com/grandnode/mobile-api/internal/core/ports"
	"github.com/grandnode/mobile-api/internal/infrastructure/http/handlers"
)

// BasePath prefixes every mobile API route.
const BasePath = "/mobile-api"

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Enabled            bool
	LoginRatePerSecond float64

	Auth     ports.AuthService
	Resolver ports.IdentityResolver
	Checkout ports.CheckoutService
	Cart     ports.CartService
	Health   *handlers.HealthDependenciesHandler

	// Metrics defaults to the global Prometheus registry.
	Metrics *prometheus.Registry
	Log     zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if deps.Metrics != nil {
		registerer, gatherer = deps.Metrics, deps.Metrics
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "mobile_api",
		Registerer: registerer,
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	checkoutHandler := handler.NewCheckoutHandler(deps.Checkout)
	cartHandler := handler.NewCartHandler(deps.Cart)
	requireAuth := middleware.Auth(deps.Resolver)
	limiter := credentialRateLimiter(deps.LoginRatePerSecond)

	api := e.Group(BasePath, middleware.Enabled(deps.Enabled))

	// --- Auth routes ---
	auth := api.Group("/auth")
	auth.POST("/guest", authHandler.CreateGuest)
	auth.POST("/login", authHandler.Login, limiter)
	auth.POST("/register", authHandler.Register, limiter)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout, requireAuth)

	// --- Checkout routes (guest or registered) ---
	checkout := api.Group("/checkout", requireAuth)
	checkout.GET("/start", checkoutHandler.Start)
	checkout.GET("", checkoutHandler.Get)
	checkout.POST("/billing-address", checkoutHandler.SetBillingAddress)
	checkout.POST("/shipping-address", checkoutHandler.SetShippingAddress)
	checkout.GET("/shipping-methods", checkoutHandler.ShippingMethods)
	checkout.POST("/shipping-method", checkoutHandler.SelectShippingMethod)
	checkout.GET("/payment-methods", checkoutHandler.PaymentMethods)
	checkout.POST("/payment-method", checkoutHandler.SelectPaymentMethod)
	checkout.POST("/place-order", checkoutHandler.PlaceOrder)

	// --- Cart routes (guest or registered) ---
	cart := api.Group("/cart", requireAuth)
	cart.GET("", cartHandler.GetCart)
	cart.POST("/add", cartHandler.AddItem)
	cart.PUT("/items/:id", cartHandler.UpdateItem)
	cart.DELETE("/items/:id", cartHandler.RemoveItem)
	cart.DELETE("/clear", cartHandler.Clear)
	cart.GET("/totals", cartHandler.Totals)

	// --- Operational routes (no auth required) ---
	e.GET("/health", handlers.NewHealthHandler(handler.APIVersion).Liveness)
	if deps.Health != nil {
		e.GET("/health/ready", deps.Health.Readiness)
	}
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// credentialRateLimiter throttles credential endpoints per client IP.
func credentialRateLimiter(perSecond float64) echo.MiddlewareFunc {
	if perSecond <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     max(1, int(perSecond*2)),
		ExpiresIn: 10 * time.Minute,
	})
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
		},
	})
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
