// @title        Mobile Storefront API
// @version      3.0
// @description  Guest and registered sessions, cart and checkout for mobile clients.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	_ "github.com/grandnode/mobile-api/docs"
	"github.com/grandnode/mobile-api/internal/api"
	"github.com/grandnode/mobile-api/internal/api/handler"
	"github.com/grandnode/mobile-api/internal/core/service"
	mongodb "github.com/grandnode/mobile-api/internal/infrastructure/db/mongo"
	redisdb "github.com/grandnode/mobile-api/internal/infrastructure/db/redis"
	"github.com/grandnode/mobile-api/internal/infrastructure/http/handlers"
	"github.com/grandnode/mobile-api/internal/infrastructure/provider"
	"github.com/grandnode/mobile-api/internal/infrastructure/queue"
	"github.com/grandnode/mobile-api/internal/pkg/config"
	"github.com/grandnode/mobile-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Get()
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "mobile-api",
		Version: handler.APIVersion,
	})

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer rdb.Close()

	customers := mongodb.NewCustomerRepository(db)
	carts := mongodb.NewCartRepository(db)
	orders := mongodb.NewOrderRepository(db)
	catalog := mongodb.NewProductCatalog(db)
	if err := mongodb.EnsureIndexes(ctx, customers, carts, orders); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure MongoDB indexes")
	}

	// --- Registration events ---
	dispatcher := queue.NewDispatcher(cfg.Events.Workers, redisdb.NewDedupChecker(rdb), log,
		redisdb.NewPublisher(rdb),
		queue.NewLogListener(log),
	)
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher.Start(workerCtx)

	// --- Services ---
	codec := service.NewTokenCodec(service.TokenCodecConfig{
		Secret:           cfg.Auth.Secret,
		Issuer:           cfg.Auth.Issuer,
		Audience:         cfg.Auth.Audience,
		ValidateIssuer:   cfg.Auth.ValidateIssuer,
		ValidateAudience: cfg.Auth.ValidateAudience,
	})
	refresh := service.NewRefreshTokenStore(customers, cfg.Auth.RefreshTTL())
	authService := service.NewAuthService(
		customers,
		service.NewCustomerManager(customers, log),
		codec,
		refresh,
		dispatcher,
		cfg.Auth.AccessTTL(),
		log,
	)

	discounts := provider.NoDiscount{}
	checkoutService := service.NewCheckoutService(service.CheckoutDeps{
		Carts:     carts,
		Sessions:  redisdb.NewCheckoutStore(rdb, cfg.Checkout.SessionTTL),
		Locker:    redisdb.NewLocker(rdb, cfg.Checkout.LockTimeout),
		Orders:    orders,
		Shipping:  provider.NewStaticShipping(),
		Payments:  provider.NewStaticPayments(),
		Tax:       &provider.FlatTax{Rate: decimal.RequireFromString(cfg.Checkout.TaxRate)},
		Discounts: discounts,
	}, service.CheckoutConfig{Currency: cfg.Checkout.Currency}, log)
	cartService := service.NewCartService(carts, catalog, discounts, cfg.Checkout.Currency, log)

	e := api.NewRouter(api.Dependencies{
		Enabled:            cfg.Auth.Enabled,
		LoginRatePerSecond: cfg.Auth.LoginRatePerSecond,
		Auth:               authService,
		Resolver:           service.NewIdentityResolver(codec),
		Checkout:           checkoutService,
		Cart:               cartService,
		Health: handlers.NewHealthDependenciesHandler(map[string]handlers.Check{
			"mongodb": handlers.MongoCheck(db),
			"redis":   handlers.RedisCheck(rdb),
		}),
		Log: log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Bool("enabled", cfg.Auth.Enabled).Msg("mobile api listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	stopWorkers()
	dispatcher.Wait()
}
