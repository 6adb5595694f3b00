package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fjod/go_cart/storefront/internal/analytics"
	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/events"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/lock"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/medusa"
	"github.com/fjod/go_cart/storefront/internal/region"
)

const serviceName = "storefront"

func main() {
	cfg := config.Load()

	log := logger.New(logger.Options{
		Service: serviceName,
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})
	slog.SetDefault(log)

	ctx := context.Background()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("redis connection failed", "addr", cfg.RedisAddr, "error", err)
		os.Exit(1)
	}
	log.Info("redis ping succeeded", "addr", cfg.RedisAddr)

	backend, err := medusa.NewClient(medusa.Options{
		BaseURL:        cfg.BackendURL,
		PublishableKey: cfg.PublishableKey,
		Timeout:        cfg.BackendTimeout,
	})
	if err != nil {
		log.Error("failed to create backend client", "error", err)
		os.Exit(1)
	}

	store := cache.NewRedisStore(redisClient)
	regions := region.NewResolver(backend, store, log)

	var guard cart.CreationGuard
	switch cfg.LockBackend {
	case config.LockBackendCookie:
		log.Warn("cart creation lock uses cookies; concurrent requests may create duplicate carts")
		guard = lock.NewCookieGuard()
	default:
		guard = lock.NewRedisGuard(redisClient, cfg.CartLockTTL)
	}

	var tracker analytics.Tracker = analytics.NopTracker{}
	if len(cfg.KafkaBrokers) > 0 {
		kt := analytics.NewKafkaTracker(serviceName, cfg.AnalyticsTopic, cfg.KafkaBrokers...)
		defer func() {
			if err := kt.Close(); err != nil {
				log.Error("failed to close analytics writer", "error", err)
			}
		}()
		tracker = kt
		log.Info("analytics enabled", "topic", cfg.AnalyticsTopic, "brokers", cfg.KafkaBrokers)
	}

	cartService := cart.NewService(backend, regions, backend, store, guard, log,
		cart.WithRetryAttempts(cfg.CartRetryAttempts),
		cart.WithContentionWait(cfg.CartContentionWait),
		cart.WithTracker(tracker),
	)
	eventService := events.NewService(backend, store, log)

	router := h.NewRouter(h.RouterConfig{
		AllowedOrigins: cfg.CORSAllowOrigins,
		RequestTimeout: cfg.RequestTimeout,
		MaxBodySize:    cfg.MaxRequestBodySize,
		SecureCookies:  cfg.Production(),
	}, h.Handlers{
		Cart:     h.NewCartHandler(cartService, log, cfg.RequestTimeout).WithDefaultCountry(cfg.DefaultCountryCode),
		Customer: h.NewCustomerHandler(backend, backend, log, cfg.RequestTimeout),
		Events:   h.NewEventsHandler(eventService, cfg.RequestTimeout),
		Health: h.NewHealthHandler(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}),
	}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("storefront starting", "port", cfg.HTTPPort, "lock_backend", cfg.LockBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
