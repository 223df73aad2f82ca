package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/bcrypt"

	"github.com/wolfman30/mindcare/internal/accounts"
	"github.com/wolfman30/mindcare/internal/api/router"
	"github.com/wolfman30/mindcare/internal/app/bootstrap"
	appconfig "github.com/wolfman30/mindcare/internal/config"
	"github.com/wolfman30/mindcare/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/mindcare/internal/http/middleware"
	"github.com/wolfman30/mindcare/internal/kv"
	"github.com/wolfman30/mindcare/internal/observability/metrics"
	"github.com/wolfman30/mindcare/internal/payments"
	"github.com/wolfman30/mindcare/internal/session"
	"github.com/wolfman30/mindcare/pkg/logging"
)

func main() {
	// .env is optional outside local development
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting mindcare API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"store_backend", cfg.StoreBackend,
	)

	ctx := context.Background()
	rt, err := bootstrap.BuildRuntime(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build runtime", "error", err)
		os.Exit(1)
	}
	defer rt.Close()

	metricsHandler, storeMetrics := setupMetrics()
	velocity := bootstrap.BuildVelocityChecker(rt.Redis, cfg, logger)
	authLimiter := httpmiddleware.NewRateLimiter(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst)
	defer authLimiter.Close()

	handler := newHandler(cfg, rt.Store, storeMetrics, velocity, logger)
	r := router.New(&router.Config{
		Logger:             logger,
		Handler:            handler,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AuthLimiter:        authLimiter,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setupMetrics builds a private registry so /metrics only shows this process.
func setupMetrics() (http.Handler, *metrics.StoreMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storeMetrics := metrics.NewStoreMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), storeMetrics
}

func newHandler(cfg *appconfig.Config, backend kv.Store, storeMetrics *metrics.StoreMetrics, velocity *payments.VelocityChecker, logger *logging.Logger) *handlers.Handler {
	loc := cfg.Location()
	store := session.New(backend,
		session.WithClock(func() time.Time { return time.Now().In(loc) }),
		session.WithAppointmentScope(session.ParseAppointmentScope(cfg.AppointmentScope)),
		session.WithMetrics(storeMetrics),
		session.WithLogger(logger),
	)
	return handlers.NewHandler(
		store,
		accounts.NewService(store, bcrypt.DefaultCost, logger),
		payments.NewCheckout(store, velocity, cfg.BookingWindowDays, logger),
		cfg.BookingWindowDays,
		logger,
	)
}
