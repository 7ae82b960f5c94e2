package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dojoledger/internal/academy/cache"
	"dojoledger/internal/academy/handler"
	"dojoledger/internal/academy/metrics"
	"dojoledger/internal/academy/service"
	jwttoken "dojoledger/internal/jwt_token"
	"dojoledger/internal/platform/config"
	"dojoledger/internal/platform/httpserver"
	"dojoledger/internal/platform/logger"
	"dojoledger/internal/platform/middleware"
	"dojoledger/internal/platform/redis"
	"dojoledger/internal/sui"
)

// main wires dependencies and owns the server lifecycle. Business logic lives
// in the internal packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// No usable signing identity means no ledger writes at all; refuse to
	// start rather than limp along read-only.
	cred, err := sui.LoadKeystore(cfg.Ledger.KeystorePath)
	if err != nil {
		log.Error("failed to load signing credential", "error", err)
		os.Exit(1)
	}
	log.Info("signing credential loaded", "address", cred.Address())

	ledger := sui.NewClient(cfg.Ledger, log)
	builder := sui.NewBuilder(cfg.Ledger.PackageID, cfg.Ledger.AdminCapID, cfg.Ledger.ClockID)

	svcOpts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(metrics.New()),
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		svcOpts = append(svcOpts, service.WithCache(cache.New(redisClient, cfg.Redis.CacheTTL)))
		log.Info("snapshot cache enabled", "ttl", cfg.Redis.CacheTTL)
	}

	svc := service.New(ledger, builder, cred, svcOpts...)
	jwtService := jwttoken.NewJWTService(cfg.AdminJWTSigningKey, "dojoledger", "dojoledger-admin")

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestTime)
	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	router.Handle("/metrics", promhttp.Handler())
	handler.New(svc, jwtService, log).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("server listening", "addr", cfg.Addr, "rpc_url", cfg.Ledger.RPCURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
