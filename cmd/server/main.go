package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vcproof/internal/platform/config"
	"vcproof/internal/platform/health"
	"vcproof/internal/platform/logger"
	"vcproof/internal/platform/metrics"
	"vcproof/internal/proof/handler"
	proofmetrics "vcproof/internal/proof/metrics"
	"vcproof/internal/proof/service"
	"vcproof/internal/proof/tracer"
	httptransport "vcproof/internal/transport/http"
	"vcproof/pkg/platform/middleware/request"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Verification logic lives in internal packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	log.Info("initializing vcproof",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"default_issuer_key", cfg.IssuerPublicKey != "",
		"match_field", cfg.MatchField,
		"batch_concurrency", cfg.BatchConcurrency,
	)

	reg := metrics.NewRegistry(health.Version, cfg.Environment)

	svc := service.New(
		service.WithLogger(log),
		service.WithMetrics(proofmetrics.New(reg)),
		service.WithTracer(tracer.NewOTel()),
		service.WithDefaultIssuerKey(cfg.IssuerPublicKey),
		service.WithMatchField(cfg.MatchField),
		service.WithBatchConcurrency(cfg.BatchConcurrency),
	)

	probes := health.New(cfg.Environment)
	probes.RegisterCheck("verifier", svc.SelfCheck)

	router := httptransport.NewRouter(handler.New(svc, log), probes, httptransport.Deps{
		Logger:         log,
		HTTPMetrics:    request.NewMetrics(reg),
		MetricsHandler: metrics.Handler(reg),
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.RequestTimeout + 5*time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
