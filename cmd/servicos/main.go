package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"servicos/internal/backend"
	"servicos/internal/cli"
	"servicos/internal/core"
	"servicos/internal/dashboard"
	apphttp "servicos/internal/http"
	"servicos/internal/log"
	"servicos/internal/telemetry"
)

const serviceName = "servicos"

func main() {
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel)

	shutdownTracing := telemetry.Setup(context.Background(), serviceName, cfg.OTLPEndpoint, logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	loc := cfg.Location()
	deps := dashboard.NewDeps(result.Store, result.Events, core.DefaultCatalog(), cfg.DuplicateDebounce, loc, logger)

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:              ":" + cfg.Port,
		Deps:              deps,
		RequestsPerMinute: cfg.RequestsPerMinute,
		TrustedProxies:    cfg.TrustedProxies,
		ServiceName:       serviceName,
		Logger:            logger,
	})
	if err != nil {
		logger.Error("Failed to build HTTP server", log.FieldError, err)
		_ = result.Close()
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := result.Close(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("Tracing shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting servicos server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"events", result.Events != nil,
		"timezone", loc.String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
