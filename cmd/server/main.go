package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"basegraph.app/threadrelay/common/id"
	"basegraph.app/threadrelay/common/logger"
	"basegraph.app/threadrelay/common/otel"
	"basegraph.app/threadrelay/core/config"
	"basegraph.app/threadrelay/internal/http/middleware"
	httprouter "basegraph.app/threadrelay/internal/http/router"
	"basegraph.app/threadrelay/internal/service"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg := config.Load()

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "threadrelay starting",
		"env", cfg.Env,
		"port", cfg.Port,
		"version", cfg.Version,
		"debug", cfg.DebugEnabled(),
	)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	missing := cfg.MissingCredentials()
	if len(missing) > 0 {
		slog.WarnContext(ctx, "relay credentials missing, relay endpoints will answer 500", "missing", missing)
	}
	if cfg.GitLab.Enabled() {
		slog.InfoContext(ctx, "gitlab issues enabled", "base_url", cfg.GitLab.BaseURL)
	}

	services, err := service.NewServices(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create services", "error", err)
		os.Exit(1)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Relays wait on Slack and the tracker before answering.
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		MissingCredentials: cfg.MissingCredentials(),
	})

	return router
}

const banner = `
 _   _                        _          _
| |_| |__  _ __ ___  __ _  __| |_ __ ___| | __ _ _   _
| __| '_ \| '__/ _ \/ _' |/ _' | '__/ _ \ |/ _' | | | |
| |_| | | | | |  __/ (_| | (_| | | |  __/ | (_| | |_| |
 \__|_| |_|_|  \___|\__,_|\__,_|_|  \___|_|\__,_|\__, |
                                                 |___/
`
