package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"

	"docrag/docs"
	"docrag/internal/bootstrap"
	"docrag/internal/config"
	handlers "docrag/internal/http/handler"
	"docrag/internal/http/middleware"
	"docrag/internal/logging"
	"docrag/internal/otel"
)

// @title Policy-filtered retrieval API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := logging.LoadLocation(cfg.Timezone)
	logger := logging.New(os.Stdout, cfg.LogLevel, loc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		logger.Error("tracing_init_failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	promMW, err := middleware.NewPrometheusMiddleware(app.Registry, "/health", "/healthz")
	if err != nil {
		logger.Error("startup_failed", "error", err)
		os.Exit(1)
	}

	server := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
	})

	// RequestID first so every later middleware and error response can use it
	server.Use(middleware.RequestID())
	server.Use(otelfiber.Middleware())
	server.Use(middleware.Logger(logger))
	server.Use(promMW.Handler())

	handlers.RegisterRoutes(server, app.Services, handlers.Options{
		DB:            app.DB,
		Authenticator: app.Tokens,
		AuthLimiter:   middleware.NewRateLimiter(cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst),
		Gatherer:      app.Registry,
	})

	// Swagger UI with dynamic host and scheme
	server.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		logger.Info("server_shutdown", "reason", "signal")
		if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("server_shutdown_failed", "error", err)
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("server_listening", "addr", addr, "app_host", cfg.AppHost)
	if err := server.Listen(addr); err != nil {
		logger.Error("server_failed", "error", err)
	}
}
