package http

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/logger"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/config"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/api/http/middleware"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/api/http/router"
	svcfile "github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/file"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/observability"
)

// bodyLimit leaves room for the multipart envelope around the largest upload.
const bodyLimit = svcfile.MaxUploadBytes + 1<<20

// Module provides the HTTP Server to the fx graph.
var Module = fx.Module("http", fx.Provide(NewServer))

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Cfg       *config.Config
	Redis     *redis.Client
	Router    *router.Router
	OTel      *observability.Provider `optional:"true"`
}

func NewServer(p Params) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   p.Cfg.Clinic.Name,
		BodyLimit: bodyLimit,
	})

	if p.OTel != nil && p.Cfg.Observability.Tracing.Enabled {
		app.Use(observability.FiberMiddleware(
			healthcheck.LivenessEndpoint,
			healthcheck.ReadinessEndpoint,
			healthcheck.StartupEndpoint,
			metricsPath(p.Cfg),
		))
	}

	configureGlobalMiddleware(app, p.Cfg, p.Redis)

	p.Router.Register(app)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			addr := fmt.Sprintf(":%d", p.Cfg.Server.Port)
			go func() {
				if err := app.Listen(addr); err != nil {
					slog.Error("HTTP server error", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})

	return app
}

func configureGlobalMiddleware(app *fiber.App, cfg *config.Config, rdb *redis.Client) {
	app.Use(middleware.RequestID())
	app.Use(recoverer.New())

	if cfg.Server.CORS.Enabled {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.CORS.AllowOrigins,
			AllowMethods:     cfg.Server.CORS.AllowMethods,
			AllowHeaders:     cfg.Server.CORS.AllowHeaders,
			ExposeHeaders:    cfg.Server.CORS.ExposeHeaders,
			AllowCredentials: cfg.Server.CORS.AllowCredentials,
			MaxAge:           cfg.Server.CORS.MaxAgeSeconds,
		}))
	}

	if cfg.IsProduction() {
		app.Use(helmet.New(helmet.Config{
			XSSProtection:             cfg.Server.Headers.XSSProtection,
			ContentTypeNosniff:        cfg.Server.Headers.ContentTypeNosniff,
			XFrameOptions:             cfg.Server.Headers.XFrameOptions,
			ReferrerPolicy:            cfg.Server.Headers.ReferrerPolicy,
			CrossOriginEmbedderPolicy: cfg.Server.Headers.CrossOriginEmbedderPolicy,
			CrossOriginOpenerPolicy:   cfg.Server.Headers.CrossOriginOpenerPolicy,
			CrossOriginResourcePolicy: cfg.Server.Headers.CrossOriginResourcePolicy,
			OriginAgentCluster:        cfg.Server.Headers.OriginAgentCluster,
			XDNSPrefetchControl:       cfg.Server.Headers.XDNSPrefetchControl,
			XDownloadOptions:          cfg.Server.Headers.XDownloadOptions,
			XPermittedCrossDomain:     cfg.Server.Headers.XPermittedCrossDomain,
		}))
		app.Use(middleware.NewLimiterWithRedis(rdb, cfg.Server.RateLimit.RequestsPerMinute, time.Minute))
	}

	app.Use(logger.New(logger.Config{
		Format: "${ip} - [${time}] [req_id=${respHeader:X-Request-Id}] ${method} ${url} ${status}\n",
	}))
}

func metricsPath(cfg *config.Config) string {
	if cfg.Observability.Metrics.Path != "" {
		return cfg.Observability.Metrics.Path
	}
	return "/metrics"
}
