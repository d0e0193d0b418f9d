package http

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/config"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/api/http/router"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/app"
)

// Start builds the application graph and blocks until a shutdown signal.
func Start(cfg *config.Config, timeout time.Duration) {
	fx.New(
		fx.Supply(cfg),
		app.InfraModule,
		app.ServiceModule,
		app.WorkerModule,
		router.Module,
		Module,

		// Requesting *fiber.App forces NewServer and its OnStart hook.
		fx.Invoke(func(*fiber.App) {}),

		fx.StopTimeout(timeout),
		fx.WithLogger(func() fxevent.Logger { return fxevent.NopLogger }),
	).Run()
}
