package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/config"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/api/http/handler"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/api/http/middleware"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/auth"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/calendar"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/clinical"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/dashboard"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/file"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/notification"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/patient"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/promotion"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/search"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/user"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/authorize"
	pasetotoken "github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/paseto"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg             *config.Config
	Redis           *redis.Client
	Auth            authorize.IAuthorization
	AuthSvc         auth.Service
	UserSvc         user.Service
	PatientSvc      patient.Service
	FileSvc         file.Service
	ClinicalSvc     clinical.Service
	PromotionSvc    promotion.Service
	CalendarSvc     calendar.Service
	NotificationSvc notification.Service
	SearchSvc       search.Service
	DashboardSvc    dashboard.Service
	PasetoMgr       *pasetotoken.Manager
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

type permFunc func(authorize.Resource, authorize.Action) fiber.Handler

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Middlewares
	authRequired := middleware.AuthRequired(r.p.PasetoMgr, r.p.Redis)
	requirePerm := func(res authorize.Resource, act authorize.Action) fiber.Handler {
		return middleware.RequirePermission(r.p.Auth, res, act)
	}

	// 3. Handlers
	authH := handler.NewAuthHandler(r.p.AuthSvc)
	userH := handler.NewUserHandler(r.p.UserSvc)
	patientH := handler.NewPatientHandler(r.p.PatientSvc)
	fileH := handler.NewFileHandler(r.p.FileSvc)
	clinicalH := handler.NewClinicalHandler(r.p.ClinicalSvc)
	promotionH := handler.NewPromotionHandler(r.p.PromotionSvc)
	calendarH := handler.NewCalendarHandler(r.p.CalendarSvc)
	notificationH := handler.NewNotificationHandler(r.p.NotificationSvc)
	accessH := handler.NewAccessHandler(r.p.SearchSvc, r.p.DashboardSvc)

	api := app.Group("/api/v1")

	// 4. Delegate to sub-files
	r.registerAuthRoutes(api, authH, authRequired)
	r.registerUserRoutes(api, userH, authRequired, requirePerm)
	r.registerAccessRoutes(api, accessH, authRequired, requirePerm)
	r.registerPatientRoutes(api, patientH, fileH, clinicalH, authRequired, requirePerm)
	r.registerClinicalRoutes(api, clinicalH, authRequired, requirePerm)
	r.registerPromotionRoutes(api, promotionH, authRequired, requirePerm)
	r.registerCalendarRoutes(api, calendarH, authRequired, requirePerm)
	r.registerNotificationRoutes(api, notificationH, authRequired, requirePerm)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool { return authorize.IsPolicyHealthy() },
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
