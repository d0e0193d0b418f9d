package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/config"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/store"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/authorize"
	calpkg "github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/calendar"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/database"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/email"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/events"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/observability"
	pasetotoken "github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/paseto"
	redispkg "github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/redis"
	s3pkg "github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/s3"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/sms"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/util/password"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/util/phone"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideDatabase),
	fx.Provide(ProvideStore),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideAuthorization),
	fx.Provide(ProvideEmailClient),
	fx.Provide(ProvideSMSClient),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideSearchMetrics),
	fx.Provide(ProvideS3Client),
	fx.Provide(ProvideNatsClient),
	fx.Provide(ProvideEventBus),
	fx.Provide(ProvideCalendarClient),
	fx.Provide(ProvideLocation),
	fx.Provide(ProvidePhoneNormalizer),
	fx.Provide(ProvidePasswordHasher),
	fx.Provide(ProvidePasetoManager),
)

func ProvideDatabase(lc fx.Lifecycle, cfg *config.Config) (*database.DB, error) {
	db, err := database.NewDriver(cfg.Database)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing main database connection")
			return db.Close()
		},
	})
	return db, nil
}

// ProvideStore runs the schema migration on start when auto_migrate is set.
func ProvideStore(lc fx.Lifecycle, cfg *config.Config, db *database.DB) *store.Client {
	client := store.NewClient(db.Driver())
	if cfg.Database.Migrations.AutoMigrate {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				slog.Info("running schema migration")
				return client.Migrate(ctx)
			},
		})
	}
	return client
}

func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	rdb, err := redispkg.NewRedisFromCentral(cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideAuthorization(lc fx.Lifecycle, cfg *config.Config) (authorize.IAuthorization, error) {
	authCfg := authorize.FromCentralConfig(cfg.Authorization)
	dsn := database.NewDSN(cfg.CasbinDatabase)
	enforcer, cleanup, err := authorize.NewEnforcer(authCfg, dsn)
	if err != nil {
		return nil, err
	}
	auth, err := authorize.NewAuthorization(enforcer)
	if err != nil {
		cleanup(context.Background())
		return nil, err
	}
	if authCfg.EnableAudit {
		auth = authorize.NewAuditedAuthorization(auth, slog.Default())
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("cleaning up Casbin enforcer")
			cleanup(ctx)
			return nil
		},
	})
	return auth, nil
}

func ProvideEmailClient(cfg *config.Config) (*email.Client, error) {
	return email.NewFromCentral(cfg.Email, cfg.Clinic)
}

func ProvideSMSClient(cfg *config.Config) (*sms.Client, error) {
	return sms.NewFromConfig(cfg.SMS)
}

func ProvideS3Client(cfg *config.Config) (*s3pkg.Client, error) {
	return s3pkg.New(cfg.S3)
}

// ProvideNatsClient returns nil when no NATS URL is configured; events are
// then dropped and no workers start.
func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	if cfg.Nats.URL == "" {
		slog.Warn("nats url not configured, domain events disabled")
		return nil, nil
	}
	nc, err := nats.Connect(cfg.Nats.URL, nats.Name(cfg.Clinic.Name))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("draining NATS connection")
			return nc.Drain()
		},
	})
	return nc, nil
}

func ProvideEventBus(nc *nats.Conn) *events.Bus {
	if nc == nil {
		return events.NewBus(nil)
	}
	return events.NewBus(nc)
}

// ProvideCalendarClient returns nil when the calendar is disabled.
func ProvideCalendarClient(cfg *config.Config, loc *time.Location) (*calpkg.Client, error) {
	if !cfg.Calendar.Enabled {
		slog.Info("calendar provider disabled")
		return nil, nil
	}
	return calpkg.New(calpkg.FromCentralConfig(cfg.Calendar), calpkg.WithLocation(loc))
}

func ProvideLocation(cfg *config.Config) *time.Location {
	return cfg.Location()
}

func ProvidePhoneNormalizer(cfg *config.Config) *phone.Normalizer {
	return phone.NewNormalizer(cfg.Clinic.PhoneRegion)
}

func ProvidePasswordHasher(cfg *config.Config) *password.Hasher {
	return password.NewHasher(password.FromCentralConfig(cfg.Password))
}

func ProvidePasetoManager(cfg *config.Config) (*pasetotoken.Manager, error) {
	return pasetotoken.NewPasetoManager(cfg)
}

// ProvideSearchMetrics depends on the provider so the instruments are
// created after the global meter provider is installed.
func ProvideSearchMetrics(_ *observability.Provider) *observability.SearchMetrics {
	return observability.NewSearchMetrics()
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.FromCentralConfig(cfg))
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}
