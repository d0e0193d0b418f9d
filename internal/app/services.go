package app

import (
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/config"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/store"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/auth"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/calendar"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/clinical"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/dashboard"
	svcfile "github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/file"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/notification"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/patient"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/promotion"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/search"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/user"
	calpkg "github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/calendar"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/events"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/observability"
	pasetotoken "github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/paseto"
	s3pkg "github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/s3"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/util/password"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/util/phone"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideUserService,
		ProvideAuthService,
		ProvidePatientService,
		ProvideFileService,
		ProvideClinicalService,
		ProvidePromotionService,
		ProvideCalendarService,
		ProvideNotificationService,
		ProvideSearchService,
		ProvideDashboardService,
	),
)

func ProvideUserService(db *store.Client, hasher *password.Hasher, authSvc auth.Service) user.Service {
	return user.New(db.User, hasher, authSvc)
}

func ProvideAuthService(
	db *store.Client,
	rdb *redis.Client,
	paseto *pasetotoken.Manager,
	hasher *password.Hasher,
	cfg *config.Config,
) auth.Service {
	return auth.New(auth.Deps{
		Users:            db.User,
		Redis:            rdb,
		Tokens:           paseto,
		Hasher:           hasher,
		MaxLoginAttempts: cfg.Authentication.MaxLoginAttempts,
		Lockout:          time.Duration(cfg.Authentication.LockoutMinutes) * time.Minute,
	})
}

func ProvidePatientService(db *store.Client, phones *phone.Normalizer, bus *events.Bus, loc *time.Location) patient.Service {
	return patient.New(patient.Deps{
		Patients:            db.Patient,
		CompletedTreatments: db.CompletedTreatment,
		Odontograms:         db.Odontogram,
		Consents:            db.Consent,
		Phones:              phones,
		Bus:                 bus,
		Location:            loc,
	})
}

func ProvideFileService(s3 *s3pkg.Client, patients patient.Service) svcfile.Service {
	return svcfile.New(s3, patients)
}

func ProvideClinicalService(db *store.Client, s3 *s3pkg.Client, bus *events.Bus) clinical.Service {
	return clinical.New(clinical.Deps{
		Patients:            db.Patient,
		Treatments:          db.Treatment,
		CompletedTreatments: db.CompletedTreatment,
		Odontograms:         db.Odontogram,
		Consents:            db.Consent,
		Objects:             s3,
		Bus:                 bus,
	})
}

func ProvidePromotionService(db *store.Client, loc *time.Location) promotion.Service {
	return promotion.New(db.Promotion, loc)
}

func ProvideCalendarService(
	client *calpkg.Client,
	rdb *redis.Client,
	bus *events.Bus,
	phones *phone.Normalizer,
	loc *time.Location,
	cfg *config.Config,
) calendar.Service {
	d := calendar.Deps{
		Cache:    rdb,
		Bus:      bus,
		Phones:   phones,
		Location: loc,
		CacheTTL: time.Duration(cfg.Calendar.CacheTTLSec) * time.Second,
	}
	// A nil *Client must stay a nil interface.
	if client != nil {
		d.Provider = client
	}
	return calendar.New(d)
}

func ProvideNotificationService(db *store.Client) notification.Service {
	return notification.New(db.Notification, db.User)
}

func ProvideSearchService(
	db *store.Client,
	promotions promotion.Service,
	cal calendar.Service,
	metrics *observability.SearchMetrics,
	loc *time.Location,
) search.Service {
	src := search.Sources{
		Patients:            db.Patient,
		Treatments:          db.Treatment,
		CompletedTreatments: db.CompletedTreatment,
		Odontograms:         db.Odontogram,
		Consents:            db.Consent,
		Promotions:          promotions,
	}
	if cal.Enabled() {
		src.Events = cal
	}
	return search.New(src, search.DefaultConfig(), metrics, loc)
}

func ProvideDashboardService(
	db *store.Client,
	promotions promotion.Service,
	cal calendar.Service,
	loc *time.Location,
) dashboard.Service {
	d := dashboard.Deps{
		Patients:   db.Patient,
		Consents:   db.Consent,
		Promotions: promotions,
		Location:   loc,
	}
	if cal.Enabled() {
		d.Events = cal
	}
	return dashboard.New(d)
}
