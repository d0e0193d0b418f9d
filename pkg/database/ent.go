package database

import (
	"context"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/config"
)

// NewDriver opens the application database and returns an ent SQL driver
// over it. With query logging enabled, statements slower than the
// configured threshold are logged at warn.
func NewDriver(cfg config.DatabaseConfig) (*DB, error) {
	return NewDriverFromConfig(FromCentralConfig(cfg))
}

func NewDriverFromConfig(cfg Config) (*DB, error) {
	conn, err := openSQLDB(cfg)
	if err != nil {
		return nil, err
	}

	var drv dialect.Driver = entsql.OpenDB(dialect.Postgres, conn)
	if cfg.EnableLogging {
		drv = &slowQueryDriver{Driver: drv, threshold: cfg.SlowQueryThreshold()}
	}

	return &DB{conn: conn, cfg: cfg, drv: drv}, nil
}

type slowQueryDriver struct {
	dialect.Driver
	threshold time.Duration
}

func (d *slowQueryDriver) Exec(ctx context.Context, query string, args, v any) error {
	defer d.observe(ctx, query, time.Now())
	return d.Driver.Exec(ctx, query, args, v)
}

func (d *slowQueryDriver) Query(ctx context.Context, query string, args, v any) error {
	defer d.observe(ctx, query, time.Now())
	return d.Driver.Query(ctx, query, args, v)
}

func (d *slowQueryDriver) observe(ctx context.Context, query string, start time.Time) {
	elapsed := time.Since(start)
	if elapsed < d.threshold {
		slog.DebugContext(ctx, "sql", "query", query, "duration_ms", elapsed.Milliseconds())
		return
	}
	slog.WarnContext(ctx, "slow query", "query", query, "duration_ms", elapsed.Milliseconds(),
		"threshold_ms", d.threshold.Milliseconds())
}
