// Package store persists clinic records in Postgres. Queries are built with
// ent's dialect-aware SQL builder and tables are managed by ent's migrator.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
)

var (
	ErrNotFound = errors.New("record not found")
)

var pg = entsql.Dialect(dialect.Postgres)

type querier interface {
	Query() (string, []any)
}

// Client groups the per-table stores over one driver.
type Client struct {
	drv dialect.Driver

	User               *UserStore
	Patient            *PatientStore
	Treatment          *TreatmentStore
	CompletedTreatment *CompletedTreatmentStore
	Odontogram         *OdontogramStore
	Consent            *ConsentStore
	Promotion          *PromotionStore
	Notification       *NotificationStore
}

func NewClient(drv dialect.Driver) *Client {
	c := &Client{drv: drv}
	c.User = &UserStore{c}
	c.Patient = &PatientStore{c}
	c.Treatment = &TreatmentStore{c}
	c.CompletedTreatment = &CompletedTreatmentStore{c}
	c.Odontogram = &OdontogramStore{c}
	c.Consent = &ConsentStore{c}
	c.Promotion = &PromotionStore{c}
	c.Notification = &NotificationStore{c}
	return c
}

func (c *Client) Close() error {
	return c.drv.Close()
}

// Migrate creates or upgrades every table.
func (c *Client) Migrate(ctx context.Context) error {
	m, err := schema.NewMigrate(c.drv)
	if err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return m.Create(ctx, Tables...)
}

func (c *Client) exec(ctx context.Context, b querier) (int64, error) {
	q, args := b.Query()
	var res sql.Result
	if err := c.drv.Exec(ctx, q, args, &res); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// execOne runs a statement that must touch exactly one row.
func (c *Client) execOne(ctx context.Context, b querier) error {
	n, err := c.exec(ctx, b)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *Client) query(ctx context.Context, b querier, each func(entsql.ColumnScanner) error) error {
	q, args := b.Query()
	rows := &entsql.Rows{}
	if err := c.drv.Query(ctx, q, args, rows); err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := each(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (c *Client) count(ctx context.Context, table string, where *entsql.Predicate) (int, error) {
	sel := pg.Select(entsql.Count("*")).From(pg.Table(table))
	if where != nil {
		sel.Where(where)
	}
	var n int
	err := c.query(ctx, sel, func(r entsql.ColumnScanner) error {
		return r.Scan(&n)
	})
	return n, err
}

func scanAll[T any](ctx context.Context, c *Client, b querier, scan func(entsql.ColumnScanner) (*T, error)) ([]*T, error) {
	out := []*T{}
	err := c.query(ctx, b, func(r entsql.ColumnScanner) error {
		v, err := scan(r)
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	return out, err
}

func scanOne[T any](ctx context.Context, c *Client, b querier, scan func(entsql.ColumnScanner) (*T, error)) (*T, error) {
	all, err := scanAll(ctx, c, b, scan)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, ErrNotFound
	}
	return all[0], nil
}

// jsonArg encodes v for a jsonb column. Strings are sent instead of bytes so
// the driver does not encode them as bytea.
func jsonArg(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func jsonScan(raw []byte, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// Page bounds list queries.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) apply(s *entsql.Selector) *entsql.Selector {
	if p.Limit > 0 {
		s.Limit(p.Limit)
	}
	if p.Offset > 0 {
		s.Offset(p.Offset)
	}
	return s
}
