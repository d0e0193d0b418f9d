package store

import (
	"context"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
)

const usersTable = "users"

var userColumns = columnNames(UsersColumns)

type UserStore struct{ c *Client }

func scanUser(r entsql.ColumnScanner) (*model.User, error) {
	var (
		u         model.User
		tutorials []byte
	)
	if err := r.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.Role, &u.IsActive,
		&tutorials, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if err := jsonScan(tutorials, &u.TutorialsSeen); err != nil {
		return nil, err
	}
	if u.TutorialsSeen == nil {
		u.TutorialsSeen = map[string]bool{}
	}
	return &u, nil
}

func (s *UserStore) Create(ctx context.Context, u *model.User) error {
	if u.TutorialsSeen == nil {
		u.TutorialsSeen = map[string]bool{}
	}
	tutorials, err := jsonArg(u.TutorialsSeen)
	if err != nil {
		return err
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	_, err = s.c.exec(ctx, pg.Insert(usersTable).Columns(userColumns...).Values(
		u.ID, u.Email, u.FullName, u.PasswordHash, u.Role, u.IsActive,
		tutorials, u.CreatedAt, u.UpdatedAt,
	))
	return err
}

func (s *UserStore) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	sel := pg.Select(userColumns...).From(pg.Table(usersTable)).Where(entsql.EQ("id", id))
	return scanOne(ctx, s.c, sel, scanUser)
}

// GetByEmail looks the user up by lowercased email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	sel := pg.Select(userColumns...).From(pg.Table(usersTable)).
		Where(entsql.EQ("email", strings.ToLower(strings.TrimSpace(email))))
	return scanOne(ctx, s.c, sel, scanUser)
}

func (s *UserStore) List(ctx context.Context, p Page) ([]*model.User, int, error) {
	total, err := s.c.count(ctx, usersTable, nil)
	if err != nil {
		return nil, 0, err
	}
	sel := pg.Select(userColumns...).From(pg.Table(usersTable)).OrderBy(entsql.Asc("email"))
	items, err := scanAll(ctx, s.c, p.apply(sel), scanUser)
	return items, total, err
}

// ListByRole returns the active users holding role.
func (s *UserStore) ListByRole(ctx context.Context, role string) ([]*model.User, error) {
	sel := pg.Select(userColumns...).From(pg.Table(usersTable)).
		Where(entsql.And(entsql.EQ("role", role), entsql.EQ("is_active", true)))
	return scanAll(ctx, s.c, sel, scanUser)
}

func (s *UserStore) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	return s.c.execOne(ctx, pg.Update(usersTable).
		Set("role", role).
		Set("updated_at", time.Now()).
		Where(entsql.EQ("id", id)))
}

func (s *UserStore) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.c.execOne(ctx, pg.Update(usersTable).
		Set("is_active", active).
		Set("updated_at", time.Now()).
		Where(entsql.EQ("id", id)))
}

func (s *UserStore) SetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	return s.c.execOne(ctx, pg.Update(usersTable).
		Set("password_hash", hash).
		Set("updated_at", time.Now()).
		Where(entsql.EQ("id", id)))
}

// SetTutorials replaces the tutorial flags of the user.
func (s *UserStore) SetTutorials(ctx context.Context, id uuid.UUID, seen map[string]bool) error {
	raw, err := jsonArg(seen)
	if err != nil {
		return err
	}
	return s.c.execOne(ctx, pg.Update(usersTable).
		Set("tutorials_seen", raw).
		Set("updated_at", time.Now()).
		Where(entsql.EQ("id", id)))
}

// CountByRole counts the active users holding role.
func (s *UserStore) CountByRole(ctx context.Context, role string) (int, error) {
	return s.c.count(ctx, usersTable, entsql.And(entsql.EQ("role", role), entsql.EQ("is_active", true)))
}
