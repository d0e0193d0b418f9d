package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/store"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/authorize"
)

const minPasswordLength = 8

var reTutorialKey = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Profile is what a signed-in user learns about themselves.
type Profile struct {
	User          *model.User            `json:"user"`
	Role          authorize.Role         `json:"role"`
	RoleName      string                 `json:"role_name"`
	Capabilities  authorize.Capabilities `json:"capabilities"`
	TutorialsSeen map[string]bool        `json:"tutorials_seen"`
}

type CreateRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type ListResult struct {
	Data    []*model.User `json:"data"`
	Total   int           `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
}

// ---------------------------------------------------------------------------
// Dependencies
// ---------------------------------------------------------------------------

type Repository interface {
	Create(ctx context.Context, u *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, p store.Page) ([]*model.User, int, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	SetTutorials(ctx context.Context, id uuid.UUID, seen map[string]bool) error
	CountByRole(ctx context.Context, role string) (int, error)
}

type Hasher interface {
	Hash(password string) (string, error)
}

// SessionRevoker ends the live sessions of a deactivated user.
type SessionRevoker interface {
	RevokeUserSessions(ctx context.Context, userID uuid.UUID) error
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	Me(ctx context.Context, id uuid.UUID) (*Profile, error)
	MarkTutorialSeen(ctx context.Context, id uuid.UUID, key string) (map[string]bool, error)

	List(ctx context.Context, page, perPage int) (*ListResult, error)
	Create(ctx context.Context, req CreateRequest) (*model.User, error)
	ChangeRole(ctx context.Context, actorID, id uuid.UUID, role string) (*model.User, error)
	SetActive(ctx context.Context, actorID, id uuid.UUID, active bool) (*model.User, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type userService struct {
	repo     Repository
	hasher   Hasher
	sessions SessionRevoker
	now      func() time.Time
}

// New builds the user service. sessions may be nil when no session store is
// running, as in the seed-admin command.
func New(repo Repository, hasher Hasher, sessions SessionRevoker) Service {
	return &userService{repo: repo, hasher: hasher, sessions: sessions, now: time.Now}
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Me resolves capabilities from the stored role, so a role change shows up
// here before the caller's token is refreshed.
func (s *userService) Me(ctx context.Context, id uuid.UUID) (*Profile, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	role := authorize.NormalizeRole(u.Role)
	seen := u.TutorialsSeen
	if seen == nil {
		seen = map[string]bool{}
	}
	return &Profile{
		User:          u,
		Role:          role,
		RoleName:      authorize.RoleDisplayNames[role],
		Capabilities:  authorize.ResolvePermissions(string(role)),
		TutorialsSeen: seen,
	}, nil
}

func (s *userService) MarkTutorialSeen(ctx context.Context, id uuid.UUID, key string) (map[string]bool, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if !reTutorialKey.MatchString(key) {
		return nil, ErrInvalidTutorial
	}
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(u.TutorialsSeen)+1)
	for k, v := range u.TutorialsSeen {
		seen[k] = v
	}
	if seen[key] {
		return seen, nil
	}
	seen[key] = true
	if err := s.repo.SetTutorials(ctx, id, seen); err != nil {
		return nil, s.mapErr(err, "set tutorials")
	}
	return seen, nil
}

func (s *userService) List(ctx context.Context, page, perPage int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	items, total, err := s.repo.List(ctx, store.Page{Limit: perPage, Offset: (page - 1) * perPage})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &ListResult{Data: items, Total: total, Page: page, PerPage: perPage}, nil
}

func (s *userService) Create(ctx context.Context, req CreateRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, ErrInvalidEmail
	}
	name := strings.TrimSpace(req.FullName)
	if name == "" {
		return nil, ErrNameRequired
	}
	if len(req.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	role, ok := authorize.ParseRole(req.Role)
	if !ok {
		return nil, ErrInvalidRole
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	u := &model.User{
		ID:            uuid.New(),
		Email:         email,
		FullName:      name,
		PasswordHash:  hash,
		Role:          string(role),
		IsActive:      true,
		TutorialsSeen: map[string]bool{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *userService) ChangeRole(ctx context.Context, actorID, id uuid.UUID, role string) (*model.User, error) {
	r, ok := authorize.ParseRole(role)
	if !ok {
		return nil, ErrInvalidRole
	}
	if actorID == id {
		return nil, ErrSelfModification
	}
	if r != authorize.RoleAdmin {
		if err := s.keepLastAdmin(ctx, id); err != nil {
			return nil, err
		}
	}
	if err := s.repo.UpdateRole(ctx, id, string(r)); err != nil {
		return nil, s.mapErr(err, "update role")
	}
	return s.GetByID(ctx, id)
}

func (s *userService) SetActive(ctx context.Context, actorID, id uuid.UUID, active bool) (*model.User, error) {
	if actorID == id {
		return nil, ErrSelfModification
	}
	if !active {
		if err := s.keepLastAdmin(ctx, id); err != nil {
			return nil, err
		}
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, s.mapErr(err, "set active")
	}
	if !active && s.sessions != nil {
		if err := s.sessions.RevokeUserSessions(ctx, id); err != nil {
			return nil, fmt.Errorf("revoke sessions: %w", err)
		}
	}
	return s.GetByID(ctx, id)
}

// keepLastAdmin refuses to take id out of the admin pool when it is the only
// active admin left.
func (s *userService) keepLastAdmin(ctx context.Context, id uuid.UUID) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !u.IsActive || authorize.NormalizeRole(u.Role) != authorize.RoleAdmin {
		return nil
	}
	n, err := s.repo.CountByRole(ctx, string(authorize.RoleAdmin))
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if n <= 1 {
		return ErrLastAdmin
	}
	return nil
}

func (s *userService) mapErr(err error, op string) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
