package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/store"
	pasetotoken "github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/paseto"
	rediskey "github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/redis"
)

const (
	defaultMaxLoginAttempts = 5
	defaultLockout          = 15 * time.Minute
)

// SessionKey is the Redis key holding a live session.
func SessionKey(id uuid.UUID) string { return rediskey.Key("session", id.String()) }

// userSessionsKey indexes the live sessions of one user.
func userSessionsKey(id uuid.UUID) string { return rediskey.Key("user", "sessions", id.String()) }

func failuresKey(email string) string { return rediskey.Key("login", "failures", email) }

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type LoginRequest struct {
	Email    string
	Password string
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // seconds until the access token expires
}

// ---------------------------------------------------------------------------
// Dependencies
// ---------------------------------------------------------------------------

type Users interface {
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	SetPassword(ctx context.Context, id uuid.UUID, hash string) error
}

// Redis is the subset of *redis.Client used for sessions and lockouts.
type Redis interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	SAdd(ctx context.Context, key string, members ...any) *redis.IntCmd
	SRem(ctx context.Context, key string, members ...any) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
}

type Tokens interface {
	IssueAccess(userID uuid.UUID, role string, sessionID *uuid.UUID) (string, error)
	IssueRefresh(userID uuid.UUID, role string, sessionID *uuid.UUID) (string, error)
	Verify(token string) (*pasetotoken.Claims, error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

type Hasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) error
	NeedsRehash(hash string) bool
}

type Deps struct {
	Users  Users
	Redis  Redis
	Tokens Tokens
	Hasher Hasher

	MaxLoginAttempts int
	Lockout          time.Duration
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*AuthTokens, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
	// RevokeUserSessions ends every live session of the user.
	RevokeUserSessions(ctx context.Context, userID uuid.UUID) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type authService struct {
	Deps
}

func New(d Deps) Service {
	if d.MaxLoginAttempts <= 0 {
		d.MaxLoginAttempts = defaultMaxLoginAttempts
	}
	if d.Lockout <= 0 {
		d.Lockout = defaultLockout
	}
	return &authService{Deps: d}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthTokens, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	failures, err := s.Redis.Get(ctx, failuresKey(email)).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis get failures: %w", err)
	}
	if failures >= s.MaxLoginAttempts {
		return nil, ErrAccountLocked
	}

	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.recordFailedLogin(ctx, email)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := s.Hasher.Verify(u.PasswordHash, req.Password); err != nil {
		s.recordFailedLogin(ctx, email)
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrAccountDisabled
	}

	s.Redis.Del(ctx, failuresKey(email))
	s.rehash(ctx, u, req.Password)

	return s.createSession(ctx, u)
}

// ---------------------------------------------------------------------------
// RefreshTokens
// ---------------------------------------------------------------------------

// RefreshTokens issues a new access token for a live session. The role is
// re-read from the user record so role changes apply at the next refresh.
func (s *authService) RefreshTokens(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	claims, err := s.Tokens.Verify(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Type != pasetotoken.TokenTypeRefresh || claims.SessionID == nil {
		return nil, ErrInvalidToken
	}

	key := SessionKey(*claims.SessionID)
	if err := s.Redis.Get(ctx, key).Err(); errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	} else if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	u, err := s.Users.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !u.IsActive {
		s.Redis.Del(ctx, key)
		return nil, ErrAccountDisabled
	}

	s.Redis.Expire(ctx, key, s.Tokens.RefreshTTL())

	access, err := s.Tokens.IssueAccess(u.ID, u.Role, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	return &AuthTokens{
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.Tokens.AccessTTL().Seconds()),
	}, nil
}

// ---------------------------------------------------------------------------
// Logout
// ---------------------------------------------------------------------------

func (s *authService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	key := SessionKey(sessionID)
	owner, err := s.Redis.Get(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("get session: %w", err)
	}
	deleted, err := s.Redis.Del(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if deleted == 0 {
		slog.DebugContext(ctx, "logout: session already expired", "session_id", sessionID)
		return nil
	}
	if uid, err := uuid.Parse(owner); err == nil {
		s.Redis.SRem(ctx, userSessionsKey(uid), sessionID.String())
	}
	return nil
}

// RevokeUserSessions deletes every session indexed for the user, so access
// tokens already issued stop passing AuthRequired.
func (s *authService) RevokeUserSessions(ctx context.Context, userID uuid.UUID) error {
	index := userSessionsKey(userID)
	ids, err := s.Redis.SMembers(ctx, index).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("list sessions: %w", err)
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		sid, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		keys = append(keys, SessionKey(sid))
	}
	keys = append(keys, index)
	if err := s.Redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *authService) createSession(ctx context.Context, u *model.User) (*AuthTokens, error) {
	sessionID := uuid.Must(uuid.NewV7())

	if err := s.Redis.Set(ctx, SessionKey(sessionID), u.ID.String(), s.Tokens.RefreshTTL()).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	// The index outlives each session by at most one refresh TTL; stale
	// members point at expired keys and are harmless to delete.
	index := userSessionsKey(u.ID)
	if err := s.Redis.SAdd(ctx, index, sessionID.String()).Err(); err != nil {
		return nil, fmt.Errorf("index session: %w", err)
	}
	s.Redis.Expire(ctx, index, s.Tokens.RefreshTTL())

	access, err := s.Tokens.IssueAccess(u.ID, u.Role, &sessionID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.Tokens.IssueRefresh(u.ID, u.Role, &sessionID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	return &AuthTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.Tokens.AccessTTL().Seconds()),
	}, nil
}

// recordFailedLogin counts failures per email; the window restarts with
// every failure.
func (s *authService) recordFailedLogin(ctx context.Context, email string) {
	key := failuresKey(email)
	if err := s.Redis.Incr(ctx, key).Err(); err != nil {
		slog.WarnContext(ctx, "login failure counter", "error", err)
		return
	}
	s.Redis.Expire(ctx, key, s.Lockout)
}

func (s *authService) rehash(ctx context.Context, u *model.User, plain string) {
	if !s.Hasher.NeedsRehash(u.PasswordHash) {
		return
	}
	hash, err := s.Hasher.Hash(plain)
	if err != nil {
		return
	}
	if err := s.Users.SetPassword(ctx, u.ID, hash); err != nil {
		slog.WarnContext(ctx, "password rehash failed", "user_id", u.ID, "error", err)
	}
}
