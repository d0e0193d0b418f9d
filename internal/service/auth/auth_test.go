package auth

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	paseto "aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/store"
	pasetotoken "github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/paseto"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/util/password"
)

// memRedis keeps values without expiry; TTLs are recorded for assertions.
type memRedis struct {
	mu   sync.Mutex
	vals map[string]string
	sets map[string]map[string]bool
	ttls map[string]time.Duration
}

func newMemRedis() *memRedis {
	return &memRedis{vals: map[string]string{}, sets: map[string]map[string]bool{}, ttls: map[string]time.Duration{}}
}

func (m *memRedis) SAdd(_ context.Context, key string, members ...any) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sets[key] == nil {
		m.sets[key] = map[string]bool{}
	}
	var n int64
	for _, v := range members {
		if !m.sets[key][v.(string)] {
			m.sets[key][v.(string)] = true
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (m *memRedis) SRem(_ context.Context, key string, members ...any) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, v := range members {
		if m.sets[key][v.(string)] {
			delete(m.sets[key], v.(string))
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (m *memRedis) SMembers(_ context.Context, key string) *redis.StringSliceCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []string{}
	for v := range m.sets[key] {
		out = append(out, v)
	}
	return redis.NewStringSliceResult(out, nil)
}

func (m *memRedis) Get(_ context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vals[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memRedis) Set(_ context.Context, key string, value any, exp time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[key] = value.(string)
	m.ttls[key] = exp
	return redis.NewStatusResult("OK", nil)
}

func (m *memRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := m.vals[k]; ok {
			delete(m.vals, k)
			n++
		}
		if _, ok := m.sets[k]; ok {
			delete(m.sets, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (m *memRedis) Incr(_ context.Context, key string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := strconv.ParseInt(m.vals[key], 10, 64)
	n++
	m.vals[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

func (m *memRedis) Expire(_ context.Context, key string, exp time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.vals[key]
	if _, isSet := m.sets[key]; isSet {
		ok = true
	}
	if ok {
		m.ttls[key] = exp
	}
	return redis.NewBoolResult(ok, nil)
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUsers) SetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

var testHashConfig = password.Config{MemoryKiB: 64, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

type fixture struct {
	svc    Service
	users  *mockUsers
	redis  *memRedis
	tokens *pasetotoken.Manager
	user   *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	key := paseto.NewV4SymmetricKey()
	keys, err := pasetotoken.LoadKeys(pasetotoken.KeyStrings{Mode: pasetotoken.ModeLocal, SymmetricHex: key.ExportHex()})
	require.NoError(t, err)
	tokens, err := pasetotoken.New(pasetotoken.Config{
		Mode:       pasetotoken.ModeLocal,
		Issuer:     "diamond",
		Audience:   "diamond-web",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}, keys)
	require.NoError(t, err)

	hasher := password.NewHasher(testHashConfig)
	hash, err := hasher.Hash("s3cret-pass")
	require.NoError(t, err)

	u := &model.User{ID: uuid.New(), Email: "ana@diamond.hn", Role: "doctor", IsActive: true, PasswordHash: hash}
	users := &mockUsers{}
	rdb := newMemRedis()

	return &fixture{
		svc: New(Deps{
			Users:            users,
			Redis:            rdb,
			Tokens:           tokens,
			Hasher:           hasher,
			MaxLoginAttempts: 3,
			Lockout:          10 * time.Minute,
		}),
		users:  users,
		redis:  rdb,
		tokens: tokens,
		user:   u,
	}
}

func TestLogin_IssuesSessionTokens(t *testing.T) {
	f := newFixture(t)
	f.users.On("GetByEmail", mock.Anything, "ana@diamond.hn").Return(f.user, nil)

	toks, err := f.svc.Login(context.Background(), LoginRequest{Email: "  Ana@Diamond.hn ", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.EqualValues(t, 60, toks.ExpiresIn)

	claims, err := f.tokens.Verify(toks.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, claims.UserID)
	assert.Equal(t, "doctor", claims.Role)
	require.NotNil(t, claims.SessionID)

	key := SessionKey(*claims.SessionID)
	assert.Equal(t, f.user.ID.String(), f.redis.vals[key])
	assert.Equal(t, time.Hour, f.redis.ttls[key])
}

func TestLogin_LocksAfterRepeatedFailures(t *testing.T) {
	f := newFixture(t)
	f.users.On("GetByEmail", mock.Anything, "ana@diamond.hn").Return(f.user, nil)
	ctx := context.Background()

	for range 3 {
		_, err := f.svc.Login(ctx, LoginRequest{Email: "ana@diamond.hn", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	assert.Equal(t, 10*time.Minute, f.redis.ttls[failuresKey("ana@diamond.hn")])

	_, err := f.svc.Login(ctx, LoginRequest{Email: "ana@diamond.hn", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestLogin_SuccessClearsFailures(t *testing.T) {
	f := newFixture(t)
	f.users.On("GetByEmail", mock.Anything, "ana@diamond.hn").Return(f.user, nil)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, LoginRequest{Email: "ana@diamond.hn", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, LoginRequest{Email: "ana@diamond.hn", Password: "s3cret-pass"})
	require.NoError(t, err)
	_, present := f.redis.vals[failuresKey("ana@diamond.hn")]
	assert.False(t, present)
}

func TestLogin_UnknownAndDisabled(t *testing.T) {
	f := newFixture(t)
	f.users.On("GetByEmail", mock.Anything, "nobody@diamond.hn").Return(nil, store.ErrNotFound)
	_, err := f.svc.Login(context.Background(), LoginRequest{Email: "nobody@diamond.hn", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	f.user.IsActive = false
	f.users.On("GetByEmail", mock.Anything, "ana@diamond.hn").Return(f.user, nil)
	_, err = f.svc.Login(context.Background(), LoginRequest{Email: "ana@diamond.hn", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestRefresh_PicksUpRoleChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.users.On("GetByEmail", mock.Anything, "ana@diamond.hn").Return(f.user, nil)

	toks, err := f.svc.Login(ctx, LoginRequest{Email: "ana@diamond.hn", Password: "s3cret-pass"})
	require.NoError(t, err)

	promoted := *f.user
	promoted.Role = "admin"
	f.users.On("Get", mock.Anything, f.user.ID).Return(&promoted, nil)

	refreshed, err := f.svc.RefreshTokens(ctx, toks.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, toks.RefreshToken, refreshed.RefreshToken)

	claims, err := f.tokens.Verify(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
}

func TestRefresh_RejectsAccessTokenAndEndedSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.users.On("GetByEmail", mock.Anything, "ana@diamond.hn").Return(f.user, nil)

	toks, err := f.svc.Login(ctx, LoginRequest{Email: "ana@diamond.hn", Password: "s3cret-pass"})
	require.NoError(t, err)

	_, err = f.svc.RefreshTokens(ctx, toks.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := f.tokens.Verify(toks.RefreshToken)
	require.NoError(t, err)
	require.NoError(t, f.svc.Logout(ctx, *claims.SessionID))

	_, err = f.svc.RefreshTokens(ctx, toks.RefreshToken)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestLogout_ExpiredSessionIsNotAnError(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.svc.Logout(context.Background(), uuid.New()))
}

func TestRevokeUserSessions_EndsEveryLiveSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.users.On("GetByEmail", mock.Anything, "ana@diamond.hn").Return(f.user, nil)

	var sessions []uuid.UUID
	var refresh string
	for range 2 {
		toks, err := f.svc.Login(ctx, LoginRequest{Email: "ana@diamond.hn", Password: "s3cret-pass"})
		require.NoError(t, err)
		claims, err := f.tokens.Verify(toks.AccessToken)
		require.NoError(t, err)
		sessions = append(sessions, *claims.SessionID)
		refresh = toks.RefreshToken
	}
	other := uuid.New()
	f.redis.vals[SessionKey(other)] = uuid.NewString()

	require.Len(t, f.redis.sets[userSessionsKey(f.user.ID)], 2)
	assert.Equal(t, time.Hour, f.redis.ttls[userSessionsKey(f.user.ID)])

	require.NoError(t, f.svc.RevokeUserSessions(ctx, f.user.ID))

	for _, sid := range sessions {
		assert.NotContains(t, f.redis.vals, SessionKey(sid))
	}
	assert.NotContains(t, f.redis.sets, userSessionsKey(f.user.ID))
	assert.Contains(t, f.redis.vals, SessionKey(other))

	_, err := f.svc.RefreshTokens(ctx, refresh)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestLogout_DropsSessionFromUserIndex(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.users.On("GetByEmail", mock.Anything, "ana@diamond.hn").Return(f.user, nil)

	toks, err := f.svc.Login(ctx, LoginRequest{Email: "ana@diamond.hn", Password: "s3cret-pass"})
	require.NoError(t, err)
	claims, err := f.tokens.Verify(toks.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, *claims.SessionID))
	assert.Empty(t, f.redis.sets[userSessionsKey(f.user.ID)])
}
