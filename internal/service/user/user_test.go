package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/store"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/authorize"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) Create(ctx context.Context, u *model.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockRepo) List(ctx context.Context, p store.Page) ([]*model.User, int, error) {
	args := m.Called(ctx, p)
	return args.Get(0).([]*model.User), args.Int(1), args.Error(2)
}

func (m *mockRepo) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	return m.Called(ctx, id, role).Error(0)
}

func (m *mockRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *mockRepo) SetTutorials(ctx context.Context, id uuid.UUID, seen map[string]bool) error {
	return m.Called(ctx, id, seen).Error(0)
}

func (m *mockRepo) CountByRole(ctx context.Context, role string) (int, error) {
	args := m.Called(ctx, role)
	return args.Int(0), args.Error(1)
}

type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }

func TestMe_ResolvesCapabilitiesFromStoredRole(t *testing.T) {
	repo := &mockRepo{}
	id := uuid.New()
	repo.On("Get", mock.Anything, id).Return(&model.User{ID: id, Role: "DOCTOR"}, nil)

	p, err := New(repo, plainHasher{}, nil).Me(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, authorize.RoleDoctor, p.Role)
	assert.Equal(t, "Doctor", p.RoleName)
	assert.True(t, p.Capabilities.CanViewPatients)
	assert.False(t, p.Capabilities.CanManageUsers)
	assert.NotNil(t, p.TutorialsSeen)
}

func TestMe_UnknownRoleIsStaff(t *testing.T) {
	repo := &mockRepo{}
	id := uuid.New()
	repo.On("Get", mock.Anything, id).Return(&model.User{ID: id, Role: "janitor"}, nil)

	p, err := New(repo, plainHasher{}, nil).Me(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, authorize.ResolvePermissions("staff"), p.Capabilities)
}

func TestMarkTutorialSeen(t *testing.T) {
	repo := &mockRepo{}
	id := uuid.New()
	repo.On("Get", mock.Anything, id).Return(&model.User{ID: id, TutorialsSeen: map[string]bool{"dashboard": true}}, nil)
	repo.On("SetTutorials", mock.Anything, id, map[string]bool{"dashboard": true, "patients": true}).Return(nil).Once()

	svc := New(repo, plainHasher{}, nil)
	seen, err := svc.MarkTutorialSeen(context.Background(), id, " Patients ")
	require.NoError(t, err)
	assert.True(t, seen["patients"])

	_, err = svc.MarkTutorialSeen(context.Background(), id, "dashboard")
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "SetTutorials", 1)

	_, err = svc.MarkTutorialSeen(context.Background(), id, "../etc")
	assert.ErrorIs(t, err, ErrInvalidTutorial)
}

func TestCreate_Validation(t *testing.T) {
	valid := CreateRequest{Email: "ana@diamond.hn", FullName: "Ana", Password: "longenough", Role: "doctor"}

	tests := []struct {
		name   string
		mutate func(r *CreateRequest)
		want   error
	}{
		{"bad email", func(r *CreateRequest) { r.Email = "ana" }, ErrInvalidEmail},
		{"display name email", func(r *CreateRequest) { r.Email = "Ana <ana@diamond.hn>" }, ErrInvalidEmail},
		{"no name", func(r *CreateRequest) { r.FullName = " " }, ErrNameRequired},
		{"short password", func(r *CreateRequest) { r.Password = "short" }, ErrPasswordTooShort},
		{"bad role", func(r *CreateRequest) { r.Role = "owner" }, ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			_, err := New(&mockRepo{}, plainHasher{}, nil).Create(context.Background(), req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreate_HashesAndRejectsDuplicates(t *testing.T) {
	repo := &mockRepo{}
	repo.On("GetByEmail", mock.Anything, "ana@diamond.hn").Return(nil, store.ErrNotFound).Once()
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	svc := New(repo, plainHasher{}, nil)
	u, err := svc.Create(context.Background(), CreateRequest{Email: " ANA@diamond.hn", FullName: "Ana", Password: "longenough", Role: "Staff"})
	require.NoError(t, err)
	assert.Equal(t, "ana@diamond.hn", u.Email)
	assert.Equal(t, "staff", u.Role)
	assert.Equal(t, "hashed:longenough", u.PasswordHash)
	assert.True(t, u.IsActive)

	repo.On("GetByEmail", mock.Anything, "ana@diamond.hn").Return(u, nil)
	_, err = svc.Create(context.Background(), CreateRequest{Email: "ana@diamond.hn", FullName: "Ana", Password: "longenough", Role: "staff"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestChangeRoleAndSetActive(t *testing.T) {
	repo := &mockRepo{}
	admin, target := uuid.New(), uuid.New()
	svc := New(repo, plainHasher{}, nil)

	_, err := svc.ChangeRole(context.Background(), admin, admin, "staff")
	assert.ErrorIs(t, err, ErrSelfModification)
	_, err = svc.SetActive(context.Background(), admin, admin, false)
	assert.ErrorIs(t, err, ErrSelfModification)

	repo.On("UpdateRole", mock.Anything, target, "admin").Return(nil)
	repo.On("Get", mock.Anything, target).Return(&model.User{ID: target, Role: "admin"}, nil)
	u, err := svc.ChangeRole(context.Background(), admin, target, "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Role)

	missing := uuid.New()
	repo.On("Get", mock.Anything, missing).Return(nil, store.ErrNotFound)
	_, err = svc.SetActive(context.Background(), admin, missing, false)
	assert.ErrorIs(t, err, ErrUserNotFound)
	repo.AssertNotCalled(t, "SetActive", mock.Anything, missing, false)
}

func TestLastActiveAdminIsKept(t *testing.T) {
	actor, target := uuid.New(), uuid.New()

	tests := []struct {
		name    string
		target  *model.User
		admins  int
		act     func(Service) error
		wantErr error
	}{
		{
			name:   "demoting the only admin",
			target: &model.User{ID: target, Role: "admin", IsActive: true},
			admins: 1,
			act: func(s Service) error {
				_, err := s.ChangeRole(context.Background(), actor, target, "doctor")
				return err
			},
			wantErr: ErrLastAdmin,
		},
		{
			name:   "deactivating the only admin",
			target: &model.User{ID: target, Role: "admin", IsActive: true},
			admins: 1,
			act: func(s Service) error {
				_, err := s.SetActive(context.Background(), actor, target, false)
				return err
			},
			wantErr: ErrLastAdmin,
		},
		{
			name:   "demoting one of two admins",
			target: &model.User{ID: target, Role: "admin", IsActive: true},
			admins: 2,
			act: func(s Service) error {
				_, err := s.ChangeRole(context.Background(), actor, target, "staff")
				return err
			},
		},
		{
			name:   "deactivating a doctor skips the count",
			target: &model.User{ID: target, Role: "doctor", IsActive: true},
			admins: -1,
			act: func(s Service) error {
				_, err := s.SetActive(context.Background(), actor, target, false)
				return err
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepo{}
			repo.On("Get", mock.Anything, target).Return(tt.target, nil)
			if tt.admins >= 0 {
				repo.On("CountByRole", mock.Anything, "admin").Return(tt.admins, nil).Once()
			}
			repo.On("UpdateRole", mock.Anything, target, mock.Anything).Return(nil)
			repo.On("SetActive", mock.Anything, target, false).Return(nil)

			err := tt.act(New(repo, plainHasher{}, nil))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "UpdateRole", mock.Anything, target, mock.Anything)
				repo.AssertNotCalled(t, "SetActive", mock.Anything, target, false)
				return
			}
			require.NoError(t, err)
			if tt.admins < 0 {
				repo.AssertNotCalled(t, "CountByRole", mock.Anything, "admin")
			}
		})
	}
}

type mockRevoker struct{ mock.Mock }

func (m *mockRevoker) RevokeUserSessions(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func TestSetActive_DeactivationRevokesSessions(t *testing.T) {
	actor, target := uuid.New(), uuid.New()
	doctor := &model.User{ID: target, Role: "doctor", IsActive: true}

	t.Run("deactivate", func(t *testing.T) {
		repo, revoker := &mockRepo{}, &mockRevoker{}
		repo.On("Get", mock.Anything, target).Return(doctor, nil)
		repo.On("SetActive", mock.Anything, target, false).Return(nil)
		revoker.On("RevokeUserSessions", mock.Anything, target).Return(nil).Once()

		_, err := New(repo, plainHasher{}, revoker).SetActive(context.Background(), actor, target, false)
		require.NoError(t, err)
		revoker.AssertExpectations(t)
	})

	t.Run("activate", func(t *testing.T) {
		repo, revoker := &mockRepo{}, &mockRevoker{}
		repo.On("Get", mock.Anything, target).Return(doctor, nil)
		repo.On("SetActive", mock.Anything, target, true).Return(nil)

		_, err := New(repo, plainHasher{}, revoker).SetActive(context.Background(), actor, target, true)
		require.NoError(t, err)
		revoker.AssertNotCalled(t, "RevokeUserSessions", mock.Anything, mock.Anything)
	})

	t.Run("revoke failure surfaces", func(t *testing.T) {
		repo, revoker := &mockRepo{}, &mockRevoker{}
		repo.On("Get", mock.Anything, target).Return(doctor, nil)
		repo.On("SetActive", mock.Anything, target, false).Return(nil)
		revoker.On("RevokeUserSessions", mock.Anything, target).Return(assert.AnError)

		_, err := New(repo, plainHasher{}, revoker).SetActive(context.Background(), actor, target, false)
		assert.ErrorIs(t, err, assert.AnError)
	})
}
