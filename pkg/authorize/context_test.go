package authorize

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/reqctx"
)

type stubClaims struct {
	userID uuid.UUID
	role   string
}

func (s *stubClaims) GetUserID() uuid.UUID     { return s.userID }
func (s *stubClaims) GetSessionID() *uuid.UUID { return nil }
func (s *stubClaims) GetTokenType() string     { return "access" }
func (s *stubClaims) GetRole() string          { return s.role }
func (s *stubClaims) IsExpired() bool          { return false }

func TestRoleFromContext(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name     string
		ctx      context.Context
		wantRole Role
		wantErr  bool
	}{
		{"doctor claims", reqctx.WithClaims(context.Background(), &stubClaims{id, "doctor"}), RoleDoctor, false},
		{"unknown role is staff", reqctx.WithClaims(context.Background(), &stubClaims{id, "janitor"}), RoleStaff, false},
		{"no claims", context.Background(), "", true},
		{"nil user", reqctx.WithClaims(context.Background(), &stubClaims{uuid.Nil, "admin"}), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := RoleFromContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if role != tt.wantRole {
				t.Errorf("role = %q, want %q", role, tt.wantRole)
			}
		})
	}
}

func TestUserIDFromContext(t *testing.T) {
	id := uuid.New()
	ctx := reqctx.WithClaims(context.Background(), &stubClaims{id, "staff"})

	got, err := UserIDFromContext(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != id {
		t.Errorf("got %s, want %s", got, id)
	}

	if _, err := UserIDFromContext(context.Background()); err != ErrNoSubjectInContext {
		t.Errorf("expected ErrNoSubjectInContext, got %v", err)
	}
}

func TestCapabilitiesFromContext(t *testing.T) {
	ctx := reqctx.WithClaims(context.Background(), &stubClaims{uuid.New(), "admin"})
	caps, err := CapabilitiesFromContext(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !caps.CanManageUsers {
		t.Error("admin should manage users")
	}
}
