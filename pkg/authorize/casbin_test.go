package authorize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	casbin "github.com/casbin/casbin/v2"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
)

// createTestEnforcer creates an in-memory Casbin enforcer for testing
func createTestEnforcer(t *testing.T) *casbin.DistributedEnforcer {
	t.Helper()

	// Write empty policy file
	policyPath := filepath.Join(t.TempDir(), "policy.csv")
	if err := os.WriteFile(policyPath, []byte(""), 0644); err != nil {
		t.Fatalf("failed to write policy file: %v", err)
	}

	m, err := LoadModel("")
	if err != nil {
		t.Fatalf("failed to load model: %v", err)
	}

	e, err := casbin.NewDistributedEnforcer(m, fileadapter.NewAdapter(policyPath))
	if err != nil {
		t.Fatalf("failed to create enforcer: %v", err)
	}

	e.EnableAutoSave(false)
	e.EnableEnforce(true)

	return e
}

func seededAuthorization(t *testing.T) IAuthorization {
	t.Helper()
	auth, err := NewAuthorization(createTestEnforcer(t))
	if err != nil {
		t.Fatalf("NewAuthorization: %v", err)
	}
	if err := SeedDefaultPolicies(context.Background(), auth); err != nil {
		t.Fatalf("SeedDefaultPolicies: %v", err)
	}
	return auth
}

func TestNewAuthorization(t *testing.T) {
	t.Run("returns error for nil enforcer", func(t *testing.T) {
		_, err := NewAuthorization(nil)
		if !errors.Is(err, ErrInvalidArgs) {
			t.Errorf("expected ErrInvalidArgs, got %v", err)
		}
	})

	t.Run("succeeds with valid enforcer", func(t *testing.T) {
		auth, err := NewAuthorization(createTestEnforcer(t))
		if err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
		if auth == nil {
			t.Error("Expected non-nil authorization")
		}
	})
}

func TestEnforce(t *testing.T) {
	auth := seededAuthorization(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		role     Role
		resource Resource
		action   Action
		want     bool
		wantErr  bool
	}{
		{"admin bypass", RoleAdmin, ResourceUser, ActionDelete, true, false},
		{"doctor manages treatments", RoleDoctor, ResourceTreatment, ActionDelete, true, false},
		{"doctor cannot manage users", RoleDoctor, ResourceUser, ActionRead, false, false},
		{"staff reads patients", RoleStaff, ResourcePatient, ActionRead, true, false},
		{"staff cannot delete patients", RoleStaff, ResourcePatient, ActionDelete, false, false},
		{"staff schedules events", RoleStaff, ResourceCalendarEvent, ActionCreate, true, false},
		{"staff cannot sign consents", RoleStaff, ResourceConsent, ActionSign, false, false},
		{"unknown role evaluated as staff", Role("intern"), ResourcePatient, ActionRead, true, false},
		{"everyone reads notifications", RoleStaff, ResourceNotification, ActionList, true, false},
		{"error for empty role", "", ResourcePatient, ActionRead, false, true},
		{"error for unknown resource", RoleDoctor, Resource("unknown"), ActionRead, false, true},
		{"error for unknown action", RoleDoctor, ResourcePatient, Action("unknown"), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := auth.Enforce(ctx, tt.role, tt.resource, tt.action)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Enforce() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMustEnforce(t *testing.T) {
	auth := seededAuthorization(t)
	ctx := context.Background()

	if err := auth.MustEnforce(ctx, RoleDoctor, ResourcePatient, ActionUpdate); err != nil {
		t.Errorf("expected doctor to update patients: %v", err)
	}
	if err := auth.MustEnforce(ctx, RoleStaff, ResourceUser, ActionManage); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestDenyOverridesAllow(t *testing.T) {
	auth := seededAuthorization(t)
	ctx := context.Background()

	if _, err := auth.AddPermission(ctx, RoleDoctor, ResourcePromotion, ActionDelete, EffectDeny); err != nil {
		t.Fatalf("AddPermission: %v", err)
	}
	ok, err := auth.Enforce(ctx, RoleDoctor, ResourcePromotion, ActionDelete)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("deny row should win over manage")
	}
}

func TestAddPermissionValidation(t *testing.T) {
	auth, _ := NewAuthorization(createTestEnforcer(t))
	ctx := context.Background()

	cases := []struct {
		name   string
		role   Role
		obj    Resource
		act    Action
		effect PolicyEffect
	}{
		{"unknown role", Role("guest"), ResourcePatient, ActionRead, EffectAllow},
		{"unknown resource", RoleStaff, Resource("x"), ActionRead, EffectAllow},
		{"unknown action", RoleStaff, ResourcePatient, Action("x"), EffectAllow},
		{"bad effect", RoleStaff, ResourcePatient, ActionRead, PolicyEffect("maybe")},
		{"empty", "", "", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := auth.AddPermission(ctx, tc.role, tc.obj, tc.act, tc.effect)
			if !errors.Is(err, ErrInvalidArgs) {
				t.Errorf("expected ErrInvalidArgs, got %v", err)
			}
		})
	}
}

func TestPermissionsForRole(t *testing.T) {
	auth := seededAuthorization(t)

	perms, err := auth.PermissionsForRole(context.Background(), RoleStaff)
	if err != nil {
		t.Fatal(err)
	}
	if len(perms) == 0 {
		t.Fatal("expected seeded staff permissions")
	}
	for _, p := range perms {
		if p.Subject != RoleStaff {
			t.Errorf("unexpected subject %q", p.Subject)
		}
	}
}

// Every capability the table grants must be enforceable through Casbin and
// every capability it withholds must be denied.
func TestPoliciesAgreeWithCapabilityTable(t *testing.T) {
	auth := seededAuthorization(t)
	ctx := context.Background()

	for _, role := range []Role{RoleDoctor, RoleStaff} {
		caps := roleCapabilities[role]
		for _, name := range AllCapabilities {
			for _, g := range capabilityGrants[name] {
				for _, act := range g.Actions {
					ok, err := auth.Enforce(ctx, role, g.Object, act)
					if err != nil {
						t.Fatal(err)
					}
					if caps.Has(name) && !ok {
						t.Errorf("%s has %s but cannot %s %s", role, name, act, g.Object)
					}
				}
			}
		}
	}

	if ok, _ := auth.Enforce(ctx, RoleStaff, ResourcePatient, ActionDelete); ok {
		t.Error("staff lacks canDeletePatients but may delete patients")
	}
	if ok, _ := auth.Enforce(ctx, RoleDoctor, ResourceUser, ActionUpdate); ok {
		t.Error("doctor lacks canManageUsers but may update users")
	}
}
