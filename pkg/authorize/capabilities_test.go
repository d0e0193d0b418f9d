package authorize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePermissions(t *testing.T) {
	t.Run("unknown role falls back to staff", func(t *testing.T) {
		assert.Equal(t, ResolvePermissions("staff"), ResolvePermissions("unknown-role"))
		assert.Equal(t, ResolvePermissions("staff"), ResolvePermissions(""))
	})

	t.Run("admin has everything", func(t *testing.T) {
		caps := ResolvePermissions("admin")
		assert.Equal(t, AllCapabilities, caps.Granted())
	})

	t.Run("only admin manages users", func(t *testing.T) {
		assert.True(t, ResolvePermissions("admin").CanManageUsers)
		assert.False(t, ResolvePermissions("doctor").CanManageUsers)
		assert.False(t, ResolvePermissions("staff").CanManageUsers)
	})

	t.Run("staff cannot delete patients", func(t *testing.T) {
		caps := ResolvePermissions("staff")
		assert.True(t, caps.CanViewPatients)
		assert.False(t, caps.CanDeletePatients)
		assert.False(t, caps.CanManageTreatments)
	})
}

func TestCapabilitiesJSONNames(t *testing.T) {
	raw, err := json.Marshal(ResolvePermissions("admin"))
	require.NoError(t, err)

	var decoded map[string]bool
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, len(AllCapabilities))

	for _, name := range AllCapabilities {
		v, ok := decoded[string(name)]
		assert.True(t, ok, "missing %s", name)
		assert.True(t, v)
	}
}

func TestCapabilitiesHas(t *testing.T) {
	caps := ResolvePermissions("doctor")
	assert.True(t, caps.Has(CapViewPatients))
	assert.False(t, caps.Has(CapManageUsers))
	assert.False(t, caps.Has(Capability("canFly")))
	assert.False(t, ResolvePermissions("admin").Has(Capability("")))
}

func TestCanAccessRoute(t *testing.T) {
	tests := []struct {
		name string
		role string
		path string
		want bool
	}{
		{"admin any path", "admin", "/any/arbitrary/path", true},
		{"admin root", "admin", "/", true},
		{"staff exact admin", "staff", "/admin", false},
		{"staff nested admin", "staff", "/admin/users", false},
		{"staff administration not covered", "staff", "/administration", false},
		{"staff patients", "staff", "/patients", true},
		{"staff patient detail", "staff", "/patients/123", true},
		{"staff new patient", "staff", "/patients/new", true},
		{"staff promotions", "staff", "/promotions", false},
		{"doctor promotions", "doctor", "/promotions/42", true},
		{"doctor consents", "doctor", "/consents", true},
		{"staff consents", "staff", "/consents", false},
		{"unknown path denied", "doctor", "/nowhere", false},
		{"prefix without boundary denied", "doctor", "/patientsx", false},
		{"unknown role acts as staff", "guest", "/patients", true},
		{"unknown role denied admin", "guest", "/admin", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccessRoute(tt.role, tt.path))
		})
	}
}

func TestMatchRoute(t *testing.T) {
	t.Run("exact beats prefix", func(t *testing.T) {
		r, ok := MatchRoute("/patients/new")
		require.True(t, ok)
		assert.Equal(t, CapCreatePatients, r.Capability)
	})

	t.Run("first prefix wins", func(t *testing.T) {
		r, ok := MatchRoute("/patients/new/draft")
		require.True(t, ok)
		assert.Equal(t, "/patients/new", r.Path)
	})

	t.Run("boundary is required", func(t *testing.T) {
		_, ok := MatchRoute("/administration")
		assert.False(t, ok)

		r, ok := MatchRoute("/admin/users")
		require.True(t, ok)
		assert.Equal(t, "/admin", r.Path)
	})

	t.Run("table copy is independent", func(t *testing.T) {
		table := RouteTable()
		table[0].Path = "/changed"
		_, ok := MatchRoute("/dashboard")
		assert.True(t, ok)
	})
}
