package authorize

import "strings"

// Capability is the name of a boolean permission exposed to clients.
type Capability string

const (
	CapViewDashboard    Capability = "canViewDashboard"
	CapViewPatients     Capability = "canViewPatients"
	CapCreatePatients   Capability = "canCreatePatients"
	CapEditPatients     Capability = "canEditPatients"
	CapDeletePatients   Capability = "canDeletePatients"
	CapViewTreatments   Capability = "canViewTreatments"
	CapManageTreatments Capability = "canManageTreatments"
	CapViewCalendar     Capability = "canViewCalendar"
	CapManageCalendar   Capability = "canManageCalendar"
	CapManageConsents   Capability = "canManageConsents"
	CapManagePromotions Capability = "canManagePromotions"
	CapManageUsers      Capability = "canManageUsers"
)

// AllCapabilities lists every capability in display order.
var AllCapabilities = []Capability{
	CapViewDashboard, CapViewPatients, CapCreatePatients, CapEditPatients,
	CapDeletePatients, CapViewTreatments, CapManageTreatments, CapViewCalendar,
	CapManageCalendar, CapManageConsents, CapManagePromotions, CapManageUsers,
}

// Capabilities is the fixed permission set of a role.
type Capabilities struct {
	CanViewDashboard    bool `json:"canViewDashboard"`
	CanViewPatients     bool `json:"canViewPatients"`
	CanCreatePatients   bool `json:"canCreatePatients"`
	CanEditPatients     bool `json:"canEditPatients"`
	CanDeletePatients   bool `json:"canDeletePatients"`
	CanViewTreatments   bool `json:"canViewTreatments"`
	CanManageTreatments bool `json:"canManageTreatments"`
	CanViewCalendar     bool `json:"canViewCalendar"`
	CanManageCalendar   bool `json:"canManageCalendar"`
	CanManageConsents   bool `json:"canManageConsents"`
	CanManagePromotions bool `json:"canManagePromotions"`
	CanManageUsers      bool `json:"canManageUsers"`
}

// Has reports whether the named capability is granted. Unknown names are not.
func (c Capabilities) Has(name Capability) bool {
	switch name {
	case CapViewDashboard:
		return c.CanViewDashboard
	case CapViewPatients:
		return c.CanViewPatients
	case CapCreatePatients:
		return c.CanCreatePatients
	case CapEditPatients:
		return c.CanEditPatients
	case CapDeletePatients:
		return c.CanDeletePatients
	case CapViewTreatments:
		return c.CanViewTreatments
	case CapManageTreatments:
		return c.CanManageTreatments
	case CapViewCalendar:
		return c.CanViewCalendar
	case CapManageCalendar:
		return c.CanManageCalendar
	case CapManageConsents:
		return c.CanManageConsents
	case CapManagePromotions:
		return c.CanManagePromotions
	case CapManageUsers:
		return c.CanManageUsers
	default:
		return false
	}
}

// Granted returns the names of the granted capabilities in display order.
func (c Capabilities) Granted() []Capability {
	out := make([]Capability, 0, len(AllCapabilities))
	for _, name := range AllCapabilities {
		if c.Has(name) {
			out = append(out, name)
		}
	}
	return out
}

var roleCapabilities = map[Role]Capabilities{
	RoleAdmin: {
		CanViewDashboard:    true,
		CanViewPatients:     true,
		CanCreatePatients:   true,
		CanEditPatients:     true,
		CanDeletePatients:   true,
		CanViewTreatments:   true,
		CanManageTreatments: true,
		CanViewCalendar:     true,
		CanManageCalendar:   true,
		CanManageConsents:   true,
		CanManagePromotions: true,
		CanManageUsers:      true,
	},
	RoleDoctor: {
		CanViewDashboard:    true,
		CanViewPatients:     true,
		CanCreatePatients:   true,
		CanEditPatients:     true,
		CanDeletePatients:   true,
		CanViewTreatments:   true,
		CanManageTreatments: true,
		CanViewCalendar:     true,
		CanManageCalendar:   true,
		CanManageConsents:   true,
		CanManagePromotions: true,
	},
	RoleStaff: {
		CanViewDashboard:  true,
		CanViewPatients:   true,
		CanCreatePatients: true,
		CanEditPatients:   true,
		CanViewTreatments: true,
		CanViewCalendar:   true,
		CanManageCalendar: true,
	},
}

// ResolvePermissions returns the capability set of role. Unknown or empty
// roles get the staff set.
func ResolvePermissions(role string) Capabilities {
	return roleCapabilities[NormalizeRole(role)]
}

// RouteRule binds a client route to the capability it requires.
type RouteRule struct {
	Path       string
	Capability Capability
}

// routeTable is matched in order. Nested routes that need a different
// capability than their parent must come before it.
var routeTable = []RouteRule{
	{"/dashboard", CapViewDashboard},
	{"/patients/new", CapCreatePatients},
	{"/patients", CapViewPatients},
	{"/odontograms", CapViewPatients},
	{"/search", CapViewPatients},
	{"/treatments", CapViewTreatments},
	{"/completed-treatments", CapViewTreatments},
	{"/calendar", CapViewCalendar},
	{"/consents", CapManageConsents},
	{"/promotions", CapManagePromotions},
	{"/admin", CapManageUsers},
	{"/settings/users", CapManageUsers},
}

// RouteTable returns a copy of the route table in match order.
func RouteTable() []RouteRule {
	out := make([]RouteRule, len(routeTable))
	copy(out, routeTable)
	return out
}

// MatchRoute finds the rule governing path: an exact match first, then the
// first rule whose path is a prefix of path at a "/" boundary.
func MatchRoute(path string) (RouteRule, bool) {
	for _, r := range routeTable {
		if r.Path == path {
			return r, true
		}
	}
	for _, r := range routeTable {
		if strings.HasPrefix(path, r.Path+"/") {
			return r, true
		}
	}
	return RouteRule{}, false
}

// CanAccessRoute reports whether role may open path. Admins may open any
// path; other roles need the capability of the matching rule, and paths
// without a rule are denied.
func CanAccessRoute(role, path string) bool {
	if NormalizeRole(role) == RoleAdmin {
		return true
	}
	rule, ok := MatchRoute(path)
	if !ok {
		return false
	}
	return ResolvePermissions(role).Has(rule.Capability)
}
