package authorize

import "strings"

type Action string
type Resource string
type Role string

// ----------------------------
// Actions
// ----------------------------

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"

	// Power actions
	ActionManage Action = "manage" // CRUD + list

	// Consent signature
	ActionSign Action = "sign"
)

const (
	WildcardAction Action = "*"
)

var KnownActions = map[Action]struct{}{
	ActionCreate: {}, ActionRead: {}, ActionUpdate: {}, ActionDelete: {}, ActionList: {},
	ActionManage: {}, ActionSign: {},
}

// ----------------------------
// Resources
// ----------------------------

const (
	WildcardResource Resource = "*"

	// Identity
	ResourceUser Resource = "user"

	// Clinical records
	ResourcePatient            Resource = "patient"
	ResourcePatientFile        Resource = "patient_file"
	ResourceTreatment          Resource = "treatment"
	ResourceCompletedTreatment Resource = "completed_treatment"
	ResourceOdontogram         Resource = "odontogram"
	ResourceConsent            Resource = "consent"

	// Clinic operations
	ResourceCalendarEvent Resource = "calendar_event"
	ResourcePromotion     Resource = "promotion"
	ResourceNotification  Resource = "notification"
	ResourceDashboard     Resource = "dashboard"
	ResourceSearch        Resource = "search"
)

var KnownResources = map[Resource]struct{}{
	ResourceUser:    {},
	ResourcePatient: {}, ResourcePatientFile: {}, ResourceTreatment: {},
	ResourceCompletedTreatment: {}, ResourceOdontogram: {}, ResourceConsent: {},
	ResourceCalendarEvent: {}, ResourcePromotion: {}, ResourceNotification: {},
	ResourceDashboard: {}, ResourceSearch: {},
}

// ----------------------------
// Roles
// ----------------------------
//
// A user carries exactly one role tag. The tag is also the Casbin policy subject.

const (
	RoleAdmin  Role = "admin"
	RoleDoctor Role = "doctor"
	RoleStaff  Role = "staff"
)

var KnownRoles = map[Role]struct{}{
	RoleAdmin:  {},
	RoleDoctor: {},
	RoleStaff:  {},
}

// Spanish display names
var RoleDisplayNames = map[Role]string{
	RoleAdmin:  "Administrador",
	RoleDoctor: "Doctor",
	RoleStaff:  "Personal",
}

// ParseRole returns the role for s, or false when s is not a known tag.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	_, ok := KnownRoles[r]
	return r, ok
}

// NormalizeRole maps unknown or empty tags to the least privileged role.
func NormalizeRole(s string) Role {
	if r, ok := ParseRole(s); ok {
		return r
	}
	return RoleStaff
}

// ----------------------------
// Casbin tuple helpers
// ----------------------------

type PolicyEffect string

const (
	EffectAllow PolicyEffect = "allow"
	EffectDeny  PolicyEffect = "deny"
)

// Permission rows: p, role, resource, action, eft
type PermissionPolicy struct {
	Subject Role
	Object  Resource
	Action  Action
	Effect  PolicyEffect
}
