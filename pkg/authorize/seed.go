package authorize

import (
	"context"
	"log/slog"
	"slices"
)

type grant struct {
	Object  Resource
	Actions []Action
}

// capabilityGrants is the API side of each capability. Policies are derived
// from it and the role table so the two can never disagree.
var capabilityGrants = map[Capability][]grant{
	CapViewDashboard: {
		{ResourceDashboard, []Action{ActionRead}},
		{ResourcePromotion, []Action{ActionRead, ActionList}},
	},
	CapViewPatients: {
		{ResourcePatient, []Action{ActionRead, ActionList}},
		{ResourcePatientFile, []Action{ActionRead}},
		{ResourceOdontogram, []Action{ActionRead, ActionList}},
		{ResourceConsent, []Action{ActionRead, ActionList}},
		{ResourceCompletedTreatment, []Action{ActionRead, ActionList}},
		{ResourceSearch, []Action{ActionRead}},
	},
	CapCreatePatients: {
		{ResourcePatient, []Action{ActionCreate}},
	},
	CapEditPatients: {
		{ResourcePatient, []Action{ActionUpdate}},
		{ResourcePatientFile, []Action{ActionCreate, ActionDelete}},
		{ResourceOdontogram, []Action{ActionCreate}},
		{ResourceCompletedTreatment, []Action{ActionCreate}},
	},
	CapDeletePatients: {
		{ResourcePatient, []Action{ActionDelete}},
		{ResourceCompletedTreatment, []Action{ActionDelete}},
	},
	CapViewTreatments: {
		{ResourceTreatment, []Action{ActionRead, ActionList}},
	},
	CapManageTreatments: {
		{ResourceTreatment, []Action{ActionManage}},
	},
	CapViewCalendar: {
		{ResourceCalendarEvent, []Action{ActionRead, ActionList}},
	},
	CapManageCalendar: {
		{ResourceCalendarEvent, []Action{ActionManage}},
	},
	CapManageConsents: {
		{ResourceConsent, []Action{ActionCreate, ActionSign}},
	},
	CapManagePromotions: {
		{ResourcePromotion, []Action{ActionManage}},
	},
	CapManageUsers: {
		{ResourceUser, []Action{ActionManage}},
	},
}

// everyoneGrants are held by every signed-in role.
var everyoneGrants = []grant{
	{ResourceNotification, []Action{ActionRead, ActionList, ActionUpdate}},
}

// DefaultPolicies expands the role capability table into Casbin permission rows.
// Admins are covered by a wildcard row on top of the enforcer's own bypass.
func DefaultPolicies() []PermissionPolicy {
	policies := []PermissionPolicy{
		{RoleAdmin, WildcardResource, WildcardAction, EffectAllow},
	}

	roles := []Role{RoleDoctor, RoleStaff}
	for _, role := range roles {
		caps := roleCapabilities[role]
		grants := slices.Clone(everyoneGrants)
		for _, name := range caps.Granted() {
			grants = append(grants, capabilityGrants[name]...)
		}
		for _, g := range grants {
			for _, act := range g.Actions {
				p := PermissionPolicy{role, g.Object, act, EffectAllow}
				if !slices.Contains(policies, p) {
					policies = append(policies, p)
				}
			}
		}
	}
	return policies
}

// SeedDefaultPolicies sets up the baseline RBAC policies for the clinic.
func SeedDefaultPolicies(ctx context.Context, auth IAuthorization) error {
	logger := slog.Default()

	policies := DefaultPolicies()
	for _, p := range policies {
		added, err := auth.AddPermission(ctx, p.Subject, p.Object, p.Action, p.Effect)
		if err != nil {
			logger.Error("failed to add policy", "policy", p, "error", err)
			return err
		}
		if added {
			logger.Debug("added policy", "role", p.Subject, "resource", p.Object, "action", p.Action)
		}
	}

	logger.Info("seeded default RBAC policies", "count", len(policies))
	return nil
}
