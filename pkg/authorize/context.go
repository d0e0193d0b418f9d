package authorize

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/reqctx"
)

var (
	ErrNoSubjectInContext = errors.New("no subject found in context")
)

// RoleFromContext returns the caller's role from the request claims.
// Unknown tags resolve to staff.
func RoleFromContext(ctx context.Context) (Role, error) {
	claims := reqctx.ClaimsFromContext(ctx)
	if claims == nil || claims.GetUserID() == uuid.Nil {
		return "", ErrNoSubjectInContext
	}
	return NormalizeRole(claims.GetRole()), nil
}

// UserIDFromContext extracts the user ID as uuid.UUID from context.
// Returns uuid.Nil and error if not found.
func UserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	claims := reqctx.ClaimsFromContext(ctx)
	if claims == nil || claims.GetUserID() == uuid.Nil {
		return uuid.Nil, ErrNoSubjectInContext
	}
	return claims.GetUserID(), nil
}

// CapabilitiesFromContext resolves the capability set of the caller.
func CapabilitiesFromContext(ctx context.Context) (Capabilities, error) {
	role, err := RoleFromContext(ctx)
	if err != nil {
		return Capabilities{}, err
	}
	return ResolvePermissions(string(role)), nil
}
