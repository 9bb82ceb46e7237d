// Package authz decides whether a resolved caller may perform an operation.
// It holds no state; every decision is a function of the caller and a Policy.
package authz

import (
	"errors"
	"slices"

	"github.com/yizeng/gab/gin/gorm/event-registration/internal/domain"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("not authorized")
)

type policyKind int

const (
	kindAuthenticated policyKind = iota
	kindRole
	kindOwnerOrRole
)

// Policy describes the capability an operation requires. The zero value
// requires an authenticated caller and nothing else.
type Policy struct {
	kind    policyKind
	ownerID string
	roles   []domain.Role
}

func Authenticated() Policy {
	return Policy{kind: kindAuthenticated}
}

// RequireRole allows callers holding any of roles.
func RequireRole(roles ...domain.Role) Policy {
	return Policy{kind: kindRole, roles: roles}
}

// RequireOwnerOrRole allows the owner of a resource, or callers holding any of roles.
func RequireOwnerOrRole(ownerID string, roles ...domain.Role) Policy {
	return Policy{kind: kindOwnerOrRole, ownerID: ownerID, roles: roles}
}

// OwnerOrAdmin is the predicate guarding event mutation and registration listing.
func OwnerOrAdmin(ownerID string) Policy {
	return RequireOwnerOrRole(ownerID, domain.RoleAdmin)
}

// Authorize returns ErrUnauthenticated when there is no caller and
// ErrForbidden when the caller does not satisfy p.
func Authorize(caller *domain.Identity, p Policy) error {
	if caller == nil || caller.ID == "" {
		return ErrUnauthenticated
	}

	switch p.kind {
	case kindAuthenticated:
		return nil
	case kindRole:
		if slices.Contains(p.roles, caller.Role) {
			return nil
		}
	case kindOwnerOrRole:
		if p.ownerID != "" && p.ownerID == caller.ID {
			return nil
		}
		if slices.Contains(p.roles, caller.Role) {
			return nil
		}
	}

	return ErrForbidden
}
