// Copyright (c) 2026 Revu. All rights reserved.
// Author: d.okoshkin.dev@gmail.com

/*
Package policy implements the authorization engine for the Revu API.

Every request is mapped to a (capabilities, action, resource, ownership)
tuple and evaluated by [Decide], a pure function with no side effects and no
dependency on HTTP or storage. Services translate a Deny into
[apperr.Forbidden]; the engine itself never produces errors.

Policy summary:

  - Safe actions (list, retrieve) are open to everyone, for every catalogue
    and social resource. This is a deliberate open-read design.
  - Category, Genre and Title writes are admin-only.
  - Review and Comment writes are granted to the authenticated owner or an
    admin; moderators hold a delete-only grant and may NOT edit other
    members' content.
  - The administrative user directory requires an authenticated admin for
    every action, reads included.
  - The self-profile resource is available to any authenticated caller.
*/
package policy

import "github.com/okoshkin/revu/internal/platform/sec"

// # Action Classification

// Action is the request-level operation class, independent of transport
// syntax. List/Retrieve are safe; everything else mutates state.
type Action int

const (
	ActionList Action = iota
	ActionRetrieve
	ActionCreate
	ActionUpdate
	ActionPartialUpdate
	ActionDelete
)

// Safe reports whether the action is read-only.
func (a Action) Safe() bool {
	return a == ActionList || a == ActionRetrieve
}

// String returns the lowercase action name for logging.
func (a Action) String() string {
	switch a {
	case ActionList:
		return "list"
	case ActionRetrieve:
		return "retrieve"
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionPartialUpdate:
		return "partial_update"
	case ActionDelete:
		return "delete"
	}
	return "unknown"
}

// # Resource Kinds

// Resource identifies the kind of object a policy decision applies to.
type Resource int

const (
	ResourceCategory Resource = iota
	ResourceGenre
	ResourceTitle
	ResourceReview
	ResourceComment
	ResourceUserAdmin
	ResourceSelf
)

// # Ownership

// Ownership describes the relation between the caller and the target object.
type Ownership int

const (
	// OwnershipUnknown is used for collection-level checks (list, create)
	// where no concrete object has been located yet.
	OwnershipUnknown Ownership = iota

	// OwnershipOwner means the caller authored the target object.
	OwnershipOwner

	// OwnershipOther means the target object belongs to someone else.
	OwnershipOther
)

// # Capabilities

// Capabilities is the derived, request-scoped view of the caller's identity.
// An anonymous caller yields the zero value (all false).
type Capabilities struct {
	Authenticated bool
	Admin         bool
	Moderator     bool
}

// CapabilitiesFromClaims derives [Capabilities] from verified JWT claims.
//
// The role claim already folds in the account-level predicates (an inactive
// account never receives a token, and a superuser is issued the admin role),
// so this derivation is a pure role check.
func CapabilitiesFromClaims(claims *sec.AuthClaims) Capabilities {
	if claims == nil {
		return Capabilities{}
	}
	return Capabilities{
		Authenticated: true,
		Admin:         sec.UserRole(claims.Role) == sec.RoleAdmin,
		Moderator:     sec.UserRole(claims.Role) == sec.RoleModerator,
	}
}

// # Decision

// Decision is the outcome of a policy evaluation.
type Decision int

const (
	Deny Decision = iota
	Allow
)

// Allowed reports whether the decision grants access.
func (d Decision) Allowed() bool { return d == Allow }

// Decide evaluates the access policy for a single request.
//
// The clauses below are pure predicates combined with a short-circuit OR, so
// evaluation order carries no semantic weight. For single-object unsafe
// actions the caller is expected to invoke Decide twice: once at the
// collection level (ownership unknown) before the object is located, and
// once with the concrete object's ownership.
func Decide(caps Capabilities, action Action, resource Resource, ownership Ownership) Decision {

	// The user directory is the one resource without open reads.
	if resource == ResourceUserAdmin {
		if caps.Authenticated && caps.Admin {
			return Allow
		}
		return Deny
	}

	// Self-profile access only requires authentication. Role preservation on
	// self-update is enforced by the account service, not here.
	if resource == ResourceSelf {
		if caps.Authenticated {
			return Allow
		}
		return Deny
	}

	// Open-read policy: safe actions are always allowed.
	if action.Safe() {
		return Allow
	}

	switch resource {
	case ResourceCategory, ResourceGenre, ResourceTitle:
		// Catalogue mutations are reserved for admins.
		if caps.Admin {
			return Allow
		}
		return Deny

	case ResourceReview, ResourceComment:
		return decideSocial(caps, action, ownership)
	}

	return Deny
}

// decideSocial evaluates unsafe actions on member-authored content.
func decideSocial(caps Capabilities, action Action, ownership Ownership) Decision {

	// Ownership alone never grants access; an anonymous caller is rejected
	// before any object is even located.
	if !caps.Authenticated {
		return Deny
	}

	if caps.Admin {
		return Allow
	}

	// Collection-level gate: any authenticated member may attempt a create;
	// object-level actions are re-checked below once ownership is known.
	if action == ActionCreate || ownership == OwnershipUnknown {
		return Allow
	}

	if ownership == OwnershipOwner {
		return Allow
	}

	// Moderators hold a delete-only grant on other members' content.
	// They may not edit it; the asymmetry is intentional.
	if caps.Moderator && action == ActionDelete {
		return Allow
	}

	return Deny
}
