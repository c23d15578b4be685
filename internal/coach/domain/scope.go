package domain

import (
	"kpi_coach_backend/platform/apperr"

	"github.com/google/uuid"
)

// ScopeMode is the resolved visibility mode for one request.
type ScopeMode string

const (
	// ScopeSystem covers all branches.
	ScopeSystem ScopeMode = "SYSTEM"
	// ScopeBranch covers a concrete branch set.
	ScopeBranch ScopeMode = "BRANCH"
	// ScopeOwner covers one user's own records, optionally branch-limited.
	ScopeOwner ScopeMode = "OWNER"
)

// Actor describes the caller as asserted by the auth token: who they are,
// what role they hold, and which branches they are assigned to.
type Actor struct {
	UserID    uuid.UUID
	Role      Role
	BranchIDs []uuid.UUID
}

// Scope is the visibility model computed per request. It is never persisted
// or cached: role and branch assignment can change between calls, so every
// operation re-resolves it from the actor.
type Scope struct {
	Mode      ScopeMode
	BranchIDs []uuid.UUID
	OwnerID   *uuid.UUID
}

// ResolveScope computes the actor's visibility scope. requestedBranch, when
// non-nil, narrows visibility to that single branch; the narrowing is only
// allowed if the branch is already visible to the actor, otherwise the call
// fails Forbidden. Deterministic and side-effect-free.
func ResolveScope(actor Actor, requestedBranch *uuid.UUID) (Scope, error) {
	if !actor.Role.IsValid() {
		return Scope{}, apperr.Forbidden("unknown role")
	}

	switch actor.Role.ScopeClass() {
	case ScopeClassSystem:
		if requestedBranch == nil {
			return Scope{Mode: ScopeSystem}, nil
		}
		// A system actor with explicit branch assignments may only narrow to
		// one of them; without assignments any branch is visible.
		if len(actor.BranchIDs) > 0 && !containsBranch(actor.BranchIDs, *requestedBranch) {
			return Scope{}, apperr.Forbidden("branch is outside your visibility")
		}
		return Scope{Mode: ScopeSystem, BranchIDs: []uuid.UUID{*requestedBranch}}, nil

	case ScopeClassBranch:
		if len(actor.BranchIDs) == 0 {
			return Scope{}, apperr.Forbidden("no branch assignment")
		}
		if requestedBranch != nil {
			if !containsBranch(actor.BranchIDs, *requestedBranch) {
				return Scope{}, apperr.Forbidden("branch is outside your visibility")
			}
			return Scope{Mode: ScopeBranch, BranchIDs: []uuid.UUID{*requestedBranch}}, nil
		}
		return Scope{Mode: ScopeBranch, BranchIDs: append([]uuid.UUID(nil), actor.BranchIDs...)}, nil

	default: // ScopeClassOwner
		owner := actor.UserID
		branches := append([]uuid.UUID(nil), actor.BranchIDs...)
		if requestedBranch != nil {
			if !containsBranch(actor.BranchIDs, *requestedBranch) {
				return Scope{}, apperr.Forbidden("branch is outside your visibility")
			}
			branches = []uuid.UUID{*requestedBranch}
		}
		return Scope{Mode: ScopeOwner, BranchIDs: branches, OwnerID: &owner}, nil
	}
}

// CoversBranch reports whether a record at the given branch (nil = broadcast,
// visible everywhere) falls inside the scope.
func (s Scope) CoversBranch(branchID *uuid.UUID) bool {
	if branchID == nil {
		return true
	}
	if s.Mode == ScopeSystem && len(s.BranchIDs) == 0 {
		return true
	}
	return containsBranch(s.BranchIDs, *branchID)
}

// CoversOwner reports whether a record owned by the given user (nil =
// broadcast) falls inside the scope. Only OWNER scopes restrict by owner.
func (s Scope) CoversOwner(ownerID *uuid.UUID) bool {
	if s.Mode != ScopeOwner || ownerID == nil {
		return true
	}
	return s.OwnerID != nil && *s.OwnerID == *ownerID
}

// Covers checks both the branch and owner dimensions at once.
func (s Scope) Covers(branchID, ownerID *uuid.UUID) bool {
	return s.CoversBranch(branchID) && s.CoversOwner(ownerID)
}

func containsBranch(ids []uuid.UUID, id uuid.UUID) bool {
	for _, item := range ids {
		if item == id {
			return true
		}
	}
	return false
}
