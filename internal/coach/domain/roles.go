// Package domain holds the coach engine's core types: roles and visibility
// scopes, the closed suggestion/feedback enumerations, the metric catalog,
// and the action variants. Everything here is storage- and transport-agnostic.
package domain

// Role identifies an actor's position in the driving-school organization.
// The set is closed; unknown role strings fail validation at the boundary.
type Role string

const (
	// RoleAdmin sees every branch.
	RoleAdmin Role = "admin"
	// RoleViewer is a read-mostly role with the same visibility as admin.
	RoleViewer Role = "viewer"
	// RoleBranchManager sees the branches they are assigned to.
	RoleBranchManager Role = "branch_manager"
	// RoleTelesales works an individual lead book.
	RoleTelesales Role = "telesales"
	// RoleDirectPage handles inbound page contacts individually.
	RoleDirectPage Role = "direct_page"
)

// ScopeClass describes how wide a role's visibility is.
type ScopeClass int

const (
	// ScopeClassSystem covers all branches.
	ScopeClassSystem ScopeClass = iota
	// ScopeClassBranch covers the actor's assigned branches.
	ScopeClassBranch
	// ScopeClassOwner covers only the actor's own records.
	ScopeClassOwner
)

var roleScopeClasses = map[Role]ScopeClass{
	RoleAdmin:         ScopeClassSystem,
	RoleViewer:        ScopeClassSystem,
	RoleBranchManager: ScopeClassBranch,
	RoleTelesales:     ScopeClassOwner,
	RoleDirectPage:    ScopeClassOwner,
}

// IsValid reports whether the role is part of the closed set.
func (r Role) IsValid() bool {
	_, ok := roleScopeClasses[r]
	return ok
}

// ScopeClass returns the visibility class for the role.
// Unknown roles default to the narrowest class.
func (r Role) ScopeClass() ScopeClass {
	if class, ok := roleScopeClasses[r]; ok {
		return class
	}
	return ScopeClassOwner
}

// Roles returns all valid roles. Used by validation messages and tests.
func Roles() []Role {
	return []Role{RoleAdmin, RoleViewer, RoleBranchManager, RoleTelesales, RoleDirectPage}
}
