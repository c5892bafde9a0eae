// Package access resolves what an authenticated caller may do.
//
// Role-based behaviour is a lookup in a permission table keyed by Operation,
// not a property of user subtypes. Finer checks that depend on the target
// entity (ministry tagged on an issue, issue ownership, NGO verification) are
// made by the owning service after Authorize passes.
package access

import (
	"context"
	"slices"

	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
)

type Role string

const (
	RoleCitizen    Role = "citizen"
	RoleGovernment Role = "government"
	RoleNGO        Role = "ngo"
	RoleAdmin      Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleCitizen, RoleGovernment, RoleNGO, RoleAdmin:
		return true
	}
	return false
}

type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusSuspended
}

// Identity is the caller as seen by every core operation.
type Identity struct {
	UserID     id.UserID
	Role       Role
	Status     Status
	MinistryID *id.MinistryID
	NGOID      *id.NGOID
}

func (i *Identity) IsActive() bool {
	return i != nil && i.Status == StatusActive
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// OfficerOf reports whether the caller is a government officer of ministry m.
func (i *Identity) OfficerOf(m id.MinistryID) bool {
	return i != nil && i.Role == RoleGovernment && i.MinistryID != nil && *i.MinistryID == m
}

type Operation string

const (
	OpManageProfile       Operation = "profile.manage"
	OpReadNotifications   Operation = "notifications.read"
	OpCreateIssue         Operation = "issue.create"
	OpUpdateIssue         Operation = "issue.update"
	OpDeleteIssue         Operation = "issue.delete"
	OpVerifyIssue         Operation = "issue.verify"
	OpRespondIssue        Operation = "issue.respond"
	OpUpdateIssueStatus   Operation = "issue.status"
	OpClaimIssue          Operation = "issue.claim"
	OpUpdateClaim         Operation = "issue.claim.update"
	OpCloseIssue          Operation = "issue.close"
	OpViewMinistryIssues  Operation = "ministry.issues"
	OpManageMinistries    Operation = "ministry.manage"
	OpRegisterNGO         Operation = "ngo.register"
	OpManageNGOProfile    Operation = "ngo.profile"
	OpViewAvailableIssues Operation = "ngo.available"
	OpApproveNGO          Operation = "ngo.approve"
	OpManageUsers         Operation = "users.manage"
	OpActivateCrisis      Operation = "crisis.activate"
	OpViewAnalytics       Operation = "analytics.view"
)

var allRoles = []Role{RoleCitizen, RoleGovernment, RoleNGO, RoleAdmin}

// permissions is the single allow-list for every operation.
var permissions = map[Operation][]Role{
	OpManageProfile:       allRoles,
	OpReadNotifications:   allRoles,
	OpCreateIssue:         {RoleCitizen},
	OpUpdateIssue:         allRoles,
	OpDeleteIssue:         allRoles,
	OpVerifyIssue:         {RoleCitizen},
	OpRespondIssue:        {RoleGovernment},
	OpUpdateIssueStatus:   {RoleGovernment, RoleAdmin},
	OpClaimIssue:          {RoleNGO},
	OpUpdateClaim:         {RoleNGO},
	OpCloseIssue:          allRoles,
	OpViewMinistryIssues:  {RoleGovernment, RoleAdmin},
	OpManageMinistries:    {RoleAdmin},
	OpRegisterNGO:         {RoleCitizen},
	OpManageNGOProfile:    {RoleNGO},
	OpViewAvailableIssues: {RoleNGO},
	OpApproveNGO:          {RoleAdmin},
	OpManageUsers:         {RoleAdmin},
	OpActivateCrisis:      {RoleAdmin},
	OpViewAnalytics:       {RoleAdmin},
}

// Allowed lists the roles permitted to perform op.
func Allowed(op Operation) []Role {
	return slices.Clone(permissions[op])
}

// Authorize rejects unauthenticated callers, non-active accounts and roles
// outside op's allow-list. Unknown operations are denied.
func Authorize(identity *Identity, op Operation) error {
	if identity == nil || identity.UserID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if !identity.IsActive() {
		return dErrors.New(dErrors.CodeForbidden, "account is suspended")
	}
	if !slices.Contains(permissions[op], identity.Role) {
		return dErrors.New(dErrors.CodeForbidden, "role "+string(identity.Role)+" may not perform "+string(op))
	}
	return nil
}

type identityKey struct{}

// WithIdentity stores the resolved caller in ctx.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// FromContext returns the caller resolved by the auth middleware, if any.
func FromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*Identity)
	return identity, ok && identity != nil
}
