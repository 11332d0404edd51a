package host

import "context"

// Capabilities checked by the console
const (
	CapAdministrator = "administrator"
	CapManageOptions = "manage_options"
	CapUpdateCore    = "update_core"
)

// User is the authenticated caller of a request.
type User struct {
	ID    uint
	Login string
	Role  string
}

type userContextKey struct{}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, u)
}

// UserFromContext returns the caller stored by WithUser, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userContextKey{}).(*User)
	return u
}

// Authorizer answers capability checks for the caller in ctx.
type Authorizer interface {
	CurrentUserCan(ctx context.Context, capability string) bool
}

// RoleAuthorizer grants capabilities by role name.
type RoleAuthorizer struct {
	roles map[string]map[string]bool
}

// NewRoleAuthorizer returns the console's built-in role table.
func NewRoleAuthorizer() *RoleAuthorizer {
	return &RoleAuthorizer{roles: map[string]map[string]bool{
		"administrator": {
			CapAdministrator: true,
			CapManageOptions: true,
			CapUpdateCore:    true,
		},
		"editor": {
			"editor": true,
		},
	}}
}

// CurrentUserCan reports whether the caller holds capability. A role name is
// itself a capability, so CurrentUserCan(ctx, "administrator") is a role check.
func (a *RoleAuthorizer) CurrentUserCan(ctx context.Context, capability string) bool {
	u := UserFromContext(ctx)
	if u == nil {
		return false
	}
	return a.roles[u.Role][capability]
}
