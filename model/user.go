// api/model/user.go
package model

import "time"

// AdminRole is the closed set of roles a named AdminUser can hold.
type AdminRole string

const (
	RoleSuperAdmin AdminRole = "super-admin"
	RoleAdmin      AdminRole = "admin"
	RoleAuditor    AdminRole = "auditor"
	RoleApprover   AdminRole = "approver"
)

// AdminUser is a named human operator with a role and an optional team scope.
// The legacy process-wide admin_api_key is treated as an implicit super-admin
// with no database row (see middleware/auth_gate.go).
type AdminUser struct {
	AdminID      string    `json:"admin_id"`
	DisplayName  string    `json:"display_name"`
	CredentialHash string  `json:"-"`
	KeyPrefix    string    `json:"key_prefix"`
	Role         AdminRole `json:"role"`
	Team         string    `json:"team,omitempty"` // "" = all teams
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// RoleAtLeast reports whether this admin's role satisfies a minimum
// privilege requirement under the ordering super-admin > admin > approver > auditor.
func (a AdminUser) RoleAtLeast(min AdminRole) bool {
	rank := map[AdminRole]int{
		RoleAuditor:    1,
		RoleApprover:   2,
		RoleAdmin:      3,
		RoleSuperAdmin: 4,
	}
	return rank[a.Role] >= rank[min]
}
