package models

// Role represents the access level of a user account.
// It governs both the permission rule table and who receives asset alerts.
type Role string

const (
	// RoleAdmin has full access to every client, asset and user.
	RoleAdmin Role = "admin"
	// RoleTechnician manages clients and assets but not user accounts.
	RoleTechnician Role = "technician"
	// RoleClient can only see the data of the client it belongs to.
	RoleClient Role = "client"
	// RoleUnverified is assigned on registration and has no permissions until an admin verifies the account.
	RoleUnverified Role = "unverified"
)

// Roles lists every known role.
var Roles = []Role{RoleAdmin, RoleTechnician, RoleClient, RoleUnverified} //nolint:gochecknoglobals

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}

	return false
}

// IsStaff reports whether r belongs to the internal staff (admin or technician).
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleTechnician
}
