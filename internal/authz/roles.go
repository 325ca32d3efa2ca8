package authz

const (
	RoleMember     = 10
	RoleEditor     = 20
	RoleMarketing  = 30
	RoleAudit      = 40
	RoleSuperAdmin = 50
)

// CanAccessDashboard reports whether the role may obtain an admin bearer
// token at all. Platform members and external contributors cannot.
func CanAccessDashboard(roleID int) bool {
	return roleID == RoleAudit || roleID == RoleSuperAdmin
}

func IsReadOnly(roleID int) bool {
	return roleID == RoleAudit
}
