package enums

import "fmt"

// StaffRole identifies an operations console actor.
type StaffRole string

const (
	StaffRoleOpsViewer  StaffRole = "ops_viewer"
	StaffRoleOpsAgent   StaffRole = "ops_agent"
	StaffRoleOpsAdmin   StaffRole = "ops_admin"
	StaffRoleSuperAdmin StaffRole = "super_admin"
)

var validStaffRoles = []StaffRole{
	StaffRoleOpsViewer,
	StaffRoleOpsAgent,
	StaffRoleOpsAdmin,
	StaffRoleSuperAdmin,
}

func (s StaffRole) String() string {
	return string(s)
}

func (s StaffRole) IsValid() bool {
	for _, candidate := range validStaffRoles {
		if s == candidate {
			return true
		}
	}
	return false
}

func ParseStaffRole(value string) (StaffRole, error) {
	role := StaffRole(value)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid staff role: %q", value)
	}
	return role, nil
}
