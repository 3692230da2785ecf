package capability

import "github.com/quayside/quayside-backend/pkg/enums"

// Capability names a single privileged operation on the ops surface.
type Capability string

const (
	PoolsLock       Capability = "pools:lock"
	ExceptionsClose Capability = "exceptions:close"
	LedgerWrite     Capability = "ledger:write"
	ReportsRead     Capability = "reports:read"
	ExportsRead     Capability = "exports:read"
	SLAOverride     Capability = "sla:override"
)

// grants maps each staff role to the capabilities it carries. Roles are not
// hierarchical; super_admin is enumerated explicitly.
var grants = map[enums.StaffRole]map[Capability]struct{}{
	enums.StaffRoleOpsViewer: toSet(
		ReportsRead,
	),
	enums.StaffRoleOpsAgent: toSet(
		ReportsRead,
		ExportsRead,
		ExceptionsClose,
		SLAOverride,
	),
	enums.StaffRoleOpsAdmin: toSet(
		ReportsRead,
		ExportsRead,
		ExceptionsClose,
		SLAOverride,
		PoolsLock,
		LedgerWrite,
	),
	enums.StaffRoleSuperAdmin: toSet(
		ReportsRead,
		ExportsRead,
		ExceptionsClose,
		SLAOverride,
		PoolsLock,
		LedgerWrite,
	),
}

// Allows reports whether the given role carries the capability.
func Allows(role enums.StaffRole, cap Capability) bool {
	set, ok := grants[role]
	if !ok {
		return false
	}
	_, ok = set[cap]
	return ok
}

// For returns the capability set granted to the role.
func For(role enums.StaffRole) []Capability {
	set, ok := grants[role]
	if !ok {
		return nil
	}
	out := make([]Capability, 0, len(set))
	for cap := range set {
		out = append(out, cap)
	}
	return out
}

func toSet(caps ...Capability) map[Capability]struct{} {
	set := make(map[Capability]struct{}, len(caps))
	for _, cap := range caps {
		set[cap] = struct{}{}
	}
	return set
}
