package auth

const (
	PermEmployeesRead  = "employees.read"
	PermEmployeesWrite = "employees.write"
	PermUnitsRead      = "units.read"
	PermUnitsWrite     = "units.write"
	PermLeaveRead      = "leave.read"
	PermLeaveWrite     = "leave.write"
	PermLeaveApprove   = "leave.approve"
	PermReportsRead    = "reports.read"
	PermAuditRead      = "audit.read"
	PermJobsRun        = "jobs.run"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermUnitsRead,
	PermUnitsWrite,
	PermLeaveRead,
	PermLeaveWrite,
	PermLeaveApprove,
	PermReportsRead,
	PermAuditRead,
	PermJobsRun,
}

var RolePermissions = map[Role][]string{
	RoleEmployee: {
		PermEmployeesRead,
		PermUnitsRead,
		PermLeaveRead,
		PermLeaveWrite,
		PermReportsRead,
	},
	RoleManager: {
		PermEmployeesRead,
		PermUnitsRead,
		PermLeaveRead,
		PermLeaveWrite,
		PermLeaveApprove,
		PermReportsRead,
	},
	RoleDean: {
		PermEmployeesRead,
		PermUnitsRead,
		PermLeaveRead,
		PermLeaveWrite,
		PermLeaveApprove,
		PermReportsRead,
	},
	RoleAdmin: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermUnitsRead,
		PermUnitsWrite,
		PermLeaveRead,
		PermLeaveWrite,
		PermLeaveApprove,
		PermReportsRead,
		PermAuditRead,
		PermJobsRun,
	},
}

// HasPermission checks the static role table.
func HasPermission(role Role, permission string) bool {
	for _, perm := range RolePermissions[role] {
		if perm == permission {
			return true
		}
	}
	return false
}
