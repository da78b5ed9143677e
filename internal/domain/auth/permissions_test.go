package auth

import "testing"

func TestRolePermissionsSubset(t *testing.T) {
	allowed := map[string]struct{}{}
	for _, perm := range DefaultPermissions {
		allowed[perm] = struct{}{}
	}

	for role, perms := range RolePermissions {
		if len(perms) == 0 {
			t.Fatalf("role %s has no permissions", role)
		}
		for _, perm := range perms {
			if _, ok := allowed[perm]; !ok {
				t.Fatalf("role %s has unknown permission %s", role, perm)
			}
		}
	}
}

func TestDefaultPermissionsUnique(t *testing.T) {
	seen := map[string]struct{}{}
	for _, perm := range DefaultPermissions {
		if _, ok := seen[perm]; ok {
			t.Fatalf("duplicate permission %s", perm)
		}
		seen[perm] = struct{}{}
	}
}

func TestEveryRoleHasPermissions(t *testing.T) {
	for _, role := range Roles {
		if _, ok := RolePermissions[role]; !ok {
			t.Fatalf("role %s missing from permission table", role)
		}
	}
}

func TestOnlyApproversCanApprove(t *testing.T) {
	if HasPermission(RoleEmployee, PermLeaveApprove) {
		t.Fatal("employee must not approve leave")
	}
	for _, role := range []Role{RoleManager, RoleDean, RoleAdmin} {
		if !HasPermission(role, PermLeaveApprove) {
			t.Fatalf("%s should approve leave", role)
		}
	}
}

func TestParseRole(t *testing.T) {
	tests := map[string]Role{
		"admin":    RoleAdmin,
		" Admin ":  RoleAdmin,
		"DEAN":     RoleDean,
		"Manager":  RoleManager,
		"employee": RoleEmployee,
		"":         RoleEmployee,
		"intern":   RoleEmployee,
	}
	for input, want := range tests {
		if got := ParseRole(input); got != want {
			t.Fatalf("ParseRole(%q) = %s, want %s", input, got, want)
		}
	}
	if Role("intern").Valid() {
		t.Fatal("unexpected valid role")
	}
	if !RoleAdmin.GlobalScope() || RoleDean.GlobalScope() {
		t.Fatal("only admin has global scope")
	}
}

func TestAdminOnlyPermissions(t *testing.T) {
	for _, role := range Roles {
		for _, perm := range []string{PermAuditRead, PermJobsRun} {
			if got := HasPermission(role, perm); got != (role == RoleAdmin) {
				t.Fatalf("%s %s = %v", role, perm, got)
			}
		}
	}
}
