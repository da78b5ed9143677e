// Package hierarchy resolves reporting lines over a roster snapshot.
//
// The manager graph is expected to be a forest but nothing enforces that, so
// every function here terminates on cyclic or self-referencing input and
// returns a partial result instead of failing.
package hierarchy

import "leaveportal/internal/domain/core"

// Subordinates returns the IDs of everyone reporting to managerID. With
// includeIndirect the result is the transitive closure; otherwise it holds
// direct reports only. IDs come back in discovery order, which callers should
// treat as unspecified. An unknown manager yields an empty result.
//
// Each manager ID is expanded at most once, so the walk is O(V+E) and bounded
// by the roster size even when the graph contains cycles. The root manager is
// never included in its own result.
func Subordinates(managerID string, employees []core.Employee, includeIndirect bool) []string {
	reports := indexReports(employees)

	visited := map[string]struct{}{}
	seen := map[string]struct{}{managerID: {}}
	out := []string{}

	stack := []string{managerID}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := visited[current]; ok {
			continue
		}
		visited[current] = struct{}{}

		for _, id := range reports[current] {
			if id == current {
				continue
			}
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
			if includeIndirect {
				stack = append(stack, id)
			}
		}
	}
	return out
}

// IsSubordinateOf reports whether employeeID reports to managerID directly or
// indirectly.
func IsSubordinateOf(employeeID, managerID string, employees []core.Employee) bool {
	for _, id := range Subordinates(managerID, employees, true) {
		if id == employeeID {
			return true
		}
	}
	return false
}

// WouldCycle reports whether making managerID the manager of employeeID would
// close a loop in the reporting lines.
func WouldCycle(employeeID, managerID string, employees []core.Employee) bool {
	return managerID == employeeID || IsSubordinateOf(managerID, employeeID, employees)
}

// TeamMembers maps the transitive subordinate set of managerID back to roster
// records, keeping roster order.
func TeamMembers(managerID string, employees []core.Employee) []core.Employee {
	return Select(employees, Set(Subordinates(managerID, employees, true)))
}

// Set converts a list of IDs into a membership set.
func Set(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

// Select keeps the employees whose ID is in ids, in roster order.
func Select(employees []core.Employee, ids map[string]struct{}) []core.Employee {
	out := make([]core.Employee, 0, len(ids))
	for _, emp := range employees {
		if _, ok := ids[emp.ID]; ok {
			out = append(out, emp)
		}
	}
	return out
}

// indexReports groups employee IDs by direct manager, preserving roster order
// within each group.
func indexReports(employees []core.Employee) map[string][]string {
	reports := make(map[string][]string, len(employees))
	for _, emp := range employees {
		if emp.ManagerID == nil {
			continue
		}
		reports[*emp.ManagerID] = append(reports[*emp.ManagerID], emp.ID)
	}
	return reports
}
