package leave

import (
	"strings"

	"leaveportal/internal/domain/auth"
	"leaveportal/internal/domain/core"
	"leaveportal/internal/domain/hierarchy"
)

// Scope is the set of employees whose leave a viewer may see and act on.
// Admins get everyone but themselves; every other role gets its direct and
// indirect reports.
type Scope struct {
	ViewerID string
	Global   bool
	members  map[string]struct{}
}

func NewScope(viewer auth.UserContext, employees []core.Employee) Scope {
	scope := Scope{ViewerID: viewer.EmployeeID, Global: viewer.Role.GlobalScope()}
	if scope.Global {
		scope.members = make(map[string]struct{}, len(employees))
		for _, emp := range employees {
			if emp.ID != viewer.EmployeeID {
				scope.members[emp.ID] = struct{}{}
			}
		}
		return scope
	}
	if viewer.EmployeeID == "" {
		scope.members = map[string]struct{}{}
		return scope
	}
	scope.members = hierarchy.Set(hierarchy.Subordinates(viewer.EmployeeID, employees, true))
	return scope
}

func (s Scope) Contains(employeeID string) bool {
	_, ok := s.members[employeeID]
	return ok
}

func (s Scope) Size() int {
	return len(s.members)
}

// Members returns the in-scope employees in roster order.
func (s Scope) Members(employees []core.Employee) []core.Employee {
	return hierarchy.Select(employees, s.members)
}

// PendingApprovals keeps the pending requests filed by in-scope employees.
func PendingApprovals(scope Scope, requests []Request) []Request {
	out := []Request{}
	for _, req := range requests {
		if req.Status == StatusPending && scope.Contains(req.EmployeeID) {
			out = append(out, req)
		}
	}
	return out
}

// Conflicts returns the approved requests of other in-scope employees whose
// dates overlap target. The result annotates a review; it never blocks one.
func Conflicts(target Request, requests []Request, scope Scope) []Request {
	out := []Request{}
	for _, other := range requests {
		if other.Status != StatusApproved {
			continue
		}
		if other.EmployeeID == target.EmployeeID || !scope.Contains(other.EmployeeID) {
			continue
		}
		if Overlaps(target.StartDate, target.EndDate, other.StartDate, other.EndDate) {
			out = append(out, other)
		}
	}
	return out
}

// ApprovalQueue pairs every pending in-scope request with its conflicts.
func ApprovalQueue(scope Scope, requests []Request) []Approval {
	pending := PendingApprovals(scope, requests)
	out := make([]Approval, 0, len(pending))
	for _, req := range pending {
		out = append(out, Approval{Request: req, Conflicts: Conflicts(req, requests, scope)})
	}
	return out
}

// CheckTransition validates a status change requested by viewer. Approvals
// and rejections need the request's employee in scope; cancellation is open
// to the request's own employee. Only pending requests may change.
func CheckTransition(viewer auth.UserContext, scope Scope, req Request, next Status, reason string) error {
	if req.Status != StatusPending {
		return ErrInvalidState
	}
	switch next {
	case StatusApproved, StatusRejected:
		if !scope.Contains(req.EmployeeID) {
			return ErrForbidden
		}
		if next == StatusRejected && strings.TrimSpace(reason) == "" {
			return ErrReasonRequired
		}
		return nil
	case StatusCancelled:
		if req.EmployeeID != viewer.EmployeeID && !scope.Contains(req.EmployeeID) {
			return ErrForbidden
		}
		return nil
	default:
		return ErrInvalidState
	}
}

// Visible returns the requests viewer may list: their own plus everything
// filed inside their scope.
func Visible(viewer auth.UserContext, scope Scope, requests []Request) []Request {
	out := []Request{}
	for _, req := range requests {
		if req.EmployeeID == viewer.EmployeeID || scope.Contains(req.EmployeeID) {
			out = append(out, req)
		}
	}
	return out
}
