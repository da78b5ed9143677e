package shared

import (
	"net/http"
	"net/mail"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"leaveportal/internal/domain/auth"
	"leaveportal/internal/domain/leave"
	"leaveportal/internal/transport/http/api"
)

// ValidationIssue names one rejected field in a validation_error envelope.
type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Validator collects field issues for a single payload. Every rule is a no-op
// on a value it does not own; Required is the only rule that rejects blanks.
type Validator struct {
	issues []ValidationIssue
}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) Add(field, reason string) {
	if reason == "" {
		return
	}
	v.issues = append(v.issues, ValidationIssue{Field: field, Reason: reason})
}

func (v *Validator) Required(field, value, reason string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, reason)
	}
}

// MaxLen counts characters, not bytes, so Arabic text gets the same limit as
// English.
func (v *Validator) MaxLen(field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		v.Add(field, "must be at most "+strconv.Itoa(max)+" characters")
	}
}

func (v *Validator) MinLen(field, value string, min int) {
	if value != "" && utf8.RuneCountInString(value) < min {
		v.Add(field, "must be at least "+strconv.Itoa(min)+" characters")
	}
}

func (v *Validator) Email(field, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		v.Add(field, "must be a valid email address")
	}
}

func (v *Validator) Date(field, raw string) (time.Time, bool) {
	parsed, err := ParseDate(strings.TrimSpace(raw))
	if err != nil || parsed.IsZero() {
		v.Add(field, "must be a valid date in YYYY-MM-DD format")
		return time.Time{}, false
	}
	return parsed, true
}

// OptionalDate is Date for fields that may be left out; a blank value is nil.
func (v *Validator) OptionalDate(field, raw string) *time.Time {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parsed, ok := v.Date(field, raw)
	if !ok {
		return nil
	}
	return &parsed
}

func (v *Validator) DateOrder(startField string, start time.Time, endField string, end time.Time) {
	if start.IsZero() || end.IsZero() {
		return
	}
	if end.Before(start) {
		v.Add(startField, "must be on or before "+endField)
		v.Add(endField, "must be on or after "+startField)
	}
}

// OneOf accepts value case-insensitively when it matches one of allowed.
func (v *Validator) OneOf(field, value string, allowed ...string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	for _, candidate := range allowed {
		if strings.EqualFold(value, candidate) {
			return
		}
	}
	v.Add(field, "must be "+strings.Join(allowed, " or "))
}

func (v *Validator) VacationType(field, raw string) (leave.VacationType, bool) {
	if strings.TrimSpace(raw) == "" {
		v.Add(field, "is required")
		return "", false
	}
	vt, ok := leave.ParseVacationType(raw)
	if !ok {
		v.Add(field, "is not a supported vacation type")
	}
	return vt, ok
}

// Status parses a request status. Pending is only accepted as a filter; no
// transition may lead back to it.
func (v *Validator) Status(field, raw string, allowPending bool) (leave.Status, bool) {
	status, ok := leave.ParseStatus(raw)
	switch {
	case !ok && allowPending:
		v.Add(field, "is not a known status")
	case !ok, status == leave.StatusPending && !allowPending:
		v.Add(field, "must be Approved, Rejected or Cancelled")
		return "", false
	}
	return status, ok
}

// Role accepts only the four portal roles. ParseRole would silently demote an
// unknown value, which is right for stored data but wrong for admin input.
func (v *Validator) Role(field, raw string) (auth.Role, bool) {
	role := auth.Role(strings.ToLower(strings.TrimSpace(raw)))
	if !role.Valid() {
		v.Add(field, "must be one of admin, dean, manager, employee")
		return "", false
	}
	return role, true
}

func (v *Validator) NonNegative(field string, value float64) {
	if value < 0 {
		v.Add(field, "must not be negative")
	}
}

func (v *Validator) HasIssues() bool {
	return len(v.issues) > 0
}

// Issues returns the collected issues ordered by field, then reason.
func (v *Validator) Issues() []ValidationIssue {
	if len(v.issues) == 0 {
		return nil
	}
	out := append([]ValidationIssue(nil), v.issues...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Field == out[j].Field {
			return out[i].Reason < out[j].Reason
		}
		return out[i].Field < out[j].Field
	})
	return out
}

// Reject writes the validation envelope when any rule failed and reports
// whether it did.
func (v *Validator) Reject(w http.ResponseWriter, requestID string) bool {
	if !v.HasIssues() {
		return false
	}
	FailValidation(w, requestID, v.Issues())
	return true
}

// FailField rejects a request over a single field.
func FailField(w http.ResponseWriter, requestID, field, reason string) {
	FailValidation(w, requestID, []ValidationIssue{{Field: field, Reason: reason}})
}

func FailValidation(w http.ResponseWriter, requestID string, issues []ValidationIssue) {
	api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "payload validation failed",
		map[string]any{"fields": issues}, requestID)
}
