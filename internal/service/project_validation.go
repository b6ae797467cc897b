package service

import (
	"errors"
	"strings"
	"time"

	"github.com/Marga-Ghale/ora-project-tracker/internal/repository"
	"github.com/Marga-Ghale/ora-project-tracker/internal/types"
)

const DateLayout = "2006-01-02"

var errInvalidDate = errors.New("invalid date")

type CreateProjectInput struct {
	Name       string
	ClientName string
	StartDate  *string
	EndDate    *string
}

// UpdateProjectInput carries a partial update. Fields left unset are not touched;
// a date sent as null clears it.
type UpdateProjectInput struct {
	Name       types.OptionalString
	ClientName types.OptionalString
	StartDate  types.OptionalString
	EndDate    types.OptionalString
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
// For timestamps the date is taken as written, ignoring the offset.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, errInvalidDate
}

// validate checks a create request and returns the project to insert,
// without id, status or timestamps.
func (in CreateProjectInput) validate() (*repository.Project, error) {
	v := &ValidationError{}
	p := &repository.Project{
		Name:       strings.TrimSpace(in.Name),
		ClientName: strings.TrimSpace(in.ClientName),
	}

	if p.Name == "" {
		v.Add("name", "Project name is required")
	}
	if p.ClientName == "" {
		v.Add("clientName", "Client name is required")
	}

	var startOK, endOK bool
	p.StartDate, startOK = parseOptionalDate(in.StartDate, "startDate", v)
	p.EndDate, endOK = parseOptionalDate(in.EndDate, "endDate", v)

	if startOK && endOK {
		checkDateOrder(p.StartDate, p.EndDate, v)
	}

	if err := v.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

// changes converts the request into repository changes, collecting per-field errors.
func (in UpdateProjectInput) changes(v *ValidationError) (repository.ProjectChanges, bool) {
	var c repository.ProjectChanges
	ok := true

	if in.Name.Set {
		name := ""
		if in.Name.Value != nil {
			name = strings.TrimSpace(*in.Name.Value)
		}
		if name == "" {
			v.Add("name", "Project name cannot be empty")
			ok = false
		} else {
			c.Name = &name
		}
	}

	if in.ClientName.Set {
		client := ""
		if in.ClientName.Value != nil {
			client = strings.TrimSpace(*in.ClientName.Value)
		}
		if client == "" {
			v.Add("clientName", "Client name cannot be empty")
			ok = false
		} else {
			c.ClientName = &client
		}
	}

	if in.StartDate.Set {
		d, valid := parseOptionalDate(in.StartDate.Value, "startDate", v)
		c.StartDate = repository.DateChange{Set: true, Value: d}
		ok = ok && valid
	}
	if in.EndDate.Set {
		d, valid := parseOptionalDate(in.EndDate.Value, "endDate", v)
		c.EndDate = repository.DateChange{Set: true, Value: d}
		ok = ok && valid
	}

	return c, ok
}

// EffectiveProject returns the record as it would look after applying changes.
// stored is not modified.
func EffectiveProject(stored repository.Project, changes repository.ProjectChanges) repository.Project {
	out := stored
	if changes.Name != nil {
		out.Name = *changes.Name
	}
	if changes.ClientName != nil {
		out.ClientName = *changes.ClientName
	}
	if changes.StartDate.Set {
		out.StartDate = changes.StartDate.Value
	}
	if changes.EndDate.Set {
		out.EndDate = changes.EndDate.Value
	}
	return out
}

// ValidateStatus checks a requested status value before any lookup.
func ValidateStatus(status string) (types.ProjectStatus, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return "", NewValidationError("status", "Status is required")
	}
	if !types.IsValidProjectStatus(status) {
		return "", NewValidationError("status", statusEnumMessage())
	}
	return types.ProjectStatus(status), nil
}

func statusEnumMessage() string {
	names := make([]string, len(types.ValidProjectStatuses))
	for i, s := range types.ValidProjectStatuses {
		names[i] = string(s)
	}
	return "status must be one of: " + strings.Join(names, ", ")
}

func parseOptionalDate(s *string, field string, v *ValidationError) (*time.Time, bool) {
	if s == nil {
		return nil, true
	}
	d, err := ParseDate(*s)
	if err != nil {
		v.Add(field, field+" must be a valid ISO 8601 date")
		return nil, false
	}
	return &d, true
}

func checkDateOrder(start, end *time.Time, v *ValidationError) {
	if start != nil && end != nil && end.Before(*start) {
		v.Add("endDate", "endDate must be greater than or equal to startDate")
	}
}
