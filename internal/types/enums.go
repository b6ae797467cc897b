package types

import (
	"fmt"
	"strings"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

// Project Status values
const (
	StatusActive    ProjectStatus = "active"
	StatusOnHold    ProjectStatus = "on_hold"
	StatusCompleted ProjectStatus = "completed"
)

// Valid status values, in display order
var ValidProjectStatuses = []ProjectStatus{
	StatusActive, StatusOnHold, StatusCompleted,
}

// projectStatusTransitions is the adjacency table of the status machine.
// A transition is allowed iff the target is listed under the current status.
var projectStatusTransitions = map[ProjectStatus][]ProjectStatus{
	StatusActive:    {StatusOnHold, StatusCompleted},
	StatusOnHold:    {StatusActive, StatusCompleted},
	StatusCompleted: {},
}

// TransitionError reports a rejected status change.
type TransitionError struct {
	From    ProjectStatus
	To      ProjectStatus
	Allowed []ProjectStatus
}

func (e *TransitionError) Error() string {
	allowed := "none (terminal state)"
	if len(e.Allowed) > 0 {
		names := make([]string, len(e.Allowed))
		for i, s := range e.Allowed {
			names[i] = string(s)
		}
		allowed = strings.Join(names, ", ")
	}
	return fmt.Sprintf("Cannot transition from '%s' to '%s'. Allowed transitions: %s", e.From, e.To, allowed)
}

func IsValidProjectStatus(status string) bool {
	_, ok := projectStatusTransitions[ProjectStatus(status)]
	return ok
}

// AllowedTransitions returns the statuses reachable from s in one step.
// The result is never nil and may be modified by the caller.
func AllowedTransitions(s ProjectStatus) []ProjectStatus {
	next := projectStatusTransitions[s]
	out := make([]ProjectStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether from -> to is an edge of the status machine.
func CanTransition(from, to ProjectStatus) bool {
	for _, s := range projectStatusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AttemptTransition returns nil when from -> to is allowed and a *TransitionError otherwise.
// Requesting the current status is not a no-op; it is rejected like any other missing edge.
func AttemptTransition(from, to ProjectStatus) error {
	if CanTransition(from, to) {
		return nil
	}
	return &TransitionError{
		From:    from,
		To:      to,
		Allowed: AllowedTransitions(from),
	}
}
