// Package rbac decides per-task access from explicit inputs. There is no
// ambient session state: callers pass the acting identity through every call
// boundary.
package rbac

import (
	"errors"

	userdomain "securetask/backend/internal/user/domain"
)

// ErrAccessDenied is returned when the acting user may not touch the task.
var ErrAccessDenied = errors.New("you don't have access to this task")

// Authorize permits the action when the acting user's role is ADMIN or
// MANAGER (role bypass), when they created the task, or when the task is
// assigned to them. Pure decision function: no lookups, no side effects.
// assigneeID is nil for unassigned tasks.
func Authorize(role userdomain.Role, creatorID string, assigneeID *string, actingID string) error {
	if role.IsElevated() {
		return nil
	}
	if actingID == creatorID {
		return nil
	}
	if assigneeID != nil && actingID == *assigneeID {
		return nil
	}
	return ErrAccessDenied
}
