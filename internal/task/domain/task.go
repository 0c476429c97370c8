package domain

import (
	"errors"
	"fmt"
	"time"
)

// Task is the core task entity. CreatedBy is set once at creation and never
// reassigned; AssigneeID is a mutable reference with no ownership semantics.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      Status
	Priority    Priority // empty when unset
	DueDate     *time.Time
	AssigneeID  *string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	// Version is the optimistic-lock counter, incremented on every update.
	Version int64
}

// Status is the task's lifecycle state.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Priority is the task's optional urgency level.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Valid reports whether p is a known priority. The empty priority is valid
// (priority is optional).
func (p Priority) Valid() bool {
	switch p {
	case "", PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// InvalidTransitionError reports an illegal status change, carrying the
// attempted (current, requested) pair.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

// ValidateTransition checks the status state machine: TODO may only move to
// IN_PROGRESS, IN_PROGRESS only to DONE, and DONE is terminal (DONE -> DONE
// included). The switch is exhaustive over the current status so a new status
// forces a visible update here.
func ValidateTransition(current, requested Status) error {
	var ok bool
	switch current {
	case StatusTodo:
		ok = requested == StatusInProgress
	case StatusInProgress:
		ok = requested == StatusDone
	case StatusDone:
		ok = false
	default:
		ok = false
	}
	if !ok {
		return &InvalidTransitionError{From: current, To: requested}
	}
	return nil
}

// Validate validates the task for persistence. Returns an error describing the first validation failure.
func (t *Task) Validate() error {
	if t.Title == "" {
		return errors.New("title is required")
	}
	if t.Status == "" {
		t.Status = StatusTodo
	}
	if !t.Status.Valid() {
		return fmt.Errorf("unknown status %q", t.Status)
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("unknown priority %q", t.Priority)
	}
	if t.CreatedBy == "" {
		return errors.New("creator is required")
	}
	return nil
}
