// Package service implements task CRUD guarded by the access decision and the
// status state machine. Every operation takes the acting identity explicitly;
// nothing is read from ambient request state.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"securetask/backend/internal/platform/rbac"
	"securetask/backend/internal/task/domain"
	userdomain "securetask/backend/internal/user/domain"
)

// Sentinel errors for the task service; handlers map them to HTTP statuses.
var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrAssigneeNotFound = errors.New("assignee not found")
	ErrAccessDenied     = rbac.ErrAccessDenied
	ErrValidation       = errors.New("validation failed")
	// ErrConflict is returned when an optimistic-version update matched no row.
	ErrConflict = errors.New("task was modified concurrently, retry with the latest version")
)

// Actor is the acting identity, passed explicitly through every operation.
type Actor struct {
	ID   string
	Role userdomain.Role
}

// TaskRepo is the minimal task repository needed by the task service.
type TaskRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByCreator(ctx context.Context, userID string) ([]*domain.Task, error)
	ListByAssignee(ctx context.Context, userID string) ([]*domain.Task, error)
	Create(ctx context.Context, t *domain.Task) error
	Update(ctx context.Context, t *domain.Task) (bool, error)
	Delete(ctx context.Context, id string) error
}

// UserRepo is the minimal user repository needed by the task service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// TaskService implements task operations for authenticated actors.
type TaskService struct {
	tasks TaskRepo
	users UserRepo
}

// NewTaskService returns a TaskService with the given dependencies.
func NewTaskService(tasks TaskRepo, users UserRepo) *TaskService {
	return &TaskService{tasks: tasks, users: users}
}

// CreateInput holds the fields for creating a task.
type CreateInput struct {
	Title       string
	Description string
	Priority    domain.Priority
	DueDate     *time.Time
	AssigneeID  *string
}

// UpdateInput holds the fields for a general update. Nil fields are left
// unchanged; a nil Status performs no transition check.
type UpdateInput struct {
	Title       *string
	Description *string
	Priority    *domain.Priority
	DueDate     *time.Time
	AssigneeID  *string
	Status      *domain.Status
}

// ListCreatedBy returns the actor's own created tasks. The query is scoped by
// the creator id, so no per-task authorization is needed.
func (s *TaskService) ListCreatedBy(ctx context.Context, actor Actor) ([]*domain.Task, error) {
	return s.tasks.ListByCreator(ctx, actor.ID)
}

// ListAssignedTo returns the actor's own assigned tasks.
func (s *TaskService) ListAssignedTo(ctx context.Context, actor Actor) ([]*domain.Task, error) {
	return s.tasks.ListByAssignee(ctx, actor.ID)
}

// ListCreatedByUser returns tasks created by an arbitrary user. Reserved for
// MANAGER and ADMIN actors.
func (s *TaskService) ListCreatedByUser(ctx context.Context, actor Actor, userID string) ([]*domain.Task, error) {
	if err := s.requireElevated(ctx, actor, userID); err != nil {
		return nil, err
	}
	return s.tasks.ListByCreator(ctx, userID)
}

// ListAssignedToUser returns tasks assigned to an arbitrary user. Reserved
// for MANAGER and ADMIN actors.
func (s *TaskService) ListAssignedToUser(ctx context.Context, actor Actor, userID string) ([]*domain.Task, error) {
	if err := s.requireElevated(ctx, actor, userID); err != nil {
		return nil, err
	}
	return s.tasks.ListByAssignee(ctx, userID)
}

// Get returns the task after the access check.
func (s *TaskService) Get(ctx context.Context, actor Actor, taskID string) (*domain.Task, error) {
	return s.getAuthorized(ctx, actor, taskID)
}

// Create persists a new task created by the actor with status TODO. An
// assignee, when given, must exist.
func (s *TaskService) Create(ctx context.Context, actor Actor, in CreateInput) (*domain.Task, error) {
	assigneeID, err := s.resolveAssignee(ctx, in.AssigneeID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	t := &domain.Task{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Description: in.Description,
		Status:      domain.StatusTodo,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		AssigneeID:  assigneeID,
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrValidation)
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Update applies a partial update after the access check. A status change
// goes through the state machine; an absent status performs no transition
// check. The write is version-guarded.
func (s *TaskService) Update(ctx context.Context, actor Actor, taskID string, in UpdateInput) (*domain.Task, error) {
	t, err := s.getAuthorized(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Priority != nil {
		t.Priority = *in.Priority
	}
	if in.DueDate != nil {
		t.DueDate = in.DueDate
	}
	if in.AssigneeID != nil {
		assigneeID, err := s.resolveAssignee(ctx, in.AssigneeID)
		if err != nil {
			return nil, err
		}
		t.AssigneeID = assigneeID
	}
	if in.Status != nil && *in.Status != t.Status {
		if err := domain.ValidateTransition(t.Status, *in.Status); err != nil {
			return nil, err
		}
		t.Status = *in.Status
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrValidation)
	}
	return s.save(ctx, t)
}

// UpdateStatus changes the task status through the state machine after the
// access check.
func (s *TaskService) UpdateStatus(ctx context.Context, actor Actor, taskID string, requested domain.Status) (*domain.Task, error) {
	if !requested.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", requested, ErrValidation)
	}
	t, err := s.getAuthorized(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateTransition(t.Status, requested); err != nil {
		return nil, err
	}
	t.Status = requested
	return s.save(ctx, t)
}

// Delete removes the task after the access check.
func (s *TaskService) Delete(ctx context.Context, actor Actor, taskID string) error {
	if _, err := s.getAuthorized(ctx, actor, taskID); err != nil {
		return err
	}
	return s.tasks.Delete(ctx, taskID)
}

func (s *TaskService) getAuthorized(ctx context.Context, actor Actor, taskID string) (*domain.Task, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTaskNotFound
	}
	if err := rbac.Authorize(actor.Role, t.CreatedBy, t.AssigneeID, actor.ID); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskService) save(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	t.UpdatedAt = time.Now().UTC()
	ok, err := s.tasks.Update(ctx, t)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	t.Version++
	return t, nil
}

func (s *TaskService) resolveAssignee(ctx context.Context, assigneeID *string) (*string, error) {
	if assigneeID == nil || *assigneeID == "" {
		return nil, nil
	}
	u, err := s.users.GetByID(ctx, *assigneeID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrAssigneeNotFound
	}
	id := u.ID
	return &id, nil
}

func (s *TaskService) requireElevated(ctx context.Context, actor Actor, userID string) error {
	if !actor.Role.IsElevated() {
		return ErrAccessDenied
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}
	return nil
}
