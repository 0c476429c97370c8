package repository

import (
	"context"

	"securetask/backend/internal/task/domain"
)

// Repository defines persistence for tasks.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByCreator(ctx context.Context, userID string) ([]*domain.Task, error)
	ListByAssignee(ctx context.Context, userID string) ([]*domain.Task, error)
	Create(ctx context.Context, t *domain.Task) error
	// Update writes the task guarded by its version counter and increments it.
	// Returns false when no row matched (stale version or deleted task).
	Update(ctx context.Context, t *domain.Task) (bool, error)
	Delete(ctx context.Context, id string) error
}
