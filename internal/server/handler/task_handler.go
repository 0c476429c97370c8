package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"securetask/backend/internal/server/middleware"
	"securetask/backend/internal/task/domain"
	taskservice "securetask/backend/internal/task/service"
)

// TaskAPI is the task service surface used by the HTTP handlers.
type TaskAPI interface {
	ListCreatedBy(ctx context.Context, actor taskservice.Actor) ([]*domain.Task, error)
	ListAssignedTo(ctx context.Context, actor taskservice.Actor) ([]*domain.Task, error)
	ListCreatedByUser(ctx context.Context, actor taskservice.Actor, userID string) ([]*domain.Task, error)
	ListAssignedToUser(ctx context.Context, actor taskservice.Actor, userID string) ([]*domain.Task, error)
	Get(ctx context.Context, actor taskservice.Actor, taskID string) (*domain.Task, error)
	Create(ctx context.Context, actor taskservice.Actor, in taskservice.CreateInput) (*domain.Task, error)
	Update(ctx context.Context, actor taskservice.Actor, taskID string, in taskservice.UpdateInput) (*domain.Task, error)
	UpdateStatus(ctx context.Context, actor taskservice.Actor, taskID string, requested domain.Status) (*domain.Task, error)
	Delete(ctx context.Context, actor taskservice.Actor, taskID string) error
}

// TaskHandler exposes task CRUD and the status lifecycle over HTTP.
type TaskHandler struct {
	tasks  TaskAPI
	logger *zap.Logger
}

// NewTaskHandler returns a TaskHandler with the given dependencies.
func NewTaskHandler(tasks TaskAPI, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

type createTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	AssigneeID  *string    `json:"assigneeId"`
}

type updateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	AssigneeID  *string    `json:"assigneeId"`
	Status      *string    `json:"status"`
}

type statusUpdateRequest struct {
	NewStatus string `json:"newStatus" binding:"required"`
}

type taskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	AssigneeID  *string    `json:"assigneeId,omitempty"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Version     int64      `json:"version"`
}

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		AssigneeID:  t.AssigneeID,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Version:     t.Version,
	}
}

func toTaskResponses(tasks []*domain.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return out
}

func actorFrom(c *gin.Context) (taskservice.Actor, bool) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		return taskservice.Actor{}, false
	}
	return taskservice.Actor{ID: id.UserID, Role: id.Role}, true
}

// List handles GET /api/v1/tasks, the caller's own created tasks.
func (h *TaskHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	tasks, err := h.tasks.ListCreatedBy(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponses(tasks))
}

// ListAssigned handles GET /api/v1/tasks/assigned, the caller's own assigned tasks.
func (h *TaskHandler) ListAssigned(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	tasks, err := h.tasks.ListAssignedTo(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponses(tasks))
}

// ListForUser handles GET /api/v1/users/:id/tasks, restricted to elevated roles.
func (h *TaskHandler) ListForUser(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	tasks, err := h.tasks.ListCreatedByUser(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponses(tasks))
}

// ListAssignedForUser handles GET /api/v1/users/:id/tasks/assigned, restricted
// to elevated roles.
func (h *TaskHandler) ListAssignedForUser(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	tasks, err := h.tasks.ListAssignedToUser(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponses(tasks))
}

// Get handles GET /api/v1/tasks/:id.
func (h *TaskHandler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	t, err := h.tasks.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(t))
}

// Create handles POST /api/v1/tasks.
func (h *TaskHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "title is required")
		return
	}
	t, err := h.tasks.Create(c.Request.Context(), actor, taskservice.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.Priority(req.Priority),
		DueDate:     req.DueDate,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toTaskResponse(t))
}

// Update handles PUT /api/v1/tasks/:id with partial semantics: absent fields
// are left unchanged.
func (h *TaskHandler) Update(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request body must be valid JSON")
		return
	}
	in := taskservice.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		AssigneeID:  req.AssigneeID,
	}
	if req.Priority != nil {
		p := domain.Priority(*req.Priority)
		in.Priority = &p
	}
	if req.Status != nil {
		s := domain.Status(*req.Status)
		in.Status = &s
	}
	t, err := h.tasks.Update(c.Request.Context(), actor, c.Param("id"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(t))
}

// UpdateStatus handles PATCH /api/v1/tasks/:id/status.
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "newStatus is required")
		return
	}
	t, err := h.tasks.UpdateStatus(c.Request.Context(), actor, c.Param("id"), domain.Status(req.NewStatus))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(t))
}

// Delete handles DELETE /api/v1/tasks/:id.
func (h *TaskHandler) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	if err := h.tasks.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
