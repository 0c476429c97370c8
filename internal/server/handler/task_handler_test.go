package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"securetask/backend/internal/platform/rbac"
	"securetask/backend/internal/security"
	"securetask/backend/internal/server/middleware"
	"securetask/backend/internal/task/domain"
	taskservice "securetask/backend/internal/task/service"
	userdomain "securetask/backend/internal/user/domain"
)

type stubTasks struct {
	task      *domain.Task
	tasks     []*domain.Task
	err       error
	lastActor taskservice.Actor
}

func (s *stubTasks) ListCreatedBy(ctx context.Context, actor taskservice.Actor) ([]*domain.Task, error) {
	s.lastActor = actor
	return s.tasks, s.err
}

func (s *stubTasks) ListAssignedTo(ctx context.Context, actor taskservice.Actor) ([]*domain.Task, error) {
	s.lastActor = actor
	return s.tasks, s.err
}

func (s *stubTasks) ListCreatedByUser(ctx context.Context, actor taskservice.Actor, userID string) ([]*domain.Task, error) {
	s.lastActor = actor
	return s.tasks, s.err
}

func (s *stubTasks) ListAssignedToUser(ctx context.Context, actor taskservice.Actor, userID string) ([]*domain.Task, error) {
	s.lastActor = actor
	return s.tasks, s.err
}

func (s *stubTasks) Get(ctx context.Context, actor taskservice.Actor, taskID string) (*domain.Task, error) {
	s.lastActor = actor
	return s.task, s.err
}

func (s *stubTasks) Create(ctx context.Context, actor taskservice.Actor, in taskservice.CreateInput) (*domain.Task, error) {
	s.lastActor = actor
	return s.task, s.err
}

func (s *stubTasks) Update(ctx context.Context, actor taskservice.Actor, taskID string, in taskservice.UpdateInput) (*domain.Task, error) {
	s.lastActor = actor
	return s.task, s.err
}

func (s *stubTasks) UpdateStatus(ctx context.Context, actor taskservice.Actor, taskID string, requested domain.Status) (*domain.Task, error) {
	s.lastActor = actor
	return s.task, s.err
}

func (s *stubTasks) Delete(ctx context.Context, actor taskservice.Actor, taskID string) error {
	s.lastActor = actor
	return s.err
}

type stubLookup struct {
	user *userdomain.User
}

func (s *stubLookup) GetByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	if s.user != nil && s.user.Email == email {
		return s.user, nil
	}
	return nil, nil
}

const testSecret = "0123456789abcdef0123456789abcdef"

func newTaskRouter(t *testing.T, tasks TaskAPI, user *userdomain.User) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := security.NewTokenProvider([]byte(testSecret), "securetask", time.Minute)
	if err != nil {
		t.Fatalf("NewTokenProvider: %v", err)
	}
	access, _, err := tokens.Issue(user.Email, user.Role.Authority())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	h := NewTaskHandler(tasks, zap.NewNop())
	authn := middleware.NewAuthenticator(tokens, &stubLookup{user: user})

	r := gin.New()
	g := r.Group("/api/v1/tasks")
	g.Use(authn.RequireAuth())
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id/status", h.UpdateStatus)
	g.DELETE("/:id", h.Delete)
	return r, access
}

func doAuthed(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var testUser = &userdomain.User{ID: "u1", Email: "alice@example.com", Role: userdomain.RoleUser}

func TestTasks_RequireBearer(t *testing.T) {
	r, _ := newTaskRouter(t, &stubTasks{}, testUser)

	w := doAuthed(r, http.MethodGet, "/api/v1/tasks", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}

	w = doAuthed(r, http.MethodGet, "/api/v1/tasks", "not-a-jwt", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: status = %d, want 401", w.Code)
	}
}

func TestTasks_ActorResolvedFromToken(t *testing.T) {
	stub := &stubTasks{}
	r, token := newTaskRouter(t, stub, testUser)

	w := doAuthed(r, http.MethodGet, "/api/v1/tasks", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", w.Code, w.Body.String())
	}
	if stub.lastActor.ID != "u1" || stub.lastActor.Role != userdomain.RoleUser {
		t.Errorf("actor = %+v, want u1/USER", stub.lastActor)
	}
}

func TestGetTask_OK(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	stub := &stubTasks{task: &domain.Task{
		ID: "t1", Title: "report", Status: domain.StatusTodo,
		CreatedBy: "u1", CreatedAt: now, UpdatedAt: now,
	}}
	r, token := newTaskRouter(t, stub, testUser)

	w := doAuthed(r, http.MethodGet, "/api/v1/tasks/t1", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", w.Code, w.Body.String())
	}
	var resp taskResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.ID != "t1" || resp.Status != "TODO" || resp.CreatedBy != "u1" {
		t.Errorf("unexpected body: %+v", resp)
	}
}

func TestGetTask_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", taskservice.ErrTaskNotFound, http.StatusNotFound},
		{"denied", rbac.ErrAccessDenied, http.StatusForbidden},
		{"conflict", taskservice.ErrConflict, http.StatusConflict},
		{"transition", &domain.InvalidTransitionError{From: domain.StatusDone, To: domain.StatusDone}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, token := newTaskRouter(t, &stubTasks{err: tc.err}, testUser)
			w := doAuthed(r, http.MethodGet, "/api/v1/tasks/t1", token, "")
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestCreateTask_Created(t *testing.T) {
	now := time.Now().UTC()
	stub := &stubTasks{task: &domain.Task{ID: "t1", Title: "report", Status: domain.StatusTodo, CreatedBy: "u1", CreatedAt: now, UpdatedAt: now}}
	r, token := newTaskRouter(t, stub, testUser)

	w := doAuthed(r, http.MethodPost, "/api/v1/tasks", token, `{"title":"report","priority":"HIGH"}`)
	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201; body %s", w.Code, w.Body.String())
	}
}

func TestCreateTask_MissingTitle(t *testing.T) {
	r, token := newTaskRouter(t, &stubTasks{}, testUser)
	w := doAuthed(r, http.MethodPost, "/api/v1/tasks", token, `{"description":"no title"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUpdateStatus_BadTransitionBody(t *testing.T) {
	r, token := newTaskRouter(t, &stubTasks{}, testUser)
	w := doAuthed(r, http.MethodPatch, "/api/v1/tasks/t1/status", token, `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestDeleteTask_NoContent(t *testing.T) {
	r, token := newTaskRouter(t, &stubTasks{}, testUser)
	w := doAuthed(r, http.MethodDelete, "/api/v1/tasks/t1", token, "")
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
}
