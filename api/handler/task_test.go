package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/taskforge/backend/domain"
	"github.com/taskforge/backend/repository"
	taskUC "github.com/taskforge/backend/usecase/task"
)

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) GetOwned(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Task), args.Error(1)
}

func (m *MockTaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	args := m.Called(ctx, task)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) UpdateOwned(ctx context.Context, id, ownerID string, update repository.TaskUpdate) (*domain.Task, error) {
	args := m.Called(ctx, id, ownerID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) DeleteOwned(ctx context.Context, id, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

func (m *MockTaskRepository) ToggleOwned(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) Stats(ctx context.Context, ownerID string) (*domain.TaskStats, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaskStats), args.Error(1)
}

type noopActivity struct{}

func (noopActivity) Record(ctx context.Context, entry domain.ActivityEntry) error { return nil }
func (noopActivity) Recent(ctx context.Context, ownerID string, limit int) ([]domain.ActivityEntry, error) {
	return nil, nil
}
func (noopActivity) PruneOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	return 0, nil
}

func newTaskHandler(repo repository.TaskRepository) *TaskHandler {
	return NewTaskHandler(taskUC.New(repo, noopActivity{}, nil), nil, nil)
}

func asUser(ctx *fasthttp.RequestCtx, id string) {
	ctx.SetUserValue(UserCtxKey, &domain.User{ID: id, Username: "ada"})
}

func TestTaskListPassesOwnerScopedFilter(t *testing.T) {
	repo := new(MockTaskRepository)
	h := newTaskHandler(repo)

	completed := false
	repo.On("List", mock.Anything, repository.TaskFilter{
		OwnerID:   "u1",
		Search:    "report",
		Priority:  domain.PriorityHigh,
		Completed: &completed,
		Limit:     10,
		Offset:    5,
	}).Return([]domain.Task{{ID: "t1", OwnerID: "u1", Title: "quarterly report"}}, nil)

	ctx := makeCtx(http.MethodGet, "/api/v1/tasks?search=report&priority=high&completed=false&limit=10&offset=5", nil)
	asUser(ctx, "u1")
	h.List(ctx)

	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	repo.AssertExpectations(t)
}

func TestTaskListEmptyIsArray(t *testing.T) {
	repo := new(MockTaskRepository)
	h := newTaskHandler(repo)

	repo.On("List", mock.Anything, mock.AnythingOfType("repository.TaskFilter")).Return(nil, nil)

	ctx := makeCtx(http.MethodGet, "/api/v1/tasks", nil)
	asUser(ctx, "u1")
	h.List(ctx)

	env := parseEnvelope(t, ctx)
	assert.True(t, env.Success)
	assert.Equal(t, "[]", string(env.Data))
}

func TestTaskListRejectsBogusPriority(t *testing.T) {
	repo := new(MockTaskRepository)
	h := newTaskHandler(repo)

	ctx := makeCtx(http.MethodGet, "/api/v1/tasks?priority=urgent", nil)
	asUser(ctx, "u1")
	h.List(ctx)

	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestTaskListRequiresAuth(t *testing.T) {
	repo := new(MockTaskRepository)
	h := newTaskHandler(repo)

	ctx := makeCtx(http.MethodGet, "/api/v1/tasks", nil)
	h.List(ctx)

	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestTaskCreate(t *testing.T) {
	repo := new(MockTaskRepository)
	h := newTaskHandler(repo)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(task *domain.Task) bool {
		return task.OwnerID == "u1" && task.Title == "write report" &&
			task.Priority == domain.PriorityHigh && !task.Completed &&
			task.DueDate != nil && task.DueDate.Format("2006-01-02") == "2026-09-15"
	})).Return(&domain.Task{ID: "t1", OwnerID: "u1", Title: "write report", Priority: domain.PriorityHigh}, nil)

	ctx := makeCtx(http.MethodPost, "/api/v1/tasks", map[string]string{
		"title":    "write report",
		"priority": "high",
		"dueDate":  "2026-09-15",
	})
	asUser(ctx, "u1")
	h.Create(ctx)

	assert.Equal(t, http.StatusCreated, ctx.Response.StatusCode())
	repo.AssertExpectations(t)
}

func TestTaskCreateBadDueDate(t *testing.T) {
	repo := new(MockTaskRepository)
	h := newTaskHandler(repo)

	ctx := makeCtx(http.MethodPost, "/api/v1/tasks", map[string]string{
		"title":    "write report",
		"priority": "high",
		"dueDate":  "next tuesday",
	})
	asUser(ctx, "u1")
	h.Create(ctx)

	assert.Equal(t, http.StatusUnprocessableEntity, ctx.Response.StatusCode())
	env := parseEnvelope(t, ctx)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "dueDate", env.Errors[0].Field)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTaskCreateValidation(t *testing.T) {
	repo := new(MockTaskRepository)
	h := newTaskHandler(repo)

	ctx := makeCtx(http.MethodPost, "/api/v1/tasks", map[string]string{
		"title":    "ab",
		"priority": "urgent",
	})
	asUser(ctx, "u1")
	h.Create(ctx)

	assert.Equal(t, http.StatusUnprocessableEntity, ctx.Response.StatusCode())
	env := parseEnvelope(t, ctx)
	assert.Len(t, env.Errors, 2)
}

func TestTaskGetForeignTaskIsNotFound(t *testing.T) {
	repo := new(MockTaskRepository)
	h := newTaskHandler(repo)

	id := uuid.NewString()
	repo.On("GetOwned", mock.Anything, id, "u2").Return(nil, domain.ErrTaskNotFound)

	ctx := makeCtx(http.MethodGet, "/api/v1/tasks/"+id, nil)
	ctx.SetUserValue("id", id)
	asUser(ctx, "u2")
	h.Get(ctx)

	assert.Equal(t, http.StatusNotFound, ctx.Response.StatusCode())
	env := parseEnvelope(t, ctx)
	assert.False(t, env.Success)
}

func TestTaskGetMalformedID(t *testing.T) {
	repo := new(MockTaskRepository)
	h := newTaskHandler(repo)

	ctx := makeCtx(http.MethodGet, "/api/v1/tasks/not-a-uuid", nil)
	ctx.SetUserValue("id", "not-a-uuid")
	asUser(ctx, "u1")
	h.Get(ctx)

	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
	repo.AssertNotCalled(t, "GetOwned", mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskUpdatePartial(t *testing.T) {
	repo := new(MockTaskRepository)
	h := newTaskHandler(repo)

	id := uuid.NewString()
	title := "renamed"
	repo.On("UpdateOwned", mock.Anything, id, "u1", repository.TaskUpdate{Title: &title}).
		Return(&domain.Task{ID: id, OwnerID: "u1", Title: title}, nil)

	ctx := makeCtx(http.MethodPut, "/api/v1/tasks/"+id, map[string]string{"title": title})
	ctx.SetUserValue("id", id)
	asUser(ctx, "u1")
	h.Update(ctx)

	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	repo.AssertExpectations(t)
}

func TestTaskToggle(t *testing.T) {
	repo := new(MockTaskRepository)
	h := newTaskHandler(repo)

	id := uuid.NewString()
	repo.On("ToggleOwned", mock.Anything, id, "u1").
		Return(&domain.Task{ID: id, OwnerID: "u1", Title: "write report", Completed: true}, nil)

	ctx := makeCtx(http.MethodPost, "/api/v1/tasks/"+id+"/toggle", nil)
	ctx.SetUserValue("id", id)
	asUser(ctx, "u1")
	h.Toggle(ctx)

	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	env := parseEnvelope(t, ctx)
	var task domain.Task
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.True(t, task.Completed)
}

func TestTaskStats(t *testing.T) {
	repo := new(MockTaskRepository)
	h := newTaskHandler(repo)

	repo.On("Stats", mock.Anything, "u1").
		Return(&domain.TaskStats{Total: 4, Completed: 3, Pending: 1, CompletionRate: 0.75}, nil)

	ctx := makeCtx(http.MethodGet, "/api/v1/tasks/stats", nil)
	asUser(ctx, "u1")
	h.Stats(ctx)

	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	env := parseEnvelope(t, ctx)
	var stats domain.TaskStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 4, stats.Total)
	assert.InDelta(t, 0.75, stats.CompletionRate, 0.001)
}

func TestTaskDelete(t *testing.T) {
	repo := new(MockTaskRepository)
	h := newTaskHandler(repo)

	id := uuid.NewString()
	repo.On("DeleteOwned", mock.Anything, id, "u1").Return(nil)

	ctx := makeCtx(http.MethodDelete, "/api/v1/tasks/"+id, nil)
	ctx.SetUserValue("id", id)
	asUser(ctx, "u1")
	h.Delete(ctx)

	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	repo.AssertExpectations(t)
}
