package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskforge/backend/api/transport"
	"github.com/taskforge/backend/domain"
	"github.com/taskforge/backend/pkg/httpcontext"
	"github.com/taskforge/backend/repository"
	taskUC "github.com/taskforge/backend/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List own tasks
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) List(ctx *fasthttp.RequestCtx) {
	user := h.currentUser(ctx)
	if user == nil {
		return
	}

	filter := repository.TaskFilter{
		OwnerID:  user.ID,
		Search:   string(ctx.QueryArgs().Peek("search")),
		Priority: domain.Priority(ctx.QueryArgs().Peek("priority")),
		Limit:    parseInt(string(ctx.QueryArgs().Peek("limit")), 50),
		Offset:   parseInt(string(ctx.QueryArgs().Peek("offset")), 0),
	}
	if raw := string(ctx.QueryArgs().Peek("completed")); raw != "" {
		if completed, err := strconv.ParseBool(raw); err == nil {
			filter.Completed = &completed
		}
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		h.respondError(ctx, domain.NewError(domain.ErrCodeInvalid, "priority must be low, medium, or high"))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.List(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	h.respondSuccess(ctx, http.StatusOK, tasks, "tasks retrieved successfully")
}

// @Summary Create a task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) Create(ctx *fasthttp.RequestCtx) {
	user := h.currentUser(ctx)
	if user == nil {
		return
	}

	var req transport.TaskCreateRequest
	if !h.decode(ctx, &req) {
		return
	}

	due, ok := h.parseDueDate(ctx, req.DueDate)
	if !ok {
		return
	}

	task := &domain.Task{
		OwnerID:     user.ID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.Priority(req.Priority),
		DueDate:     due,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, task)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created, "task created successfully")
}

// @Summary Get a task by id
// @Tags tasks
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) Get(ctx *fasthttp.RequestCtx) {
	user := h.currentUser(ctx)
	if user == nil {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.Get(stdCtx, h.taskID(ctx), user.ID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task, "task retrieved successfully")
}

// @Summary Partially update a task
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) Update(ctx *fasthttp.RequestCtx) {
	user := h.currentUser(ctx)
	if user == nil {
		return
	}

	var req transport.TaskUpdateRequest
	if !h.decode(ctx, &req) {
		return
	}

	update := repository.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Priority != nil {
		priority := domain.Priority(*req.Priority)
		update.Priority = &priority
	}
	if req.DueDate != nil {
		due, ok := h.parseDueDate(ctx, *req.DueDate)
		if !ok {
			return
		}
		update.DueDate = due
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.Update(stdCtx, h.taskID(ctx), user.ID, update)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated, "task updated successfully")
}

// @Summary Delete a task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) Delete(ctx *fasthttp.RequestCtx) {
	user := h.currentUser(ctx)
	if user == nil {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, h.taskID(ctx), user.ID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{}, "task deleted successfully")
}

// @Summary Flip task completion
// @Tags tasks
// @Router /api/v1/tasks/{id}/toggle [post]
func (h *TaskHandler) Toggle(ctx *fasthttp.RequestCtx) {
	user := h.currentUser(ctx)
	if user == nil {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	toggled, err := h.uc.Toggle(stdCtx, h.taskID(ctx), user.ID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, toggled, "task completion toggled successfully")
}

// @Summary Completion statistics
// @Tags tasks
// @Router /api/v1/tasks/stats [get]
func (h *TaskHandler) Stats(ctx *fasthttp.RequestCtx) {
	user := h.currentUser(ctx)
	if user == nil {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	stats, err := h.uc.Stats(stdCtx, user.ID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, stats, "task stats retrieved successfully")
}

// @Summary Recent task activity
// @Tags tasks
// @Router /api/v1/tasks/activity [get]
func (h *TaskHandler) Activity(ctx *fasthttp.RequestCtx) {
	user := h.currentUser(ctx)
	if user == nil {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	entries, err := h.uc.RecentActivity(stdCtx, user.ID, parseInt(string(ctx.QueryArgs().Peek("limit")), 20))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if entries == nil {
		entries = []domain.ActivityEntry{}
	}
	h.respondSuccess(ctx, http.StatusOK, entries, "task activity retrieved successfully")
}

func (h *TaskHandler) taskID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue("id").(string)
	return id
}

func (h *TaskHandler) parseDueDate(ctx *fasthttp.RequestCtx, raw string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed, true
		}
	}
	h.respondError(ctx, domain.NewValidationError("request validation failed", []domain.FieldViolation{
		{Field: "dueDate", Message: "dueDate must be an ISO8601 date"},
	}))
	return nil, false
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
