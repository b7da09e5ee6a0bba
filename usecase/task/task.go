package task

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskforge/backend/domain"
	"github.com/taskforge/backend/repository"
)

type UseCase struct {
	tasks    repository.TaskRepository
	activity repository.ActivityRepository
	logger   *zap.Logger
}

func New(tasks repository.TaskRepository, activity repository.ActivityRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:    tasks,
		activity: activity,
		logger:   logger,
	}
}

func (uc *UseCase) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	return uc.tasks.List(ctx, filter)
}

func (uc *UseCase) Get(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	if !validID(id) {
		return nil, domain.ErrInvalidTaskID
	}
	return uc.tasks.GetOwned(ctx, id, ownerID)
}

func (uc *UseCase) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	uc.record(ctx, created, domain.ActivityCreated)
	return created, nil
}

func (uc *UseCase) Update(ctx context.Context, id, ownerID string, update repository.TaskUpdate) (*domain.Task, error) {
	if !validID(id) {
		return nil, domain.ErrInvalidTaskID
	}

	updated, err := uc.tasks.UpdateOwned(ctx, id, ownerID, update)
	if err != nil {
		return nil, err
	}
	uc.record(ctx, updated, domain.ActivityUpdated)
	return updated, nil
}

func (uc *UseCase) Delete(ctx context.Context, id, ownerID string) error {
	if !validID(id) {
		return domain.ErrInvalidTaskID
	}

	if err := uc.tasks.DeleteOwned(ctx, id, ownerID); err != nil {
		return err
	}
	uc.record(ctx, &domain.Task{ID: id, OwnerID: ownerID}, domain.ActivityDeleted)
	return nil
}

// Toggle flips the completed flag in a single owner-scoped statement.
func (uc *UseCase) Toggle(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	if !validID(id) {
		return nil, domain.ErrInvalidTaskID
	}

	toggled, err := uc.tasks.ToggleOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	action := domain.ActivityReopened
	if toggled.Completed {
		action = domain.ActivityCompleted
	}
	uc.record(ctx, toggled, action)
	return toggled, nil
}

func (uc *UseCase) Stats(ctx context.Context, ownerID string) (*domain.TaskStats, error) {
	return uc.tasks.Stats(ctx, ownerID)
}

func (uc *UseCase) RecentActivity(ctx context.Context, ownerID string, limit int) ([]domain.ActivityEntry, error) {
	if uc.activity == nil {
		return nil, nil
	}
	return uc.activity.Recent(ctx, ownerID, limit)
}

// record journals the mutation. Journal failures are logged, never surfaced:
// the task operation already succeeded.
func (uc *UseCase) record(ctx context.Context, task *domain.Task, action string) {
	if uc.activity == nil || task == nil {
		return
	}
	entry := domain.ActivityEntry{
		OwnerID: task.OwnerID,
		TaskID:  task.ID,
		Action:  action,
		Title:   task.Title,
	}
	if err := uc.activity.Record(ctx, entry); err != nil {
		uc.logger.Warn("failed to record task activity",
			zap.String("task_id", task.ID),
			zap.String("action", action),
			zap.Error(err))
	}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
