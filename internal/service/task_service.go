package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/platform/metrics"
	"github.com/phrazzld/tasker-api/internal/store"
)

// CreateTaskParams holds the fields of a new task.
type CreateTaskParams struct {
	Title       string
	Description string
}

// UpdateTaskParams holds the fields to change. Nil fields are left as they are.
type UpdateTaskParams struct {
	Title       *string
	Description *string
}

// TaskService provides task-related operations. Every method is scoped to
// accountID.
type TaskService interface {
	// CreateTask stores a new active task.
	CreateTask(ctx context.Context, accountID string, params CreateTaskParams) (*domain.Task, error)

	// GetTask returns a task, or a *NotFoundError if it is absent or deleted.
	GetTask(ctx context.Context, accountID, taskID string) (*domain.Task, error)

	// UpdateTask overwrites the given fields, keeping ID, owner and creation time.
	UpdateTask(ctx context.Context, accountID, taskID string, params UpdateTaskParams) (*domain.Task, error)

	// MarkTaskAsDone deactivates a task. Marking a done task again returns it
	// unchanged.
	MarkTaskAsDone(ctx context.Context, accountID, taskID string) (*domain.Task, error)

	// DeleteTask stamps the task as deleted. Later reads report NotFound.
	DeleteTask(ctx context.Context, accountID, taskID string) (domain.DeletionResult, error)

	// GetPaginatedTasks lists non-deleted tasks in insertion order. A nil
	// active filter lists all of them.
	GetPaginatedTasks(
		ctx context.Context,
		accountID string,
		params domain.PaginationParams,
		active *bool,
	) (domain.PaginationResult[*domain.Task], error)
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	tasks  store.DocumentStore[domain.Task]
	logger *slog.Logger
	now    func() time.Time
}

// NewTaskService creates a new TaskService.
// It returns an error if the task store is nil.
func NewTaskService(tasks store.DocumentStore[domain.Task], logger *slog.Logger) (TaskService, error) {
	if tasks == nil {
		return nil, &ServiceError{
			Service:   "task",
			Operation: "create_service",
			Message:   "tasks store cannot be nil",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_service")),
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// liveTaskFilter matches a non-deleted task owned by accountID.
func liveTaskFilter(accountID, taskID string) store.Filter {
	return store.Filter{"id": taskID, "account_id": accountID, "deleted_at": nil}
}

// findLiveTask loads a non-deleted task, translating a store miss into a
// *NotFoundError.
func findLiveTask(
	ctx context.Context,
	tasks store.DocumentStore[domain.Task],
	accountID, taskID string,
) (*domain.Task, error) {
	task, err := tasks.FindOne(ctx, liveTaskFilter(accountID, taskID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NewNotFoundError(ResourceTask, taskID)
		}
		return nil, err
	}
	return task, nil
}

// CreateTask implements TaskService.CreateTask.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	accountID string,
	params CreateTaskParams,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(accountID, params.Title, params.Description)
	if err != nil {
		log.Debug("rejected invalid task", slog.String("error", err.Error()))
		return nil, validationError(err)
	}

	if err := s.tasks.Insert(ctx, task.ID, task); err != nil {
		log.Error("failed to store task",
			slog.String("error", err.Error()),
			slog.String("account_id", accountID))
		return nil, NewServiceError("task", "create_task", "failed to store task", err)
	}

	metrics.IncResourceOperation("task", "create")
	log.Info("task created",
		slog.String("task_id", task.ID),
		slog.String("account_id", accountID))
	return task, nil
}

// GetTask implements TaskService.GetTask.
func (s *taskServiceImpl) GetTask(ctx context.Context, accountID, taskID string) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := findLiveTask(ctx, s.tasks, accountID, taskID)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			log.Debug("task not found", slog.String("task_id", taskID))
		} else {
			log.Error("failed to load task",
				slog.String("error", err.Error()),
				slog.String("task_id", taskID))
		}
		return nil, NewServiceError("task", "get_task", "failed to load task", err)
	}
	return task, nil
}

// UpdateTask implements TaskService.UpdateTask.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	accountID, taskID string,
	params UpdateTaskParams,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if params.Title != nil && *params.Title == "" {
		return nil, validationError(domain.ErrEmptyTaskTitle)
	}
	if params.Description != nil && *params.Description == "" {
		return nil, validationError(domain.ErrEmptyTaskDescription)
	}

	set := store.Update{"updated_at": s.now()}
	if params.Title != nil {
		set["title"] = *params.Title
	}
	if params.Description != nil {
		set["description"] = *params.Description
	}

	task, err := s.tasks.UpdateOne(ctx, liveTaskFilter(accountID, taskID), set)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NewNotFoundError(ResourceTask, taskID)
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID))
		return nil, NewServiceError("task", "update_task", "failed to update task", err)
	}

	metrics.IncResourceOperation("task", "update")
	log.Info("task updated", slog.String("task_id", taskID))
	return task, nil
}

// MarkTaskAsDone implements TaskService.MarkTaskAsDone.
func (s *taskServiceImpl) MarkTaskAsDone(ctx context.Context, accountID, taskID string) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := findLiveTask(ctx, s.tasks, accountID, taskID)
	if err != nil {
		return nil, NewServiceError("task", "mark_task_as_done", "failed to load task", err)
	}
	if task.IsDone() {
		log.Debug("task already done", slog.String("task_id", taskID))
		return task, nil
	}

	now := s.now()
	filter := liveTaskFilter(accountID, taskID)
	filter["active"] = true
	task, err = s.tasks.UpdateOne(ctx, filter, store.Update{
		"active":       false,
		"completed_at": now,
		"updated_at":   now,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Lost a race with another mark or a delete; report current state.
			return s.GetTask(ctx, accountID, taskID)
		}
		log.Error("failed to mark task as done",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID))
		return nil, NewServiceError("task", "mark_task_as_done", "failed to update task", err)
	}

	metrics.IncResourceOperation("task", "mark_as_done")
	log.Info("task marked as done", slog.String("task_id", taskID))
	return task, nil
}

// DeleteTask implements TaskService.DeleteTask.
func (s *taskServiceImpl) DeleteTask(
	ctx context.Context,
	accountID, taskID string,
) (domain.DeletionResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := s.now()
	task, err := s.tasks.UpdateOne(ctx, liveTaskFilter(accountID, taskID), store.Update{
		"deleted_at": now,
		"updated_at": now,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.DeletionResult{}, NewNotFoundError(ResourceTask, taskID)
		}
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID))
		return domain.DeletionResult{}, NewServiceError("task", "delete_task", "failed to delete task", err)
	}

	deletedAt := now
	if task.DeletedAt != nil {
		deletedAt = *task.DeletedAt
	}

	metrics.IncResourceOperation("task", "delete")
	log.Info("task deleted", slog.String("task_id", taskID))
	return domain.DeletionResult{ID: taskID, Success: true, DeletedAt: deletedAt}, nil
}

// GetPaginatedTasks implements TaskService.GetPaginatedTasks.
func (s *taskServiceImpl) GetPaginatedTasks(
	ctx context.Context,
	accountID string,
	params domain.PaginationParams,
	active *bool,
) (domain.PaginationResult[*domain.Task], error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	params, err := pageParams(params)
	if err != nil {
		return domain.PaginationResult[*domain.Task]{}, err
	}
	query, err := domain.ComputeQuery(params.Page, params.Size, active)
	if err != nil {
		return domain.PaginationResult[*domain.Task]{}, PaginationError(err, params.Page)
	}

	filter := store.Filter{"account_id": accountID, "deleted_at": nil}
	if query.Filter != nil {
		filter["active"] = *query.Filter
	}

	tasks, total, err := s.tasks.Find(ctx, filter, store.FindOptions{Offset: query.Offset, Limit: query.Limit})
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("account_id", accountID))
		return domain.PaginationResult[*domain.Task]{},
			NewServiceError("task", "list_tasks", "failed to list tasks", err)
	}

	log.Debug("tasks listed",
		slog.String("account_id", accountID),
		slog.Int("page", params.Page),
		slog.Int("count", len(tasks)),
		slog.Int("total", total))
	return domain.NewPaginationResult(tasks, params, total), nil
}
