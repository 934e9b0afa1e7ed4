package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/service"
)

// TaskHandler handles the task endpoints of one account.
type TaskHandler struct {
	taskService service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) *TaskHandler {
	if taskService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("taskService cannot be nil for TaskHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /accounts/{account_id}/tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	accountID, ok := requireAccountID(w, r, log)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := decodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), accountID, service.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	log.Debug("task created", slog.String("task_id", task.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// ListTasks handles GET /accounts/{account_id}/tasks?page=&size=&active=.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	accountID, ok := requireAccountID(w, r, log)
	if !ok {
		return
	}

	params, err := parsePaginationParams(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	page, err := h.taskService.GetPaginatedTasks(r.Context(), accountID, params, parseActiveFilter(r))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toPaginatedResponse(page, taskToResponse))
}

// GetTask handles GET /accounts/{account_id}/tasks/{task_id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	accountID, ok := requireAccountID(w, r, log)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), accountID, pathParam(r, TaskIDParam))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// PatchTask handles PATCH /accounts/{account_id}/tasks/{task_id}. A body of
// {"action": "mark_as_done"} completes the task; any other body must carry
// title and description.
func (h *TaskHandler) PatchTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	accountID, ok := requireAccountID(w, r, log)
	if !ok {
		return
	}
	taskID := pathParam(r, TaskIDParam)

	var req PatchTaskRequest
	if err := decodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if req.Action == TaskActionMarkAsDone {
		task, err := h.taskService.MarkTaskAsDone(r.Context(), accountID, taskID)
		if err != nil {
			HandleAPIError(w, r, err, "Failed to mark task as done")
			return
		}
		log.Debug("task marked as done", slog.String("task_id", task.ID))
		shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
		return
	}

	update := UpdateTaskRequest{Title: req.Title, Description: req.Description}
	if err := shared.ValidateRequest(&update); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), accountID, taskID, service.UpdateTaskParams{
		Title:       &update.Title,
		Description: &update.Description,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// DeleteTask handles DELETE /accounts/{account_id}/tasks/{task_id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	accountID, ok := requireAccountID(w, r, log)
	if !ok {
		return
	}

	result, err := h.taskService.DeleteTask(r.Context(), accountID, pathParam(r, TaskIDParam))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	log.Debug("task deleted", slog.String("task_id", result.ID))
	w.WriteHeader(http.StatusNoContent)
}
