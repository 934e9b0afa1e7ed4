package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/service"
)

// CommentHandler handles the comment endpoints nested under a task.
type CommentHandler struct {
	commentService service.CommentService
	logger         *slog.Logger
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(commentService service.CommentService, logger *slog.Logger) *CommentHandler {
	if commentService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("commentService cannot be nil for CommentHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CommentHandler{
		commentService: commentService,
		logger:         logger.With(slog.String("component", "comment_handler")),
	}
}

// CreateComment handles POST /accounts/{account_id}/tasks/{task_id}/comments.
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	accountID, ok := requireAccountID(w, r, log)
	if !ok {
		return
	}

	var req CommentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	comment, err := h.commentService.CreateComment(
		r.Context(),
		accountID,
		pathParam(r, TaskIDParam),
		service.CreateCommentParams{Content: req.Content},
	)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create comment")
		return
	}

	log.Debug("comment created", slog.String("comment_id", comment.ID), slog.String("task_id", comment.TaskID))
	shared.RespondWithJSON(w, r, http.StatusCreated, commentToResponse(comment))
}

// ListComments handles GET /accounts/{account_id}/tasks/{task_id}/comments.
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
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

	page, err := h.commentService.GetPaginatedComments(r.Context(), accountID, pathParam(r, TaskIDParam), params)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list comments")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toPaginatedResponse(page, commentToResponse))
}

// GetComment handles GET .../comments/{comment_id}.
func (h *CommentHandler) GetComment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	accountID, ok := requireAccountID(w, r, log)
	if !ok {
		return
	}

	comment, err := h.commentService.GetComment(
		r.Context(),
		accountID,
		pathParam(r, TaskIDParam),
		pathParam(r, CommentIDParam),
	)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get comment")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, commentToResponse(comment))
}

// UpdateComment handles PATCH .../comments/{comment_id}.
func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	accountID, ok := requireAccountID(w, r, log)
	if !ok {
		return
	}

	var req CommentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	comment, err := h.commentService.UpdateComment(
		r.Context(),
		accountID,
		pathParam(r, TaskIDParam),
		pathParam(r, CommentIDParam),
		service.UpdateCommentParams{Content: &req.Content},
	)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update comment")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, commentToResponse(comment))
}

// DeleteComment handles DELETE .../comments/{comment_id}.
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	accountID, ok := requireAccountID(w, r, log)
	if !ok {
		return
	}

	result, err := h.commentService.DeleteComment(
		r.Context(),
		accountID,
		pathParam(r, TaskIDParam),
		pathParam(r, CommentIDParam),
	)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete comment")
		return
	}

	log.Debug("comment deleted", slog.String("comment_id", result.ID))
	w.WriteHeader(http.StatusNoContent)
}
