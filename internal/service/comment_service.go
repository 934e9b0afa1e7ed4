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

// CreateCommentParams holds the fields of a new comment.
type CreateCommentParams struct {
	Content string
}

// UpdateCommentParams holds the fields to change. Nil fields are left as they are.
type UpdateCommentParams struct {
	Content *string
}

// CommentService provides operations on the comments of one task. The task
// must exist and not be deleted, otherwise a Task *NotFoundError is returned.
type CommentService interface {
	CreateComment(
		ctx context.Context,
		accountID, taskID string,
		params CreateCommentParams,
	) (*domain.Comment, error)
	GetComment(ctx context.Context, accountID, taskID, commentID string) (*domain.Comment, error)
	UpdateComment(
		ctx context.Context,
		accountID, taskID, commentID string,
		params UpdateCommentParams,
	) (*domain.Comment, error)
	// DeleteComment removes the comment permanently.
	DeleteComment(ctx context.Context, accountID, taskID, commentID string) (domain.DeletionResult, error)
	GetPaginatedComments(
		ctx context.Context,
		accountID, taskID string,
		params domain.PaginationParams,
	) (domain.PaginationResult[*domain.Comment], error)
}

type commentServiceImpl struct {
	comments store.DocumentStore[domain.Comment]
	tasks    store.DocumentStore[domain.Task]
	logger   *slog.Logger
	now      func() time.Time
}

// NewCommentService creates a new CommentService.
// It returns an error if any of the required stores are nil.
func NewCommentService(
	comments store.DocumentStore[domain.Comment],
	tasks store.DocumentStore[domain.Task],
	logger *slog.Logger,
) (CommentService, error) {
	if comments == nil {
		return nil, &ServiceError{Service: "comment", Operation: "create_service", Message: "comments store cannot be nil"}
	}
	if tasks == nil {
		return nil, &ServiceError{Service: "comment", Operation: "create_service", Message: "tasks store cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &commentServiceImpl{
		comments: comments,
		tasks:    tasks,
		logger:   logger.With(slog.String("component", "comment_service")),
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func commentFilter(accountID, taskID, commentID string) store.Filter {
	return store.Filter{"id": commentID, "account_id": accountID, "task_id": taskID}
}

// requireTask fails with a Task *NotFoundError when the parent task is gone.
func (s *commentServiceImpl) requireTask(ctx context.Context, op, accountID, taskID string) error {
	if _, err := findLiveTask(ctx, s.tasks, accountID, taskID); err != nil {
		return NewServiceError("comment", op, "failed to load task", err)
	}
	return nil
}

// CreateComment implements CommentService.CreateComment.
func (s *commentServiceImpl) CreateComment(
	ctx context.Context,
	accountID, taskID string,
	params CreateCommentParams,
) (*domain.Comment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	comment, err := domain.NewComment(accountID, taskID, params.Content)
	if err != nil {
		return nil, validationError(err)
	}
	if err := s.requireTask(ctx, "create_comment", accountID, taskID); err != nil {
		return nil, err
	}

	if err := s.comments.Insert(ctx, comment.ID, comment); err != nil {
		log.Error("failed to store comment",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID))
		return nil, NewServiceError("comment", "create_comment", "failed to store comment", err)
	}

	metrics.IncResourceOperation("comment", "create")
	log.Info("comment created",
		slog.String("comment_id", comment.ID),
		slog.String("task_id", taskID))
	return comment, nil
}

// GetComment implements CommentService.GetComment.
func (s *commentServiceImpl) GetComment(
	ctx context.Context,
	accountID, taskID, commentID string,
) (*domain.Comment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.requireTask(ctx, "get_comment", accountID, taskID); err != nil {
		return nil, err
	}

	comment, err := s.comments.FindOne(ctx, commentFilter(accountID, taskID, commentID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NewNotFoundError(ResourceComment, commentID)
		}
		log.Error("failed to load comment",
			slog.String("error", err.Error()),
			slog.String("comment_id", commentID))
		return nil, NewServiceError("comment", "get_comment", "failed to load comment", err)
	}
	return comment, nil
}

// UpdateComment implements CommentService.UpdateComment.
func (s *commentServiceImpl) UpdateComment(
	ctx context.Context,
	accountID, taskID, commentID string,
	params UpdateCommentParams,
) (*domain.Comment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if params.Content != nil && *params.Content == "" {
		return nil, validationError(domain.ErrEmptyCommentContent)
	}
	if err := s.requireTask(ctx, "update_comment", accountID, taskID); err != nil {
		return nil, err
	}

	set := store.Update{"updated_at": s.now()}
	if params.Content != nil {
		set["content"] = *params.Content
	}

	comment, err := s.comments.UpdateOne(ctx, commentFilter(accountID, taskID, commentID), set)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NewNotFoundError(ResourceComment, commentID)
		}
		log.Error("failed to update comment",
			slog.String("error", err.Error()),
			slog.String("comment_id", commentID))
		return nil, NewServiceError("comment", "update_comment", "failed to update comment", err)
	}

	metrics.IncResourceOperation("comment", "update")
	log.Info("comment updated", slog.String("comment_id", commentID))
	return comment, nil
}

// DeleteComment implements CommentService.DeleteComment.
func (s *commentServiceImpl) DeleteComment(
	ctx context.Context,
	accountID, taskID, commentID string,
) (domain.DeletionResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.requireTask(ctx, "delete_comment", accountID, taskID); err != nil {
		return domain.DeletionResult{}, err
	}

	if err := s.comments.DeleteOne(ctx, commentFilter(accountID, taskID, commentID)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.DeletionResult{}, NewNotFoundError(ResourceComment, commentID)
		}
		log.Error("failed to delete comment",
			slog.String("error", err.Error()),
			slog.String("comment_id", commentID))
		return domain.DeletionResult{}, NewServiceError("comment", "delete_comment", "failed to delete comment", err)
	}

	metrics.IncResourceOperation("comment", "delete")
	log.Info("comment deleted", slog.String("comment_id", commentID))
	return domain.DeletionResult{ID: commentID, Success: true, DeletedAt: s.now()}, nil
}

// GetPaginatedComments implements CommentService.GetPaginatedComments.
func (s *commentServiceImpl) GetPaginatedComments(
	ctx context.Context,
	accountID, taskID string,
	params domain.PaginationParams,
) (domain.PaginationResult[*domain.Comment], error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	params, err := pageParams(params)
	if err != nil {
		return domain.PaginationResult[*domain.Comment]{}, err
	}
	if err := s.requireTask(ctx, "list_comments", accountID, taskID); err != nil {
		return domain.PaginationResult[*domain.Comment]{}, err
	}

	query, err := domain.ComputeQuery(params.Page, params.Size, nil)
	if err != nil {
		return domain.PaginationResult[*domain.Comment]{}, PaginationError(err, params.Page)
	}

	comments, total, err := s.comments.Find(ctx,
		store.Filter{"account_id": accountID, "task_id": taskID},
		store.FindOptions{Offset: query.Offset, Limit: query.Limit})
	if err != nil {
		log.Error("failed to list comments",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID))
		return domain.PaginationResult[*domain.Comment]{},
			NewServiceError("comment", "list_comments", "failed to list comments", err)
	}

	return domain.NewPaginationResult(comments, params, total), nil
}
