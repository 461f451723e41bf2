package task

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskmanager/internal/model"
	"taskmanager/internal/repository"
	"taskmanager/pkg/apperr"
	"taskmanager/pkg/logger"
	"taskmanager/pkg/metrics"
)

const MsgTaskNotFound = "Task not found"

// TaskStore is the owner-scoped task store used by the service.
type TaskStore interface {
	ListByUser(ctx context.Context, userID int) ([]model.Task, error)
	Insert(ctx context.Context, t *model.Task) error
	FindByID(ctx context.Context, id, userID int) (*model.Task, error)
	Update(ctx context.Context, t *model.Task) error
	Delete(ctx context.Context, id, userID int) (bool, error)
}

var _ TaskStore = (*repository.TaskRepository)(nil)

type Service struct {
	tasks  TaskStore
	logger *zap.Logger
}

func NewService(tasks TaskStore, log *zap.Logger) *Service {
	return &Service{tasks: tasks, logger: log}
}

// CreateInput is an already validated create request. An empty Status means
// the client did not send one.
type CreateInput struct {
	Title       string
	Description string
	DueDate     model.Date
	Status      string
}

func (s *Service) List(ctx context.Context, userID int) ([]model.Task, error) {
	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list tasks: %w", err))
	}
	return tasks, nil
}

// Create stores a task owned by userID. Status defaults to Pending.
func (s *Service) Create(ctx context.Context, userID int, in CreateInput) (*model.Task, error) {
	t := &model.Task{
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		DueDate:     in.DueDate,
		Status:      in.Status,
	}
	if t.Status == "" {
		t.Status = model.StatusPending
	}

	if err := s.tasks.Insert(ctx, t); err != nil {
		return nil, apperr.Internal(fmt.Errorf("insert task: %w", err))
	}

	metrics.IncrementTaskMutation("create")
	logger.WithTrace(ctx, s.logger).Info("Task created",
		zap.Int("task_id", t.ID),
		zap.Int("user_id", userID),
	)
	return t, nil
}

// Update merges patch over the caller's task. A task owned by someone else
// is reported exactly like a missing one.
func (s *Service) Update(ctx context.Context, userID, id int, patch model.TaskPatch) (*model.Task, error) {
	t, err := s.tasks.FindByID(ctx, id, userID)
	if err != nil {
		return nil, s.notFoundOr(err, "find task")
	}

	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		patch.Title = &trimmed
	}
	patch.Apply(t)

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, s.notFoundOr(err, "update task")
	}

	metrics.IncrementTaskMutation("update")
	logger.WithTrace(ctx, s.logger).Info("Task updated",
		zap.Int("task_id", t.ID),
		zap.Int("user_id", userID),
	)
	return t, nil
}

func (s *Service) Delete(ctx context.Context, userID, id int) error {
	deleted, err := s.tasks.Delete(ctx, id, userID)
	if err != nil {
		return apperr.Internal(fmt.Errorf("delete task: %w", err))
	}
	if !deleted {
		return apperr.New(apperr.KindNotFound, MsgTaskNotFound)
	}

	metrics.IncrementTaskMutation("delete")
	logger.WithTrace(ctx, s.logger).Info("Task deleted",
		zap.Int("task_id", id),
		zap.Int("user_id", userID),
	)
	return nil
}

func (s *Service) notFoundOr(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.New(apperr.KindNotFound, MsgTaskNotFound)
	}
	return apperr.Internal(fmt.Errorf("%s: %w", op, err))
}
