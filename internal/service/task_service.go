package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	rep "taskManager/internal/repository"

	"go.uber.org/zap"
)

const taskResource = "задача"

// TaskService: каждая операция видит только задачи своего владельца
type TaskService struct {
	repo TaskRepository
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{
		repo: repo,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

func (s *TaskService) ListTasks(ctx context.Context, owner string) ([]*task.Task, error) {
	tasks, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) GetTask(ctx context.Context, owner, id string) (*task.Task, error) {
	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id))
			return nil, NewNotFound(taskResource, id)
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	// чужая задача для владельца не существует
	if found.Owner != owner {
		logger.Warn("Service: Запрос чужой задачи",
			zap.String("target_id", id),
			zap.String("owner_id", owner))
		return nil, NewNotFound(taskResource, id)
	}
	return found, nil
}

func (s *TaskService) CreateTask(ctx context.Context, owner string, in task.Input) (*task.Task, error) {
	in = trimInput(in)

	switch {
	case in.Title == "":
		return nil, NewValidationError("title", "обязательное поле")
	case in.Description == "":
		return nil, NewValidationError("description", "обязательное поле")
	case in.DueDate == "":
		return nil, NewValidationError("dueDate", "обязательное поле")
	}

	in, err := normalizeInput(in.WithDefaults())
	if err != nil {
		return nil, err
	}

	created := &task.Task{Owner: owner}
	task.Apply(created, task.FromInput(in)...)

	if err := s.repo.Create(ctx, created); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	logger.Info("Service: Задача создана",
		zap.String("task_id", created.ID),
		zap.String("owner_id", owner))
	return created, nil
}

// UpdateTask меняет только переданные поля
func (s *TaskService) UpdateTask(ctx context.Context, owner, id string, in task.Input) (*task.Task, error) {
	in, err := normalizeInput(trimInput(in))
	if err != nil {
		return nil, err
	}

	existing, err := s.GetTask(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	task.Apply(existing, task.FromInput(in)...)

	if err := s.repo.Update(ctx, existing); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound(taskResource, id)
		}
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	logger.Info("Service: Задача обновлена", zap.String("task_id", id))
	return existing, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, owner, id string) error {
	if _, err := s.GetTask(ctx, owner, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return NewNotFound(taskResource, id)
		}
		return fmt.Errorf("удаление задачи: %w", err)
	}

	logger.Info("Service: Задача удалена", zap.String("task_id", id))
	return nil
}

func trimInput(in task.Input) task.Input {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.DueDate = strings.TrimSpace(in.DueDate)
	return in
}

// normalizeInput проверяет заданные поля и приводит срок к виду YYYY-MM-DD
func normalizeInput(in task.Input) (task.Input, error) {
	if in.Status != "" && !in.Status.Valid() {
		return in, NewValidationError("status", fmt.Sprintf("ожидается одно из %v", task.Statuses))
	}
	if in.Priority != "" && !in.Priority.Valid() {
		return in, NewValidationError("priority", fmt.Sprintf("ожидается одно из %v", task.Priorities))
	}
	if in.DueDate != "" {
		due, err := task.ParseDueDate(in.DueDate)
		if err != nil {
			return in, NewValidationError("dueDate", "ожидается дата в формате YYYY-MM-DD")
		}
		in.DueDate = due.Format(task.DateLayout)
	}
	return in, nil
}
