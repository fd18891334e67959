package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	repo "taskManager/internal/repository"
	"taskManager/internal/repository/pg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// id и владелец наружу уходят строками, дата срока - в виде YYYY-MM-DD
const taskColumns = `id::text,
				owner_id::text,
				title,
				description,
				status,
				priority,
				to_char(due_date, 'YYYY-MM-DD'),
				created_at,
				updated_at`

type Storage struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()
	defer pg.WarnIfSlow("create_task", start)

	query := `INSERT INTO tasks
				(owner_id, title, description, status, priority, due_date)
				VALUES ($1::text::uuid, $2, $3, $4, $5, $6::text::date)
				RETURNING id::text, created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		taskToCreate.Owner,
		taskToCreate.Title,
		taskToCreate.Description,
		taskToCreate.Status,
		taskToCreate.Priority,
		taskToCreate.DueDate,
	).Scan(&taskToCreate.ID, &taskToCreate.CreatedAt, &taskToCreate.UpdatedAt)
	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}
	return nil
}

func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	if !validID(taskToUpdate.ID) {
		return repo.ErrNotFound
	}

	start := time.Now()
	defer pg.WarnIfSlow("update_task", start)

	query := `UPDATE tasks
			SET title = $1,
				description = $2,
				status = $3,
				priority = $4,
				due_date = $5::text::date,
				updated_at = NOW()
			WHERE id = $6::text::uuid
			RETURNING owner_id::text, created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		taskToUpdate.Title,
		taskToUpdate.Description,
		taskToUpdate.Status,
		taskToUpdate.Priority,
		taskToUpdate.DueDate,
		taskToUpdate.ID,
	).Scan(&taskToUpdate.Owner, &taskToUpdate.CreatedAt, &taskToUpdate.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось обновить задачу", err, zap.String("task_id", taskToUpdate.ID))
		return fmt.Errorf("обновление задачи: %w", err)
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id string) (*task.Task, error) {
	if !validID(id) {
		return nil, repo.ErrNotFound
	}

	start := time.Now()
	defer pg.WarnIfSlow("get_task", start)

	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE id = $1::text::uuid`

	found, err := scanTask(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.String("task_id", id))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return found, nil
}

func (s *Storage) ListByOwner(ctx context.Context, owner string) ([]*task.Task, error) {
	if !validID(owner) {
		return []*task.Task{}, nil
	}

	start := time.Now()
	defer pg.WarnIfSlow("list_tasks", start)

	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE owner_id = $1::text::uuid
				ORDER BY created_at, id`

	rows, err := s.pool.Query(ctx, query, owner)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.String("owner_id", owner))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		found, err := scanTask(rows)
		if err != nil {
			logger.Error("Repository: Ошибка сканирования задачи", err)
			return nil, fmt.Errorf("сканирование задачи: %w", err)
		}
		tasks = append(tasks, found)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}
	return tasks, nil
}

func (s *Storage) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return repo.ErrNotFound
	}

	start := time.Now()
	defer pg.WarnIfSlow("delete_task", start)

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1::text::uuid`, id)
	if err != nil {
		logger.Error("Repository: Не удалось удалить задачу", err, zap.String("task_id", id))
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	err := row.Scan(
		&t.ID,
		&t.Owner,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.DueDate,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// validID: id в базе - uuid, любая другая строка заведомо не найдётся
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
