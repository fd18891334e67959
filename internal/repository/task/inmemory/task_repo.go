package inmemory

import (
	"context"
	"sync"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
)

// TaskStorage хранит копии задач, наружу тоже отдаются копии
type TaskStorage struct {
	storage map[string]*task.Task
	mtx     *sync.RWMutex
	ids     []string
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[string]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []string{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: Соединение стабильно")
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if taskToCreate.ID == "" {
		taskToCreate.ID = uuid.NewString()
	}
	if _, ok := s.storage[taskToCreate.ID]; ok {
		return repo.ErrAlreadyExists
	}

	now := time.Now().UTC()
	taskToCreate.CreatedAt = now
	taskToCreate.UpdatedAt = now

	stored := *taskToCreate
	s.storage[stored.ID] = &stored
	s.ids = append(s.ids, stored.ID)
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existed, ok := s.storage[taskToUpdate.ID]
	if !ok {
		return repo.ErrNotFound
	}

	taskToUpdate.CreatedAt = existed.CreatedAt
	taskToUpdate.Owner = existed.Owner
	taskToUpdate.UpdatedAt = time.Now().UTC()

	stored := *taskToUpdate
	s.storage[stored.ID] = &stored
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id string) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	found := *taskToGet
	return &found, nil
}

// ListByOwner возвращает задачи владельца в порядке создания
func (s *TaskStorage) ListByOwner(ctx context.Context, owner string) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for _, id := range s.ids {
		t := s.storage[id]
		if t.Owner != owner {
			continue
		}
		found := *t
		res = append(res, &found)
	}
	return res, nil
}

func (s *TaskStorage) Delete(ctx context.Context, id string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}
