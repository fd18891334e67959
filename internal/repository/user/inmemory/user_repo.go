package inmemory

import (
	"context"
	"strings"
	"sync"
	"time"

	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
)

type UserStorage struct {
	mtx     sync.RWMutex
	byID    map[string]*user.User
	byEmail map[string]string
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		byID:    make(map[string]*user.User),
		byEmail: make(map[string]string),
	}
}

// Create сохраняет пользователя; email сравнивается без учёта регистра
func (s *UserStorage) Create(ctx context.Context, u *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	key := strings.ToLower(u.Email)
	if _, ok := s.byEmail[key]; ok {
		return repo.ErrAlreadyExists
	}

	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()

	stored := *u
	s.byID[stored.ID] = &stored
	s.byEmail[key] = stored.ID
	return nil
}

func (s *UserStorage) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, repo.ErrNotFound
	}
	found := *s.byID[id]
	return &found, nil
}

func (s *UserStorage) GetByID(ctx context.Context, id string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	found := *u
	return &found, nil
}
