package service

import (
	"context"

	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
)

type TaskRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *task.Task) error
	Update(context.Context, *task.Task) error
	GetByID(context.Context, string) (*task.Task, error)
	ListByOwner(context.Context, string) ([]*task.Task, error)
	Delete(context.Context, string) error
}

type UserRepository interface {
	Create(context.Context, *user.User) error
	GetByEmail(context.Context, string) (*user.User, error)
	GetByID(context.Context, string) (*user.User, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type TokenIssuer interface {
	Generate(userID, email string) (string, error)
	UserID(token string) (string, error)
}
