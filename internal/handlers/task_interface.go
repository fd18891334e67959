package handlers

import (
	"context"

	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
)

type TaskService interface {
	HealthCheck(ctx context.Context) error
	ListTasks(ctx context.Context, owner string) ([]*task.Task, error)
	GetTask(ctx context.Context, owner, id string) (*task.Task, error)
	CreateTask(ctx context.Context, owner string, in task.Input) (*task.Task, error)
	UpdateTask(ctx context.Context, owner, id string, in task.Input) (*task.Task, error)
	DeleteTask(ctx context.Context, owner, id string) error
}

type UserService interface {
	Register(ctx context.Context, name, email, password string) (*user.User, error)
	Login(ctx context.Context, email, password string) (string, error)
}
