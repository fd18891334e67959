// Package pages хранит состояние страниц клиента задач: список с карточкой задачи
// и формы создания, изменения, входа и регистрации.
//
// Страница находится в одном из состояний Idle, Submitting, Succeeded или Failed.
// Пока страница в Submitting, повторная отправка отклоняется с ErrBusy.
package pages

import (
	"context"
	"errors"
	"sync"

	"taskManager/internal/client"
	"taskManager/internal/models/task"
)

const HomePath = "/"

var ErrBusy = errors.New("pages: submission already in progress")

type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "success"
	case StateFailed:
		return "error"
	default:
		return "idle"
	}
}

type TaskAPI interface {
	ListTasks(ctx context.Context) ([]task.Task, error)
	GetTask(ctx context.Context, id string) (*task.Task, error)
	CreateTask(ctx context.Context, in task.Input) error
	UpdateTask(ctx context.Context, id string, in task.Input) error
	DeleteTask(ctx context.Context, id string) error
}

type AccountAPI interface {
	Register(ctx context.Context, req client.RegisterRequest) error
	Login(ctx context.Context, email, password string) (string, error)
}

var (
	_ TaskAPI    = (*client.Client)(nil)
	_ AccountAPI = (*client.Client)(nil)
)

// flow - общая часть всех страниц: состояние, сообщения и защита от повторной отправки
type flow struct {
	mtx      sync.Mutex
	state    State
	errorMsg string
	message  string
	redirect string
}

func (f *flow) begin() bool {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	if f.state == StateSubmitting {
		return false
	}
	f.state = StateSubmitting
	f.errorMsg = ""
	f.message = ""
	f.redirect = ""
	return true
}

func (f *flow) fail(msg string) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.state = StateFailed
	f.errorMsg = msg
}

func (f *flow) succeed(message, redirect string) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.state = StateSucceeded
	f.message = message
	f.redirect = redirect
}

func (f *flow) State() State {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return f.state
}

// Submitting сообщает, нужно ли заблокировать кнопку отправки
func (f *flow) Submitting() bool {
	return f.State() == StateSubmitting
}

// ErrorMessage - сообщение об ошибке рядом с формой, пустое если ошибки нет
func (f *flow) ErrorMessage() string {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return f.errorMsg
}

// Message - подтверждение после успешной отправки
func (f *flow) Message() string {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return f.message
}

// Redirect - куда перейти после успеха, иначе пусто
func (f *flow) Redirect() string {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return f.redirect
}

// messageFor сводит все ошибки, кроме отсутствия сессии, к одному сообщению
func messageFor(err error, unauthenticated, generic string) string {
	if errors.Is(err, client.ErrUnauthenticated) {
		return unauthenticated
	}
	return generic
}
