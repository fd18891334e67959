package pages

import (
	"context"

	"taskManager/internal/forms"
	"taskManager/internal/logger"
	"taskManager/internal/models/task"

	"go.uber.org/zap"
)

const (
	MsgCreateLoginRequired = "You must be logged in to create a task."
	MsgCreateFailed        = "There was an issue creating the task. Please try again."

	MsgFetchLoginRequired  = "You must be logged in to view or update a task."
	MsgFetchFailed         = "Failed to fetch task."
	MsgUpdateLoginRequired = "You must be logged in to update a task."
	MsgUpdateFailed        = "Failed to update task."
	MsgUpdated             = "Task updated successfully!"
)

// CreateTaskPage начинает со статусом in-progress и приоритетом medium
type CreateTaskPage struct {
	flow
	api  TaskAPI
	Form forms.TaskForm
}

func NewCreateTaskPage(api TaskAPI) *CreateTaskPage {
	return &CreateTaskPage{
		api: api,
		Form: forms.TaskForm{
			Status:   string(task.DefaultStatus),
			Priority: string(task.DefaultPriority),
		},
	}
}

func (p *CreateTaskPage) Submit(ctx context.Context) error {
	if !p.begin() {
		return ErrBusy
	}

	in, err := p.Form.Validate()
	if err != nil {
		p.fail(err.Error())
		return err
	}

	if err := p.api.CreateTask(ctx, in); err != nil {
		logger.Warn("Page: ошибка создания задачи", zap.Error(err))
		p.fail(messageFor(err, MsgCreateLoginRequired, MsgCreateFailed))
		return err
	}

	logger.Info("Page: задача создана", zap.String("title", in.Title))
	p.succeed("", HomePath)
	return nil
}

// UpdateTaskPage адресуется по id задачи, Load заполняет форму данными из API
type UpdateTaskPage struct {
	flow
	api    TaskAPI
	ID     string
	Task   *task.Task
	Form   forms.TaskForm
	loaded bool
}

func NewUpdateTaskPage(api TaskAPI, id string) *UpdateTaskPage {
	return &UpdateTaskPage{
		api: api,
		ID:  id,
		Form: forms.TaskForm{
			Status:   string(task.StatusPending),
			Priority: string(task.PriorityLow),
		},
	}
}

func (p *UpdateTaskPage) Load(ctx context.Context) error {
	if !p.begin() {
		return ErrBusy
	}

	t, err := p.api.GetTask(ctx, p.ID)
	if err != nil {
		logger.Warn("Page: ошибка получения задачи", zap.String("task_id", p.ID), zap.Error(err))
		p.fail(messageFor(err, MsgFetchLoginRequired, MsgFetchFailed))
		return err
	}

	p.mtx.Lock()
	p.Task = t
	p.Form = forms.TaskFormFrom(t)
	p.loaded = true
	p.mtx.Unlock()

	p.succeed("", "")
	return nil
}

// Loaded сообщает, загружена ли задача и можно ли показать форму
func (p *UpdateTaskPage) Loaded() bool {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.loaded
}

func (p *UpdateTaskPage) Submit(ctx context.Context) error {
	if !p.begin() {
		return ErrBusy
	}

	p.mtx.Lock()
	form := p.Form
	p.mtx.Unlock()

	in, err := form.Validate()
	if err != nil {
		p.fail(err.Error())
		return err
	}

	if err := p.api.UpdateTask(ctx, p.ID, in); err != nil {
		logger.Warn("Page: ошибка обновления задачи", zap.String("task_id", p.ID), zap.Error(err))
		p.fail(messageFor(err, MsgUpdateLoginRequired, MsgUpdateFailed))
		return err
	}

	logger.Info("Page: задача обновлена", zap.String("task_id", p.ID))
	p.succeed(MsgUpdated, HomePath)
	return nil
}
