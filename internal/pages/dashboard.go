package pages

import (
	"context"
	"errors"
	"net/url"

	"taskManager/internal/client"
	"taskManager/internal/logger"
	"taskManager/internal/models/task"

	"go.uber.org/zap"
)

const (
	MsgListLoginRequired   = "You must be logged in to view tasks."
	MsgListInvalidFormat   = "Invalid response format: expected an array of tasks."
	MsgListFailed          = "There was an issue fetching tasks."
	MsgDeleteLoginRequired = "You must be logged in to delete tasks."
	MsgDeleteFailed        = "There was an issue deleting the task."
	MsgNoTasks             = "No tasks available. Start by creating a new task."
)

// Dashboard показывает список задач из последней успешной загрузки
// и карточку одной выбранной задачи.
type Dashboard struct {
	flow
	api      TaskAPI
	tasks    []task.Task
	selected *task.Task
}

func NewDashboard(api TaskAPI) *Dashboard {
	return &Dashboard{api: api}
}

func (d *Dashboard) Load(ctx context.Context) error {
	if !d.begin() {
		return ErrBusy
	}

	tasks, err := d.api.ListTasks(ctx)
	if err != nil {
		logger.Warn("Page: ошибка загрузки задач", zap.Error(err))

		msg := messageFor(err, MsgListLoginRequired, MsgListFailed)
		if errors.Is(err, client.ErrInvalidResponse) {
			msg = MsgListInvalidFormat
		}

		d.mtx.Lock()
		d.tasks = nil
		d.selected = nil
		d.mtx.Unlock()

		d.fail(msg)
		return err
	}

	d.mtx.Lock()
	d.tasks = tasks
	d.mtx.Unlock()

	d.succeed("", "")
	return nil
}

func (d *Dashboard) Tasks() []task.Task {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	return append([]task.Task(nil), d.tasks...)
}

// Empty сообщает, нужно ли показать подсказку для пустого списка
func (d *Dashboard) Empty() bool {
	return len(d.Tasks()) == 0
}

// Open открывает полную запись задачи в карточке
func (d *Dashboard) Open(id string) bool {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	for i := range d.tasks {
		if d.tasks[i].ID == id {
			t := d.tasks[i]
			d.selected = &t
			return true
		}
	}
	return false
}

func (d *Dashboard) Close() {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	d.selected = nil
}

// Selected возвращает задачу из карточки, nil если карточка закрыта
func (d *Dashboard) Selected() *Detail {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	if d.selected == nil {
		return nil
	}
	return &Detail{Task: *d.selected}
}

// Delete удаляет задачу в API, затем убирает её из списка и закрывает карточку
func (d *Dashboard) Delete(ctx context.Context, id string) error {
	if !d.begin() {
		return ErrBusy
	}

	if err := d.api.DeleteTask(ctx, id); err != nil {
		logger.Warn("Page: ошибка удаления задачи", zap.String("task_id", id), zap.Error(err))
		d.fail(messageFor(err, MsgDeleteLoginRequired, MsgDeleteFailed))
		return err
	}

	d.mtx.Lock()
	kept := d.tasks[:0:0]
	for _, t := range d.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	d.tasks = kept
	d.selected = nil
	d.mtx.Unlock()

	logger.Info("Page: задача удалена", zap.String("task_id", id))
	d.succeed("", HomePath)
	return nil
}

// Detail - просмотр одной задачи с действиями изменения и удаления
type Detail struct {
	Task task.Task
}

func (d *Detail) UpdatePath() string {
	return UpdatePath(d.Task.ID)
}

func (d *Detail) DeletePath() string {
	return TaskPath(d.Task.ID) + "/delete"
}

func TaskPath(id string) string {
	return "/tasks/" + url.PathEscape(id)
}

func UpdatePath(id string) string {
	return "/update-task/" + url.PathEscape(id)
}
