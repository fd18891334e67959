package task

type TaskOption func(*Task)

func WithTitle(title string) TaskOption {
	if title == "" {
		return nil
	}
	return func(task *Task) {
		task.Title = title
	}
}

func WithDescription(description string) TaskOption {
	if description == "" {
		return nil
	}
	return func(task *Task) {
		task.Description = description
	}
}

func WithStatus(status Status) TaskOption {
	if status == "" {
		return nil
	}
	return func(task *Task) {
		task.Status = status
	}
}

func WithPriority(priority Priority) TaskOption {
	if priority == "" {
		return nil
	}
	return func(task *Task) {
		task.Priority = priority
	}
}

func WithDueDate(dueDate string) TaskOption {
	if dueDate == "" {
		return nil
	}
	return func(task *Task) {
		task.DueDate = dueDate
	}
}

// FromInput собирает опции обновления из тела запроса, пропуская пустые поля
func FromInput(in Input) []TaskOption {
	return []TaskOption{
		WithTitle(in.Title),
		WithDescription(in.Description),
		WithStatus(in.Status),
		WithPriority(in.Priority),
		WithDueDate(in.DueDate),
	}
}

func Apply(t *Task, options ...TaskOption) {
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
}
