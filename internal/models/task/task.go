package task

import (
	"fmt"
	"time"
)

type Task struct {
	ID          string    `json:"_id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Status      Status    `json:"status" db:"status"`
	Priority    Priority  `json:"priority" db:"priority"`
	DueDate     string    `json:"dueDate" db:"due_date"`
	Owner       string    `json:"user,omitempty" db:"owner_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Input - изменяемые поля задачи, которые уходят в теле create/update
type Input struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	DueDate     string   `json:"dueDate"`
}

type Status string
type Priority string

const StatusPending Status = "pending"
const StatusInProgress Status = "in-progress"
const StatusCompleted Status = "completed"

const PriorityLow Priority = "low"
const PriorityMedium Priority = "medium"
const PriorityHigh Priority = "high"

const DefaultStatus = StatusInProgress
const DefaultPriority = PriorityMedium

const DateLayout = "2006-01-02"

var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (t *Task) Input() Input {
	return Input{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
	}
}

// WithDefaults подставляет статус и приоритет по умолчанию, если они не заданы
func (in Input) WithDefaults() Input {
	if in.Status == "" {
		in.Status = DefaultStatus
	}
	if in.Priority == "" {
		in.Priority = DefaultPriority
	}
	return in
}

// ParseDueDate принимает дату из формы (2006-01-02) или полную метку RFC 3339
func ParseDueDate(value string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("неверный формат даты %q: %w", value, err)
	}
	return t, nil
}

// DueLabel returns the due date as YYYY-MM-DD, or the raw value when it does not parse.
func (t *Task) DueLabel() string {
	due, err := ParseDueDate(t.DueDate)
	if err != nil {
		return t.DueDate
	}
	return due.Format(DateLayout)
}
