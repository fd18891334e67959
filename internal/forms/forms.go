// Package forms содержит клиентские правила полей для форм задачи, входа и регистрации.
package forms

import (
	"errors"
	"regexp"
	"strings"

	"taskManager/internal/models/task"

	"github.com/go-playground/validator/v10"
)

const (
	MsgFillAllFields = "Please fill in all fields."
	MsgInvalidStatus = "Invalid status."
	MsgInvalidPrio   = "Invalid priority."
	MsgLoginRequired = "Email and password are required."

	MsgNameRequired     = "Name is required."
	MsgEmailRequired    = "Email is required."
	MsgEmailInvalid     = "Invalid email address."
	MsgPasswordRequired = "Password is required."
	MsgPasswordShort    = "Password must be at least 8 characters long."
	MsgConfirmRequired  = "Please confirm your password."
	MsgPasswordMismatch = "Passwords do not match."
)

// нестрогий шаблон вида что-то@что-то.что-то
var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("simple_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("task_status", func(fl validator.FieldLevel) bool {
		return task.Status(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("task_priority", func(fl validator.FieldLevel) bool {
		return task.Priority(fl.Field().String()).Valid()
	})
	return v
}

// ValidationError несёт сообщение, которое показывается рядом с формой
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// TaskForm - набор полей форм создания и изменения задачи
type TaskForm struct {
	Title       string `validate:"required"`
	Description string `validate:"required"`
	Status      string `validate:"omitempty,task_status"`
	Priority    string `validate:"omitempty,task_priority"`
	DueDate     string `validate:"required"`
}

func TaskFormFrom(t *task.Task) TaskForm {
	return TaskForm{
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueLabel(),
	}
}

// Validate проверяет обязательные поля и возвращает тело запроса со значениями по умолчанию
func (f TaskForm) Validate() (task.Input, error) {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.DueDate = strings.TrimSpace(f.DueDate)

	if err := validate.Struct(f); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return task.Input{}, err
		}
		for _, fe := range fieldErrs {
			switch fe.Tag() {
			case "task_status":
				return task.Input{}, &ValidationError{Message: MsgInvalidStatus}
			case "task_priority":
				return task.Input{}, &ValidationError{Message: MsgInvalidPrio}
			}
		}
		return task.Input{}, &ValidationError{Message: MsgFillAllFields}
	}

	return task.Input{
		Title:       f.Title,
		Description: f.Description,
		Status:      task.Status(f.Status),
		Priority:    task.Priority(f.Priority),
		DueDate:     f.DueDate,
	}.WithDefaults(), nil
}

type LoginForm struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

func (f LoginForm) Validate() error {
	if err := validate.Struct(f); err != nil {
		return &ValidationError{Message: MsgLoginRequired}
	}
	return nil
}

type RegisterForm struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,simple_email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// FieldErrors хранит не больше одного сообщения на поле регистрации
type FieldErrors struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

func (e FieldErrors) Empty() bool {
	return e == FieldErrors{}
}

func (e FieldErrors) Messages() []string {
	var out []string
	for _, msg := range []string{e.Name, e.Email, e.Password, e.ConfirmPassword} {
		if msg != "" {
			out = append(out, msg)
		}
	}
	return out
}

// Validate проверяет все правила и собирает по одному сообщению на поле
func (f RegisterForm) Validate() FieldErrors {
	var out FieldErrors

	err := validate.Struct(f)
	if err == nil {
		return out
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		out.Name = err.Error()
		return out
	}

	for _, fe := range fieldErrs {
		switch fe.StructField() {
		case "Name":
			out.Name = MsgNameRequired
		case "Email":
			if fe.Tag() == "required" {
				out.Email = MsgEmailRequired
			} else {
				out.Email = MsgEmailInvalid
			}
		case "Password":
			if fe.Tag() == "required" {
				out.Password = MsgPasswordRequired
			} else {
				out.Password = MsgPasswordShort
			}
		case "ConfirmPassword":
			if fe.Tag() == "required" {
				out.ConfirmPassword = MsgConfirmRequired
			} else {
				out.ConfirmPassword = MsgPasswordMismatch
			}
		}
	}
	return out
}
