package pages

import (
	"context"
	"strings"

	"taskManager/internal/client"
	"taskManager/internal/forms"
	"taskManager/internal/logger"
	"taskManager/internal/session"

	"go.uber.org/zap"
)

const (
	MsgLoginFailed    = "Invalid email or password. Please try again."
	MsgRegistered     = "Registration successful!"
	MsgRegisterFailed = "Something went wrong. Please try again."
	MsgLoggedOut      = "You have been logged out."
)

type LoginPage struct {
	flow
	api     AccountAPI
	session session.Holder
	Form    forms.LoginForm
}

func NewLoginPage(api AccountAPI, holder session.Holder) *LoginPage {
	return &LoginPage{api: api, session: holder}
}

// Submit выполняет вход и сохраняет полученный токен без изменений
func (p *LoginPage) Submit(ctx context.Context) error {
	if !p.begin() {
		return ErrBusy
	}

	p.Form.Email = strings.TrimSpace(p.Form.Email)
	if err := p.Form.Validate(); err != nil {
		p.fail(err.Error())
		return err
	}

	token, err := p.api.Login(ctx, p.Form.Email, p.Form.Password)
	if err != nil {
		logger.Warn("Page: ошибка входа", zap.String("email", p.Form.Email), zap.Error(err))
		p.fail(MsgLoginFailed)
		return err
	}

	if err := p.session.SetToken(token); err != nil {
		logger.Error("Page: не удалось сохранить токен", err)
		p.fail(MsgLoginFailed)
		return err
	}

	logger.Info("Page: вход выполнен", zap.String("email", p.Form.Email))
	p.succeed("", HomePath)
	return nil
}

type RegisterPage struct {
	flow
	api    AccountAPI
	Form   forms.RegisterForm
	Errors forms.FieldErrors
}

func NewRegisterPage(api AccountAPI) *RegisterPage {
	return &RegisterPage{api: api}
}

// Submit проверяет все поля и обращается к API только если ошибок нет
func (p *RegisterPage) Submit(ctx context.Context) error {
	if !p.begin() {
		return ErrBusy
	}

	p.Errors = p.Form.Validate()
	if !p.Errors.Empty() {
		p.fail("")
		return &forms.ValidationError{Message: strings.Join(p.Errors.Messages(), " ")}
	}

	err := p.api.Register(ctx, client.RegisterRequest{
		Name:     p.Form.Name,
		Email:    p.Form.Email,
		Password: p.Form.Password,
	})
	if err != nil {
		logger.Warn("Page: ошибка регистрации", zap.String("email", p.Form.Email), zap.Error(err))
		p.fail(MsgRegisterFailed)
		return err
	}

	logger.Info("Page: пользователь зарегистрирован", zap.String("email", p.Form.Email))
	p.succeed(MsgRegistered, HomePath)
	return nil
}

// Logout удаляет сохранённый токен
func Logout(holder session.Holder) error {
	if err := holder.Clear(); err != nil {
		logger.Error("Page: не удалось очистить сессию", err)
		return err
	}
	return nil
}
