package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"taskManager/internal/logger"
	"taskManager/internal/models/user"
	rep "taskManager/internal/repository"

	"go.uber.org/zap"
)

const MinPasswordLength = 8

var ErrUnknownUser = errors.New("владелец токена не найден")

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

type UserService struct {
	repo   UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
}

func NewUserService(repo UserRepository, hasher PasswordHasher, tokens TokenIssuer) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
	}
}

func (s *UserService) Register(ctx context.Context, name, email, password string) (*user.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	switch {
	case name == "":
		return nil, NewValidationError("name", "обязательное поле")
	case !emailPattern.MatchString(email):
		return nil, NewValidationError("email", "некорректный адрес")
	case len(password) < MinPasswordLength:
		return nil, NewValidationError("password", fmt.Sprintf("минимум %d символов", MinPasswordLength))
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("хеширование пароля: %w", err)
	}

	created := &user.User{Name: name, Email: email, PasswordHash: hash}
	if err := s.repo.Create(ctx, created); err != nil {
		if errors.Is(err, rep.ErrAlreadyExists) {
			return nil, NewAlreadyExists("пользователь", email)
		}
		return nil, fmt.Errorf("создание пользователя: %w", err)
	}

	logger.Info("Service: Пользователь зарегистрирован", zap.String("user_id", created.ID))
	return created, nil
}

// Login возвращает подписанный токен; неизвестный email и неверный пароль неразличимы
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", NewValidationError("email", "email и пароль обязательны")
	}

	found, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Warn("Service: Вход с неизвестным email")
			return "", NewInvalidCredentials()
		}
		return "", fmt.Errorf("поиск пользователя: %w", err)
	}

	if !s.hasher.Verify(password, found.PasswordHash) {
		logger.Warn("Service: Неверный пароль", zap.String("user_id", found.ID))
		return "", NewInvalidCredentials()
	}

	token, err := s.tokens.Generate(found.ID, found.Email)
	if err != nil {
		return "", fmt.Errorf("выпуск токена: %w", err)
	}

	logger.Info("Service: Вход выполнен", zap.String("user_id", found.ID))
	return token, nil
}

// Authenticate проверяет токен и что его владелец всё ещё существует
func (s *UserService) Authenticate(ctx context.Context, token string) (string, error) {
	userID, err := s.tokens.UserID(token)
	if err != nil {
		return "", fmt.Errorf("проверка токена: %w", err)
	}

	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Warn("Service: Токен удалённого пользователя", zap.String("user_id", userID))
			return "", ErrUnknownUser
		}
		return "", fmt.Errorf("поиск пользователя: %w", err)
	}
	return userID, nil
}
