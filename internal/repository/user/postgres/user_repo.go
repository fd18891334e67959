package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"
	"taskManager/internal/repository/pg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Storage struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

// Create: email хранится в нижнем регистре, повтор даёт ErrAlreadyExists
func (s *Storage) Create(ctx context.Context, u *user.User) error {
	start := time.Now()
	defer pg.WarnIfSlow("create_user", start)

	u.Email = strings.ToLower(u.Email)

	query := `INSERT INTO users (name, email, password_hash)
				VALUES ($1, $2, $3)
				RETURNING id::text, created_at`

	err := s.pool.QueryRow(ctx, query, u.Name, u.Email, u.PasswordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			logger.Warn("Repository: Email уже занят", zap.String("email", u.Email))
			return repo.ErrAlreadyExists
		}
		logger.Error("Repository: Не удалось добавить пользователя", err)
		return fmt.Errorf("добавление пользователя: %w", err)
	}
	return nil
}

func (s *Storage) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.getOne(ctx, "email = $1", strings.ToLower(email))
}

func (s *Storage) GetByID(ctx context.Context, id string) (*user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repo.ErrNotFound
	}
	return s.getOne(ctx, "id = $1::text::uuid", id)
}

func (s *Storage) getOne(ctx context.Context, where string, arg any) (*user.User, error) {
	start := time.Now()
	defer pg.WarnIfSlow("get_user", start)

	query := `SELECT id::text, name, email, password_hash, created_at
				FROM users
				WHERE ` + where

	u := &user.User{}
	err := s.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить пользователя", err)
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return u, nil
}
