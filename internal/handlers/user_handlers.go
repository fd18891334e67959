package handlers

import (
	"net/http"
	"time"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"

	"go.uber.org/zap"
)

type UserHandler struct {
	UserService UserService
}

func NewUserHandler(userService UserService) *UserHandler {
	return &UserHandler{UserService: userService}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.RegisterRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	created, err := h.UserService.Register(r.Context(), request.Name, request.Email, request.Password)
	if err != nil {
		handleServiceError(w, r, err, "register")
		return
	}

	logger.Info("HTTP_OUT: Пользователь зарегистрирован",
		zap.String("user_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithData(w, http.StatusCreated, dto.FromUser(created))
}

// Login отвечает {success, token}; токен клиент хранит как есть
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.LoginRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	token, err := h.UserService.Login(r.Context(), request.Email, request.Password)
	if err != nil {
		handleServiceError(w, r, err, "login")
		return
	}

	logger.Info("HTTP_OUT: Вход выполнен",
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("success", true),
		toPayload("token", token))
}
