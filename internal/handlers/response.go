package handlers

import (
	"encoding/json"
	"net/http"

	"taskManager/internal/logger"

	"go.uber.org/zap"
)

type Payload struct {
	Key     string
	Payload any
}

func toPayload(key string, pl any) Payload {
	return Payload{Key: key, Payload: pl}
}

func responseWithJSON(w http.ResponseWriter, code int, payload ...Payload) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	storage := make(map[string]any, len(payload))
	for _, pl := range payload {
		storage[pl.Key] = pl.Payload
	}
	if err := json.NewEncoder(w).Encode(storage); err != nil {
		logger.Warn("HTTP: Ошибка записи ответа", zap.Error(err))
	}
}

// responseWithData - успешный ответ в конверте {success: true, data: ...}
func responseWithData(w http.ResponseWriter, code int, data any) {
	responseWithJSON(w, code, toPayload("success", true), toPayload("data", data))
}

func responseWithError(w http.ResponseWriter, code int, message string) {
	responseWithJSON(w, code,
		toPayload("success", false),
		toPayload("error", http.StatusText(code)),
		toPayload("message", message))
}
