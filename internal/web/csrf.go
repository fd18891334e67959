package web

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"net/url"

	"taskManager/internal/logger"

	"go.uber.org/zap"
)

const (
	csrfCookie = "csrf_token"
	csrfField  = "csrf_token"
	csrfMaxAge = 7 * 24 * 60 * 60
)

type csrfKey struct{}

func generateCSRFToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// csrfProtect выдаёт токен в cookie и требует его же в поле csrf_token у каждого POST.
// Запросы с чужим Origin или Sec-Fetch-Site: cross-site отклоняются сразу.
func csrfProtect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, fromCookie := "", false
		if cookie, err := r.Cookie(csrfCookie); err == nil && cookie.Value != "" {
			token, fromCookie = cookie.Value, true
		} else {
			var err error
			if token, err = generateCSRFToken(); err != nil {
				logger.Error("HTTP: не удалось создать CSRF токен", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     csrfCookie,
				Value:    token,
				Path:     "/",
				MaxAge:   csrfMaxAge,
				HttpOnly: true,
				SameSite: http.SameSiteStrictMode,
			})
		}

		if !safeMethod(r.Method) {
			if crossSite(r) {
				rejectCSRF(w, r, "запрос с другого сайта")
				return
			}
			sent := r.PostFormValue(csrfField)
			if !fromCookie || sent == "" || subtle.ConstantTimeCompare([]byte(sent), []byte(token)) != 1 {
				rejectCSRF(w, r, "неверный CSRF токен")
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfKey{}, token)))
	})
}

func csrfToken(ctx context.Context) string {
	token, _ := ctx.Value(csrfKey{}).(string)
	return token
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// crossSite: браузер сообщает источник через Sec-Fetch-Site или Origin
func crossSite(r *http.Request) bool {
	switch r.Header.Get("Sec-Fetch-Site") {
	case "", "same-origin", "none":
	default:
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return true
	}
	return parsed.Host != r.Host
}

func rejectCSRF(w http.ResponseWriter, r *http.Request, reason string) {
	logger.Warn("HTTP: Запрос отклонён CSRF защитой",
		zap.String("reason", reason),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("origin", r.Header.Get("Origin")),
		zap.String("client_ip", r.RemoteAddr))
	http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
}
