// Package client обращается к удалённому API задач.
//
// Операциям с задачами нужен токен сессии. Без него они завершаются
// ErrUnauthenticated ещё до отправки запроса.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/session"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const DefaultTimeout = 30 * time.Second

var (
	ErrUnauthenticated = errors.New("client: not authenticated")
	ErrInvalidResponse = errors.New("client: invalid response format")
)

// StatusError возвращается на любой ответ со статусом вне 2xx
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("client: server returned %d: %s", e.Code, e.Body)
}

type Client struct {
	baseURL    string
	session    session.Holder
	httpClient *http.Client
	timeout    time.Duration
}

type Option func(*Client)

// WithHTTPClient подменяет HTTP клиент; nil оставляет клиент по умолчанию
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout применяется к копии HTTP клиента, переданный снаружи клиент не меняется
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func New(baseURL string, holder session.Holder, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: holder,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if c.timeout > 0 {
		httpClient := *c.httpClient
		httpClient.Timeout = c.timeout
		c.httpClient = &httpClient
	}
	return c
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type listResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

type getResponse struct {
	Data *task.Task `json:"data"`
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	_, err := c.do(ctx, http.MethodPost, "/api/users/register", req, false)
	return err
}

// Login возвращает выданный API токен, сохранять его должен вызывающий
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/users/login", loginRequest{Email: email, Password: password}, false)
	if err != nil {
		return "", err
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: token is missing", ErrInvalidResponse)
	}
	return resp.Token, nil
}

func (c *Client) ListTasks(ctx context.Context) ([]task.Task, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/tasks", nil, true)
	if err != nil {
		return nil, err
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	data := bytes.TrimSpace(resp.Data)
	if !resp.Success || len(data) == 0 || data[0] != '[' {
		return nil, fmt.Errorf("%w: expected an array of tasks", ErrInvalidResponse)
	}

	var tasks []task.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*task.Task, error) {
	body, err := c.do(ctx, http.MethodGet, taskPath(id), nil, true)
	if err != nil {
		return nil, err
	}

	var resp getResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("%w: task is missing", ErrInvalidResponse)
	}
	return resp.Data, nil
}

func (c *Client) CreateTask(ctx context.Context, in task.Input) error {
	_, err := c.do(ctx, http.MethodPost, "/api/tasks", in, true)
	return err
}

func (c *Client) UpdateTask(ctx context.Context, id string, in task.Input) error {
	_, err := c.do(ctx, http.MethodPut, taskPath(id), in, true)
	return err
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, taskPath(id), nil, true)
	return err
}

func taskPath(id string) string {
	return "/api/tasks/" + url.PathEscape(id)
}

// do отправляет запрос и возвращает тело ответа при статусе 2xx
func (c *Client) do(ctx context.Context, method, path string, payload any, auth bool) ([]byte, error) {
	var token string
	if auth {
		var ok bool
		token, ok = c.session.Token()
		if !ok {
			logger.Debug("Client: запрос без токена отклонён",
				zap.String("method", method),
				zap.String("path", path))
			return nil, ErrUnauthenticated
		}
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("client: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("Client: ошибка запроса",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: read response: %w", err)
	}

	logger.Debug("Client: ответ получен",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("ms", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}
