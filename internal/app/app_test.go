package app_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskManager/internal/app"
	"taskManager/internal/auth"
	"taskManager/internal/client"
	"taskManager/internal/config"
	"taskManager/internal/models/task"
	"taskManager/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            "0",
			RequestTimeout:  5 * time.Second,
			ShutdownTimeout: time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Repository: config.RepositoryConfig{Type: app.RepositoryInMemory},
		Auth:       config.AuthConfig{Secret: "test-secret", TokenTTL: time.Hour, Issuer: "test"},
		RateLimit:  config.RateLimitConfig{RequestsPerMinute: 1000},
		Logging:    config.LoggingConfig{Level: "fatal"},
	}
}

func newApp(t *testing.T) *app.App {
	t.Helper()
	a, err := app.New(testConfig()).Init(context.Background())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestInit_UnknownRepository(t *testing.T) {
	cfg := testConfig()
	cfg.Repository.Type = "mongo"

	_, err := app.New(cfg).Init(context.Background())
	assert.Error(t, err)
}

func TestInit_PostgresNeedsURL(t *testing.T) {
	cfg := testConfig()
	cfg.Repository.Type = app.RepositoryPostgres

	_, err := app.New(cfg).Init(context.Background())
	assert.Error(t, err)
}

// Клиент ходит в настоящий API поверх inmemory хранилища
func TestClientAgainstAPI(t *testing.T) {
	srv := httptest.NewServer(newApp(t).Handler())
	defer srv.Close()

	ctx := context.Background()
	store := session.NewMemoryStore("")
	c := client.New(srv.URL, store)

	_, err := c.ListTasks(ctx)
	require.ErrorIs(t, err, client.ErrUnauthenticated)

	require.NoError(t, c.Register(ctx, client.RegisterRequest{
		Name:     "Ann",
		Email:    "ann@example.com",
		Password: "longenough",
	}))

	_, err = c.Login(ctx, "ann@example.com", "wrong-password")
	var statusErr *client.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.Code)

	token, err := c.Login(ctx, "ann@example.com", "longenough")
	require.NoError(t, err)
	require.NoError(t, store.SetToken(token))

	tasks, err := c.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	require.NoError(t, c.CreateTask(ctx, task.Input{
		Title:       "Write report",
		Description: "Quarterly",
		DueDate:     "2030-01-15",
	}.WithDefaults()))

	tasks, err = c.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	created := tasks[0]
	assert.Equal(t, task.StatusInProgress, created.Status)
	assert.Equal(t, task.PriorityMedium, created.Priority)
	assert.Equal(t, "2030-01-15", created.DueLabel())

	in := created.Input()
	in.Status = task.StatusCompleted
	require.NoError(t, c.UpdateTask(ctx, created.ID, in))

	got, err := c.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusCompleted, got.Status)

	require.NoError(t, c.DeleteTask(ctx, created.ID))

	_, err = c.GetTask(ctx, created.ID)
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
}

func TestTasksRequireToken(t *testing.T) {
	srv := httptest.NewServer(newApp(t).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/tasks")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
}

func TestHealthAndCORS(t *testing.T) {
	srv := httptest.NewServer(newApp(t).Handler())
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestRun_StopsOnCancel(t *testing.T) {
	a := newApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.False(t, err != nil && !errors.Is(err, context.Canceled), "unexpected error: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run не завершился после отмены контекста")
	}
}

// Подписанный верным ключом токен несуществующего пользователя не пускает к задачам
func TestTokenOfUnknownUserRejected(t *testing.T) {
	cfg := testConfig()
	srv := httptest.NewServer(newApp(t).Handler())
	defer srv.Close()

	token, err := auth.NewJWTManager(auth.JWTConfig{
		Secret:   cfg.Auth.Secret,
		TokenTTL: cfg.Auth.TokenTTL,
		Issuer:   cfg.Auth.Issuer,
	}).Generate("00000000-0000-0000-0000-000000000001", "ghost@example.com")
	require.NoError(t, err)

	c := client.New(srv.URL, session.NewMemoryStore(token))
	err = c.CreateTask(context.Background(), task.Input{
		Title:       "Orphan",
		Description: "no owner",
		DueDate:     "2030-01-01",
	})

	var statusErr *client.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.Code)
}
