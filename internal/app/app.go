package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"taskManager/internal/auth"
	"taskManager/internal/config"
	"taskManager/internal/handlers"
	"taskManager/internal/logger"
	"taskManager/internal/middleware"
	"taskManager/internal/repository/pg"
	taskinmemory "taskManager/internal/repository/task/inmemory"
	taskpostgres "taskManager/internal/repository/task/postgres"
	userinmemory "taskManager/internal/repository/user/inmemory"
	userpostgres "taskManager/internal/repository/user/postgres"
	"taskManager/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	RepositoryInMemory = "inmemory"
	RepositoryPostgres = "postgres"
)

type App struct {
	config      *config.Config
	server      *http.Server
	router      *chi.Mux
	taskRepo    service.TaskRepository
	userRepo    service.UserRepository
	taskHandler *handlers.TaskHandler
	userHandler *handlers.UserHandler
	jwt         *auth.JWTManager
	userService *service.UserService
	shutdowns   []func() // функции для graceful shutdown, вызываются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Options()); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: Завершение работы логгирования...")
		logger.Sync()
	})

	if err := a.initRepositories(ctx); err != nil {
		a.Close()
		return nil, err
	}

	a.jwt = auth.NewJWTManager(auth.JWTConfig{
		Secret:   a.config.Auth.Secret,
		TokenTTL: a.config.Auth.TokenTTL,
		Issuer:   a.config.Auth.Issuer,
	})

	taskService := service.NewTaskService(a.taskRepo)
	a.userService = service.NewUserService(a.userRepo, auth.NewPasswordHasher(0), a.jwt)

	a.taskHandler = handlers.NewTaskHandler(taskService)
	a.userHandler = handlers.NewUserHandler(a.userService)

	a.router = a.routes()
	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("App: Приложение инициализировано",
		zap.String("repository", a.config.Repository.Type),
		zap.String("addr", a.server.Addr))

	return a, nil
}

func (a *App) initRepositories(ctx context.Context) error {
	switch strings.ToLower(a.config.Repository.Type) {
	case RepositoryInMemory, "":
		a.taskRepo = taskinmemory.NewTaskStorage()
		a.userRepo = userinmemory.NewUserStorage()
		logger.Info("App: Используется inmemory хранилище")
		return nil

	case RepositoryPostgres:
		if a.config.Database.URL == "" {
			return errors.New("database.url обязателен для postgres")
		}
		if err := pg.Migrate(a.config.Database.URL); err != nil {
			return fmt.Errorf("миграции: %w", err)
		}

		pool, err := pg.Connect(ctx, pg.Options{
			URL:            a.config.Database.URL,
			MaxConnections: a.config.Database.MaxConnections,
			MinConnections: a.config.Database.MinConnections,
			IdleTimeout:    a.config.Database.IdleTimeout,
		})
		if err != nil {
			return fmt.Errorf("подключение к базе: %w", err)
		}
		a.shutdowns = append(a.shutdowns, func() {
			logger.Info("App: Закрытие пула соединений...")
			pool.Close()
		})

		a.taskRepo = taskpostgres.New(pool)
		a.userRepo = userpostgres.New(pool)
		logger.Info("App: Используется postgres хранилище")
		return nil

	default:
		return fmt.Errorf("неизвестный тип хранилища %q", a.config.Repository.Type)
	}
}

func (a *App) routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.config.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if a.config.Server.RequestTimeout > 0 {
		r.Use(chimw.Timeout(a.config.Server.RequestTimeout))
	}
	if a.config.RateLimit.RequestsPerMinute > 0 {
		r.Use(middleware.RateLimit(a.config.RateLimit.RequestsPerMinute))
	}

	r.Get("/health", a.taskHandler.HealthCheck)

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/register", a.userHandler.Register) // POST /api/users/register
		r.Post("/login", a.userHandler.Login)       // POST /api/users/login
	})

	r.Route("/api/tasks", func(r chi.Router) {
		r.Use(middleware.Auth(a.userService))

		r.Get("/", a.taskHandler.ListTasks)   // GET /api/tasks
		r.Post("/", a.taskHandler.CreateTask) // POST /api/tasks

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", a.taskHandler.GetTask)       // GET /api/tasks/{id}
			r.Put("/", a.taskHandler.UpdateTask)    // PUT /api/tasks/{id}
			r.Delete("/", a.taskHandler.DeleteTask) // DELETE /api/tasks/{id}
		})
	})

	return r
}

func (a *App) Handler() http.Handler {
	return a.router
}

// Run обслуживает запросы, пока не отменят ctx, затем останавливает сервер
func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("App: Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("сервер: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("App: Остановка сервера...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("остановка сервера: %w", err)
		}
		return nil
	})

	err := g.Wait()
	a.Close()
	return err
}

func (a *App) Close() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
